// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// toolDefinitions converts the MCP server's tool descriptors into the
// provider-agnostic declaration format. The input schema is passed through
// untouched so nested constraints the tool declared survive, with two
// defaults applied here and nowhere else: a missing schema becomes
// {"type":"object","properties":{}} and a schema without a root "type" gets
// "object" injected.
func toolDefinitions(tools []*mcp.Tool) []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(tools))
	for _, tl := range tools {
		params := schemaMap(tl.InputSchema)
		if params == nil {
			params = map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			}
		}
		if _, ok := params["type"]; !ok {
			params["type"] = "object"
		}
		defs = append(defs, ToolDefinition{
			Name:        tl.Name,
			Description: tl.Description,
			Parameters:  params,
		})
	}
	return defs
}

// schemaMap normalizes whatever schema representation the SDK hands back
// into a plain map via a JSON round trip. Returns nil for an absent schema.
func schemaMap(schema interface{}) map[string]interface{} {
	if schema == nil {
		return nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
