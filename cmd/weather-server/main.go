// SPDX-License-Identifier: AGPL-3.0-only

// weather-server is the bundled demo MCP server. It exposes two tools over
// stdio, get_alerts and get_forecast, backed by the US National Weather
// Service API, so the agent can be exercised end to end without any external
// tool server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/jolks/mcp-agent/internal/weather"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AlertParams holds parameters for the get_alerts tool
type AlertParams struct {
	State string `json:"state" description:"two-letter US state code (e.g. CA, NY)"`
}

// ForecastParams holds parameters for the get_forecast tool
type ForecastParams struct {
	Latitude  float64 `json:"latitude" description:"latitude of the location"`
	Longitude float64 `json:"longitude" description:"longitude of the location"`
}

func main() {
	// Anything written to stdout would corrupt the JSON-RPC stream, so all
	// logging goes to stderr.
	log.SetOutput(os.Stderr)

	srv := mcp.NewServer(&mcp.Implementation{Name: "weather", Version: "1.0.0"}, nil)
	registerTools(srv, weather.NewClient())

	if err := srv.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Error running weather server: %v", err)
	}
}

// ToolDefinition represents a tool registered with the MCP server
type ToolDefinition struct {
	Name        string
	Description string
	Handler     func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Parameters  interface{}
}

func registerTools(srv *mcp.Server, client *weather.Client) {
	tools := []ToolDefinition{
		{
			Name:        "get_alerts",
			Description: "Get weather alerts for a US state.",
			Handler:     handleGetAlerts(client),
			Parameters:  AlertParams{},
		},
		{
			Name:        "get_forecast",
			Description: "Get weather forecast for a location.",
			Handler:     handleGetForecast(client),
			Parameters:  ForecastParams{},
		},
	}

	for _, tool := range tools {
		srv.AddTool(&mcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: toJSONSchema(buildSchema(tool.Parameters)),
		}, tool.Handler)
	}
}

// toJSONSchema converts the map form of a schema into the SDK's schema type.
func toJSONSchema(m map[string]interface{}) *jsonschema.Schema {
	data, err := json.Marshal(m)
	if err != nil {
		log.Fatalf("Error marshaling tool schema: %v", err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		log.Fatalf("Error building tool schema: %v", err)
	}
	return &s
}

func handleGetAlerts(client *weather.Client) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var params AlertParams
		if err := extractParams(req, &params); err != nil {
			return nil, err
		}
		if len(params.State) != 2 {
			return nil, fmt.Errorf("state must be a two-letter US state code, got %q", params.State)
		}
		return textResult(client.ActiveAlerts(ctx, strings.ToUpper(params.State))), nil
	}
}

func handleGetForecast(client *weather.Client) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var params ForecastParams
		if err := extractParams(req, &params); err != nil {
			return nil, err
		}
		return textResult(client.Forecast(ctx, params.Latitude, params.Longitude)), nil
	}
}

// extractParams extracts typed parameters from a tool request
func extractParams(req *mcp.CallToolRequest, params interface{}) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, params); err != nil {
		return fmt.Errorf("invalid parameters: %v", err)
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// buildSchema converts a Go struct with json and description tags into a JSON Schema object
func buildSchema(params interface{}) map[string]interface{} {
	t := reflect.TypeOf(params)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	properties := map[string]interface{}{}
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}

		parts := strings.Split(jsonTag, ",")
		fieldName := parts[0]
		omitempty := false
		for _, p := range parts[1:] {
			if p == "omitempty" {
				omitempty = true
			}
		}

		prop := map[string]interface{}{
			"type": goTypeToJSONType(field.Type),
		}
		if desc := field.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		properties[fieldName] = prop

		if !omitempty {
			required = append(required, fieldName)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// goTypeToJSONType maps Go types to JSON Schema types
func goTypeToJSONType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "string"
	}
}
