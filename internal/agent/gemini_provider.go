// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/jolks/mcp-agent/internal/model"
	"google.golang.org/api/option"
)

// GeminiProvider implements ChatProvider using the Google Generative AI SDK.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini-backed ChatProvider.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) CreateCompletion(ctx context.Context, modelName string, systemMsg string, messages []model.Message, tools []ToolDefinition) (*model.Message, error) {
	gm := p.client.GenerativeModel(modelName)
	if systemMsg != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemMsg)}}
	}
	if len(tools) > 0 {
		gm.Tools = []*genai.Tool{{FunctionDeclarations: toGeminiDeclarations(tools)}}
	}

	contents := toGeminiContents(messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: empty conversation")
	}

	// The SDK sends history plus the parts of the latest turn.
	cs := gm.StartChat()
	cs.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, err
	}
	return fromGeminiResponse(resp)
}

// toGeminiDeclarations converts provider-agnostic tool definitions to Gemini
// function declarations. Gemini takes a typed schema rather than a free-form
// map, so the JSON-schema map is lowered field by field.
func toGeminiDeclarations(tools []ToolDefinition) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		out[i] = &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toGeminiSchema(t.Parameters),
		}
	}
	return out
}

// toGeminiSchema lowers a JSON-schema map into a *genai.Schema. Keys the
// typed schema cannot express are dropped.
func toGeminiSchema(m map[string]interface{}) *genai.Schema {
	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = geminiType(t)
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if f, ok := m["format"].(string); ok {
		s.Format = f
	}
	if n, ok := m["nullable"].(bool); ok {
		s.Nullable = n
	}
	if props, ok := m["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if pm, ok := v.(map[string]interface{}); ok {
				s.Properties[name] = toGeminiSchema(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]interface{}); ok {
		s.Items = toGeminiSchema(items)
	}
	switch req := m["required"].(type) {
	case []interface{}:
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	case []string:
		s.Required = req
	}
	switch enum := m["enum"].(type) {
	case []interface{}:
		for _, e := range enum {
			if v, ok := e.(string); ok {
				s.Enum = append(s.Enum, v)
			}
		}
	case []string:
		s.Enum = enum
	}
	return s
}

func geminiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeUnspecified
	}
}

// toGeminiContents converts provider-agnostic messages to Gemini contents.
//
// Gemini's API shape:
//   - user text is a "user" content with a Text part
//   - assistant turns are "model" contents with Text and FunctionCall parts
//   - tool results go back as a "user" content holding one FunctionResponse
//     part per result, in request order; correlation is by function name
func toGeminiContents(messages []model.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case model.RoleUser:
			out = append(out, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(m.Content)},
			})
		case model.RoleAssistant:
			parts := make([]genai.Part, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args := map[string]interface{}{}
				if tc.Arguments != "" {
					_ = json.Unmarshal([]byte(tc.Arguments), &args)
				}
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: args})
			}
			out = append(out, &genai.Content{Role: "model", Parts: parts})
		case model.RoleTool:
			parts := make([]genai.Part, 0, len(m.ToolResults))
			for _, r := range m.ToolResults {
				var response map[string]interface{}
				if r.IsError {
					response = map[string]interface{}{"error": r.Content, "kind": r.Fault}
				} else {
					response = map[string]interface{}{"result": r.Content}
				}
				parts = append(parts, genai.FunctionResponse{Name: r.Name, Response: response})
			}
			out = append(out, &genai.Content{Role: "user", Parts: parts})
		}
	}
	return out
}

// fromGeminiResponse converts a Gemini response to the provider-agnostic
// Message type. Gemini has no per-call IDs, so the function name doubles as
// the call ID.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (*model.Message, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini: empty response")
	}

	msg := &model.Message{Role: model.RoleAssistant}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch pt := part.(type) {
		case genai.Text:
			if msg.Content != "" {
				msg.Content += "\n"
			}
			msg.Content += string(pt)
		case genai.FunctionCall:
			args := "{}"
			if pt.Args != nil {
				if raw, err := json.Marshal(pt.Args); err == nil {
					args = string(raw)
				}
			}
			msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
				ID:        pt.Name,
				Name:      pt.Name,
				Arguments: args,
			})
		}
	}
	return msg, nil
}
