// SPDX-License-Identifier: AGPL-3.0-only

// Package session owns the connection to the MCP tool server: transport
// construction, the protocol handshake, tool discovery and invocation, and
// ordered teardown of everything acquired along the way.
package session

import (
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/jolks/mcp-agent/internal/config"
	"github.com/jolks/mcp-agent/internal/errors"
	"github.com/jolks/mcp-agent/internal/logging"
	"github.com/jolks/mcp-agent/internal/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Session is the live connection to one MCP tool server. It owns the client
// session, the transport and any subprocess the transport spawned. The agent
// loop only borrows a Session; Open/Close stay with the caller that created it.
type Session struct {
	logger    *logging.Logger
	session   *mcp.ClientSession
	closeOnce sync.Once
	closeErr  error
}

// Open builds the transport described by cfg.MCP, starts the server process
// if needed, and performs the MCP handshake. The returned Session is ready
// for ListTools and Call.
func Open(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Session, error) {
	tp, err := buildTransport(&cfg.MCP)
	if err != nil {
		return nil, err
	}
	return connect(ctx, tp, cfg, logger)
}

// connect performs the handshake over an already-built transport.
func connect(ctx context.Context, tp mcp.Transport, cfg *config.Config, logger *logging.Logger) (*Session, error) {
	cli := mcp.NewClient(&mcp.Implementation{
		Name:    cfg.Client.Name,
		Version: cfg.Client.Version,
	}, nil)

	cs, err := cli.Connect(ctx, tp, nil)
	if err != nil {
		return nil, errors.Connection("connect to MCP server", err)
	}

	s := &Session{logger: logger, session: cs}
	if res := cs.InitializeResult(); res != nil && res.ServerInfo != nil {
		logger.Infof("Connected to MCP server %s %s", res.ServerInfo.Name, res.ServerInfo.Version)
	}
	return s, nil
}

// buildTransport resolves the configured server target into a transport.
// A server script is started with the runtime matching its extension.
func buildTransport(mc *config.MCPConfig) (mcp.Transport, error) {
	switch {
	case mc.ServerScript != "":
		var command string
		switch filepath.Ext(mc.ServerScript) {
		case ".py":
			command = "python"
		case ".js":
			command = "node"
		default:
			return nil, errors.Connection("server script must be a .py or .js file", nil)
		}
		return &mcp.CommandTransport{Command: exec.Command(command, mc.ServerScript)}, nil
	case mc.Command != "":
		return &mcp.CommandTransport{Command: exec.Command(mc.Command, mc.Args...)}, nil
	case mc.URL != "":
		return &mcp.SSEClientTransport{Endpoint: mc.URL}, nil
	default:
		return nil, errors.Connection("no MCP server target configured", nil)
	}
}

// ListTools fetches the server's tool catalog.
func (s *Session) ListTools(ctx context.Context) ([]*mcp.Tool, error) {
	if s == nil || s.session == nil {
		return nil, errors.Preconditionf("list tools before session open")
	}
	resp, err := s.session.ListTools(ctx, nil)
	if err != nil {
		return nil, errors.Connection("list tools", err)
	}
	return resp.Tools, nil
}

// Call executes one tool call. Tool-side and transport failures are folded
// into the returned result rather than raised, so the caller can always fold
// a response back into the conversation. The only error return is a
// precondition fault for a call before Open.
func (s *Session) Call(ctx context.Context, call model.ToolCall) (model.ToolResult, error) {
	if s == nil || s.session == nil {
		return model.ToolResult{}, errors.Preconditionf("tool call %q before session open", call.Name)
	}

	result := model.ToolResult{ToolCallID: call.ID, Name: call.Name}

	args := map[string]interface{}{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			result.IsError = true
			result.Fault = model.FaultTool
			result.Content = "invalid tool arguments: " + err.Error()
			return result, nil
		}
	}

	res, err := s.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      call.Name,
		Arguments: args,
	})
	if err != nil {
		result.IsError = true
		result.Fault = model.FaultTransport
		result.Content = err.Error()
		return result, nil
	}

	result.Content = flattenContent(res.Content)
	if res.IsError {
		result.IsError = true
		result.Fault = model.FaultTool
	}
	return result, nil
}

// flattenContent collapses the MCP content list into a single string. Plain
// text responses are joined directly; anything richer falls back to JSON.
func flattenContent(content []mcp.Content) string {
	allText := true
	var text string
	for _, c := range content {
		tc, ok := c.(*mcp.TextContent)
		if !ok {
			allText = false
			break
		}
		if text != "" {
			text += "\n"
		}
		text += tc.Text
	}
	if allText {
		return text
	}
	out, err := json.Marshal(content)
	if err != nil {
		return ""
	}
	return string(out)
}

// Close releases the session, its transport and any subprocess. Idempotent;
// safe to call after a partial open and safe to call twice.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if s.session != nil {
			s.closeErr = s.session.Close()
			s.session = nil
		}
	})
	return s.closeErr
}
