// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"strings"

	"github.com/jolks/mcp-agent/internal/config"
	"github.com/jolks/mcp-agent/internal/errors"
	"github.com/jolks/mcp-agent/internal/logging"
	"github.com/jolks/mcp-agent/internal/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolChannel is the slice of the session the loop needs: tool discovery and
// invocation. Invocation faults come back folded inside the ToolResult; the
// error return is reserved for precondition failures.
type ToolChannel interface {
	ListTools(ctx context.Context) ([]*mcp.Tool, error)
	Call(ctx context.Context, call model.ToolCall) (model.ToolResult, error)
}

// Agent drives one query at a time through the model/tool loop. It borrows
// the tool channel; opening and closing the session stays with the caller.
type Agent struct {
	provider ChatProvider
	channel  ToolChannel
	cfg      *config.Config
	logger   *logging.Logger
}

// NewAgent creates an agent over an established provider and tool channel.
func NewAgent(provider ChatProvider, channel ToolChannel, cfg *config.Config, logger *logging.Logger) *Agent {
	return &Agent{
		provider: provider,
		channel:  channel,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run answers one query. It fetches the tool catalog once, then alternates
// model invocations with tool execution until the model stops requesting
// tools, and returns the accumulated answer text along with the number of
// model invocations made.
//
// A fault from a single tool call is folded into the conversation as data so
// the model can react to it; a fault from the model call itself aborts the
// query. The model is never invoked while any tool request from its latest
// turn is unanswered.
func (a *Agent) Run(ctx context.Context, query string) (string, int, error) {
	conv := &model.Conversation{}
	conv.Append(model.Message{Role: model.RoleUser, Content: query})

	// The declaration set is fixed for the whole query; a changed catalog is
	// only picked up by the next Run.
	tools, err := a.channel.ListTools(ctx)
	if err != nil {
		return "", 0, err
	}
	defs := toolDefinitions(tools)
	if len(defs) == 0 {
		a.logger.Infof("No tools available, using basic chat completion")
		defs = nil
	}

	var fragments []string
	maxIterations := a.cfg.AI.MaxToolIterations

	for i := 0; i < maxIterations; i++ {
		a.logger.Debugf("Query iteration %d", i+1)
		resp, err := a.provider.CreateCompletion(ctx, a.cfg.AI.Model, a.cfg.AI.SystemPrompt, conv.Snapshot(), defs)
		if err != nil {
			return "", i + 1, errors.Model(err)
		}

		// Text emitted alongside tool requests still counts toward the final
		// answer.
		if resp.Content != "" {
			fragments = append(fragments, resp.Content)
		}

		if len(resp.ToolCalls) == 0 {
			a.logger.Debugf("Query completed after %d iterations", i+1)
			return joinFragments(fragments), i + 1, nil
		}

		conv.Append(*resp)

		results := make([]model.ToolResult, 0, len(resp.ToolCalls))
		for j, call := range resp.ToolCalls {
			a.logger.Debugf("Tool call %d: %s", j+1, call.Name)
			res, err := a.channel.Call(ctx, call)
			if err != nil {
				return "", i + 1, err
			}
			if res.IsError {
				a.logger.Warnf("Tool %s failed (%s): %s", call.Name, res.Fault, res.Content)
			}
			results = append(results, res)
		}
		conv.Append(model.Message{Role: model.RoleTool, ToolResults: results})
	}

	a.logger.Errorf("Query exceeded maximum iterations (%d)", maxIterations)
	return "", maxIterations, errors.LoopBound(maxIterations)
}

// joinFragments joins collected text fragments with newlines, skipping
// blank ones.
func joinFragments(fragments []string) string {
	kept := fragments[:0:0]
	for _, f := range fragments {
		if strings.TrimSpace(f) != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, "\n")
}
