// SPDX-License-Identifier: AGPL-3.0-only
package model

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Fault kinds carried by a ToolResult
const (
	// FaultTool marks a tool-side failure (unknown tool, rejected arguments,
	// or an error reported by the tool itself)
	FaultTool = "tool_error"
	// FaultTransport marks a failure of the RPC to the tool server
	FaultTransport = "transport_error"
)

// ToolCall represents a single tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON object
}

// ToolResult is the outcome of one tool call. Faults are carried as data so
// the model can see and react to them; IsError marks the result as a fault
// and Fault names its kind.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
	Fault      string `json:"fault,omitempty"`
}

// Message is a provider-agnostic conversation turn.
//
//   - RoleUser: Content holds the user's text
//   - RoleAssistant: Content holds the model's text, ToolCalls the requested
//     tool invocations in emission order
//   - RoleTool: ToolResults holds one result per requested call, in the same
//     order as the requests of the preceding assistant turn
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// Conversation is the append-only ordered log of turns for one query. It is
// the single source of truth sent to the model on every loop iteration.
type Conversation struct {
	turns []Message
}

// Append adds a turn to the end of the conversation
func (c *Conversation) Append(m Message) {
	c.turns = append(c.turns, m)
}

// Snapshot returns a copy of the full ordered history
func (c *Conversation) Snapshot() []Message {
	out := make([]Message, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns appended so far
func (c *Conversation) Len() int {
	return len(c.turns)
}
