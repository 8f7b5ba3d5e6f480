package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ItemType identifies the kind of a conversation item
type ItemType string

const (
	ItemMessage            ItemType = "message"
	ItemFunctionCall       ItemType = "function_call"
	ItemFunctionCallOutput ItemType = "function_call_output"
	ItemReasoning          ItemType = "reasoning"
)

// Role identifies the author of a message item
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
)

// Item is one entry of the conversation history. Items produced by the model
// keep their original encoding and are replayed verbatim on later requests.
type Item struct {
	Type      ItemType `json:"type,omitempty"`
	ID        string   `json:"id,omitempty"`
	Role      Role     `json:"role,omitempty"`
	Content   string   `json:"content,omitempty"`
	CallID    string   `json:"call_id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Arguments string   `json:"arguments,omitempty"`
	Output    string   `json:"output,omitempty"`

	raw json.RawMessage
}

// UserMessage builds a user-authored message item
func UserMessage(text string) Item {
	return Item{Type: ItemMessage, Role: RoleUser, Content: text}
}

// AssistantMessage builds an assistant-authored message item
func AssistantMessage(text string) Item {
	return Item{Type: ItemMessage, Role: RoleAssistant, Content: text}
}

// FunctionCallOutput builds the tool output addressed to callID
func FunctionCallOutput(callID string, result ToolResult) Item {
	return Item{Type: ItemFunctionCallOutput, CallID: callID, Output: result.String()}
}

// MarshalJSON implements json.Marshaler
func (it Item) MarshalJSON() ([]byte, error) {
	if len(it.raw) > 0 {
		return it.raw, nil
	}
	type plain Item
	return json.Marshal(plain(it))
}

// UnmarshalJSON implements json.Unmarshaler. Message content may be a plain
// string or a list of typed parts; the text parts are flattened into Content.
func (it *Item) UnmarshalJSON(b []byte) error {
	var wire struct {
		Type      ItemType        `json:"type"`
		ID        string          `json:"id"`
		Role      Role            `json:"role"`
		Content   json.RawMessage `json:"content"`
		CallID    string          `json:"call_id"`
		Name      string          `json:"name"`
		Arguments string          `json:"arguments"`
		Output    string          `json:"output"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	*it = Item{
		Type:      wire.Type,
		ID:        wire.ID,
		Role:      wire.Role,
		Content:   contentText(wire.Content),
		CallID:    wire.CallID,
		Name:      wire.Name,
		Arguments: wire.Arguments,
		Output:    wire.Output,
		raw:       append(json.RawMessage(nil), b...),
	}
	if it.Type == "" && it.Role != "" {
		it.Type = ItemMessage
	}
	return nil
}

func contentText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case "output_text", "input_text", "text":
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ToolCallRequest is a function call emitted by the model
type ToolCallRequest struct {
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// History is the append-only item list of one conversation
type History []Item

// ToolCalls extracts function call requests in arrival order
func (h History) ToolCalls() []ToolCallRequest {
	var calls []ToolCallRequest
	for _, it := range h {
		if it.Type != ItemFunctionCall {
			continue
		}
		calls = append(calls, ToolCallRequest{
			CallID:    it.CallID,
			Name:      it.Name,
			Arguments: it.Arguments,
		})
	}
	return calls
}

// FinalAnswer returns the text of the last assistant message, if any
func (h History) FinalAnswer() string {
	for i := len(h) - 1; i >= 0; i-- {
		it := h[i]
		if it.Type == ItemMessage && it.Role == RoleAssistant && it.Content != "" {
			return it.Content
		}
	}
	return ""
}

// Outputs returns the tool outputs keyed by call id
func (h History) Outputs() map[string]string {
	out := make(map[string]string)
	for _, it := range h {
		if it.Type == ItemFunctionCallOutput {
			out[it.CallID] = it.Output
		}
	}
	return out
}
