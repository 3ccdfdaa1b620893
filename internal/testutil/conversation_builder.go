package testutil

import (
	"encoding/json"

	"github.com/hupe1980/agentshop/core"
)

// ConversationBuilder provides a fluent helper for constructing message
// histories in tests.
// Example:
//
//	msgs := NewConversation().User("create an order").Call("c1", "create_order", nil).Result("c1", "create_order", 1).Assistant("Order 1 created").Build()
type ConversationBuilder struct {
	contents []core.Content
}

// NewConversation creates an empty builder.
func NewConversation() *ConversationBuilder { return &ConversationBuilder{} }

// User appends a user text message (chainable).
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	b.contents = append(b.contents, core.NewUserContent(text))
	return b
}

// Assistant appends an assistant text message (chainable).
func (b *ConversationBuilder) Assistant(text string) *ConversationBuilder {
	b.contents = append(b.contents, core.NewTextContent(core.RoleAssistant, text))
	return b
}

// System appends a system text message (chainable).
func (b *ConversationBuilder) System(text string) *ConversationBuilder {
	b.contents = append(b.contents, core.NewTextContent(core.RoleSystem, text))
	return b
}

// Call appends an assistant message requesting a single function call.
// args is marshaled to JSON; nil yields an empty object (chainable).
func (b *ConversationBuilder) Call(id, name string, args map[string]any) *ConversationBuilder {
	return b.Calls(Call(id, name, args))
}

// Calls appends one assistant message carrying all calls (chainable).
func (b *ConversationBuilder) Calls(calls ...core.FunctionCall) *ConversationBuilder {
	parts := make([]core.Part, 0, len(calls))
	for _, fc := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	b.contents = append(b.contents, core.Content{Role: core.RoleAssistant, Parts: parts})
	return b
}

// Result appends a tool message answering call id with response (chainable).
func (b *ConversationBuilder) Result(id, name string, response any) *ConversationBuilder {
	return b.Results(core.FunctionResponse{ID: id, Name: name, Response: response})
}

// Failure appends a tool message answering call id with an error (chainable).
func (b *ConversationBuilder) Failure(id, name, msg string) *ConversationBuilder {
	return b.Results(core.FunctionResponse{ID: id, Name: name, Error: msg})
}

// Results appends one tool message carrying all responses (chainable).
func (b *ConversationBuilder) Results(responses ...core.FunctionResponse) *ConversationBuilder {
	parts := make([]core.Part, 0, len(responses))
	for _, fr := range responses {
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}
	b.contents = append(b.contents, core.Content{Role: core.RoleTool, Parts: parts})
	return b
}

// Build returns a copy of the accumulated messages.
func (b *ConversationBuilder) Build() []core.Content {
	return append([]core.Content(nil), b.contents...)
}

// Call constructs a FunctionCall with JSON encoded args.
func Call(id, name string, args map[string]any) core.FunctionCall {
	raw := "{}"
	if args != nil {
		if data, err := json.Marshal(args); err == nil {
			raw = string(data)
		}
	}
	return core.FunctionCall{ID: id, Name: name, Arguments: raw}
}

// Roles lists the role of each message.
func Roles(contents []core.Content) []string {
	out := make([]string, len(contents))
	for i, c := range contents {
		out[i] = c.Role
	}
	return out
}
