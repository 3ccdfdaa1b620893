package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hupe1980/agentshop/core"
)

// MockModel is an in-memory Model that replays scripted responses in order.
// When the script is exhausted it echoes the last user message. Function
// calls without an id are assigned a random one. Safe for concurrent use.
type MockModel struct {
	info Info

	mu       sync.Mutex
	script   []core.Content
	requests []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{info: Info{Name: name, Provider: "mock", SupportsTools: true}}
}

// Enqueue appends assistant replies to the script.
func (m *MockModel) Enqueue(replies ...core.Content) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, replies...)
	return m
}

// EnqueueText appends a plain text reply.
func (m *MockModel) EnqueueText(text string) *MockModel {
	return m.Enqueue(core.NewTextContent(core.RoleAssistant, text))
}

// EnqueueCalls appends a reply requesting the given function calls.
func (m *MockModel) EnqueueCalls(calls ...core.FunctionCall) *MockModel {
	parts := make([]core.Part, 0, len(calls))
	for _, fc := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	return m.Enqueue(core.Content{Role: core.RoleAssistant, Parts: parts})
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Generate implements Model. In streaming mode each text part is also
// emitted rune by rune as partial responses.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var reply core.Content
	if len(m.script) > 0 {
		reply = m.script[0]
		m.script = m.script[1:]
	} else {
		reply = m.echo(req)
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}

		parts := make([]core.Part, 0, len(reply.Parts))
		for _, p := range reply.Parts {
			if fc, ok := p.(core.FunctionCallPart); ok && fc.FunctionCall.ID == "" {
				fc.FunctionCall.ID = "call_" + uuid.NewString()
				p = fc
			}
			parts = append(parts, p)
		}

		if req.Stream {
			for _, r := range reply.Text() {
				if !Send(ctx, respCh, Response{Partial: true, Content: core.NewTextContent(core.RoleAssistant, string(r))}) {
					errCh <- ctx.Err()
					return
				}
			}
		}

		finish := "stop"
		if len(reply.FunctionCalls()) > 0 {
			finish = "tool_calls"
		}
		if !Send(ctx, respCh, Response{
			ID:           uuid.NewString(),
			Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
			FinishReason: finish,
		}) {
			errCh <- ctx.Err()
		}
	}()
	return respCh, errCh
}

func (m *MockModel) echo(req Request) core.Content {
	for i := len(req.Contents) - 1; i >= 0; i-- {
		if req.Contents[i].Role == core.RoleUser {
			return core.NewTextContent(core.RoleAssistant, "Mock response to: "+req.Contents[i].Text())
		}
	}
	return core.NewTextContent(core.RoleAssistant, "Mock response")
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
