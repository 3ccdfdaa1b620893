package model

import (
	"context"
	"errors"

	"github.com/hupe1980/agentshop/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt
	Contents     []core.Content   `json:"contents"`     // Conversation, oldest first
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"` // Streaming delta; the final chunk carries the full content
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock"
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to drive generation.
//
// Generate emits zero or more partial responses followed by exactly one final
// (Partial == false) response, then closes the response channel. Failures are
// delivered on the error channel, which is closed when generation ends.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Send delivers resp on out unless ctx is done first. Producers stop once it
// returns false; the consumer may have abandoned out.
func Send(ctx context.Context, out chan<- Response, resp Response) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- resp:
		return true
	}
}

// ErrNoResponse is returned by Collect when a model finishes without a final response.
var ErrNoResponse = errors.New("model: no final response")

// Collect drains a Generate call and returns the final response. onDelta, if
// non-nil, receives the text of every partial chunk in order.
func Collect(ctx context.Context, m Model, req Request, onDelta func(string)) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final Response
		got   bool
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				if onDelta != nil {
					if text := resp.Content.Text(); text != "" {
						onDelta(text)
					}
				}
				continue
			}
			final, got = resp, true
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}

	if !got {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		return Response{}, ErrNoResponse
	}
	return final, nil
}
