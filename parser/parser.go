// Package parser turns free-form model output into typed values.
//
// Structured[T] renders format instructions that embed the JSON schema of T
// and parses a reply by locating its JSON object, checking required fields
// and decoding it into T.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/agentshop/core"
	"github.com/hupe1980/agentshop/internal/util"
	"github.com/hupe1980/agentshop/model"
)

// ErrNoJSON is returned when the text contains no JSON object.
var ErrNoJSON = errors.New("parser: no JSON object found")

// ParseError describes output that could not be turned into the target type.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const formatInstructions = `The output should be formatted as a JSON instance that conforms to the JSON schema below.

As an example, for the schema {"properties": {"foo": {"description": "a list of strings", "type": "array", "items": {"type": "string"}}}, "required": ["foo"]}
the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.

Here is the output schema:
` + "```" + `
%s
` + "```"

// Structured parses model output into values of type T.
type Structured[T any] struct {
	schema map[string]any
}

// NewStructured derives the schema from T, which should be a struct.
func NewStructured[T any]() *Structured[T] {
	var zero T
	return &Structured[T]{schema: util.CreateSchema(zero)}
}

// Schema returns the JSON schema of T.
func (p *Structured[T]) Schema() map[string]any { return p.schema }

// FormatInstructions returns prompt text asking the model to answer with a
// JSON instance of the schema.
func (p *Structured[T]) FormatInstructions() string {
	b, err := json.Marshal(p.schema)
	if err != nil {
		// CreateSchema only produces maps, slices and strings.
		panic(err)
	}
	return fmt.Sprintf(formatInstructions, b)
}

// Parse extracts the first JSON object from text (bare or inside a fenced
// code block) and decodes it into T.
func (p *Structured[T]) Parse(text string) (T, error) {
	var out T

	raw, err := extractJSON(text)
	if err != nil {
		return out, &ParseError{Text: text, Err: err}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return out, &ParseError{Text: text, Err: err}
	}
	if err := util.ValidateParameters(fields, p.schema); err != nil {
		return out, &ParseError{Text: text, Err: err}
	}
	if err := util.DecodeArgs(fields, &out); err != nil {
		return out, &ParseError{Text: text, Err: err}
	}
	return out, nil
}

// extractJSON prefers a fenced block and otherwise scans for the first
// balanced {...} span, honoring string literals.
func extractJSON(text string) (string, error) {
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			if lang := strings.TrimSpace(rest[:nl]); lang == "" || lang == "json" {
				rest = rest[nl+1:]
			}
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			if obj, err := firstObject(rest[:end]); err == nil {
				return obj, nil
			}
		}
	}
	return firstObject(text)
}

func firstObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}

// PromptTemplate is the system prompt used by Extract; %s receives the
// format instructions.
const PromptTemplate = "Handle the user query.\n%s"

// Extract asks m to answer query in the structure of T and parses the reply.
func Extract[T any](ctx context.Context, m model.Model, p *Structured[T], query string) (T, error) {
	resp, err := model.Collect(ctx, m, model.Request{
		Instructions: fmt.Sprintf(PromptTemplate, p.FormatInstructions()),
		Contents:     []core.Content{core.NewUserContent(query)},
	}, nil)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("model call failed: %w", err)
	}
	return p.Parse(resp.Content.Text())
}
