package pipeline

import (
	"context"
	"fmt"
)

// Runnable is a typed pipeline step.
type Runnable[I, O any] interface {
	// Invoke runs the step.
	Invoke(ctx context.Context, in I) (O, error)
	// Node describes the step's shape.
	Node() Node
}

// lambda adapts a function to Runnable.
type lambda[I, O any] struct {
	name string
	fn   func(ctx context.Context, in I) (O, error)
}

// Lambda wraps a fallible, context-aware function as a named step.
//
// Panics if fn is nil or name is empty.
func Lambda[I, O any](name string, fn func(ctx context.Context, in I) (O, error)) Runnable[I, O] {
	if name == "" {
		panic("pipeline: step name cannot be empty")
	}
	if fn == nil {
		panic("pipeline: step function cannot be nil")
	}
	return &lambda[I, O]{name: name, fn: fn}
}

// Func wraps a pure function as a named step.
func Func[I, O any](name string, fn func(in I) O) Runnable[I, O] {
	if fn == nil {
		panic("pipeline: step function cannot be nil")
	}
	return Lambda(name, func(_ context.Context, in I) (O, error) { return fn(in), nil })
}

func (l *lambda[I, O]) Invoke(ctx context.Context, in I) (O, error) {
	out, err := l.fn(ctx, in)
	if err != nil {
		var zero O
		return zero, &StepError{Step: l.name, Err: err}
	}
	return out, nil
}

func (l *lambda[I, O]) Node() Node { return Node{Kind: KindStep, Name: l.name} }

// sequence runs first then second.
type sequence[I, M, O any] struct {
	first  Runnable[I, M]
	second Runnable[M, O]
}

// Pipe chains two runnables. The context is checked between the stages.
func Pipe[I, M, O any](first Runnable[I, M], second Runnable[M, O]) Runnable[I, O] {
	if first == nil || second == nil {
		panic("pipeline: cannot pipe a nil runnable")
	}
	return &sequence[I, M, O]{first: first, second: second}
}

func (s *sequence[I, M, O]) Invoke(ctx context.Context, in I) (O, error) {
	var zero O
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	mid, err := s.first.Invoke(ctx, in)
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return s.second.Invoke(ctx, mid)
}

func (s *sequence[I, M, O]) Node() Node {
	children := make([]Node, 0, 2)
	for _, n := range []Node{s.first.Node(), s.second.Node()} {
		// Flatten nested sequences so Describe renders a single column.
		if n.Kind == KindSequence {
			children = append(children, n.Children...)
			continue
		}
		children = append(children, n)
	}
	return Node{Kind: KindSequence, Children: children}
}

// StepError records which step failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("pipeline step %s: %v", e.Step, e.Err) }

// Unwrap returns the underlying step error.
func (e *StepError) Unwrap() error { return e.Err }
