package pipeline

import "context"

// Case pairs a predicate with the runnable selected when it holds.
type Case[I, O any] struct {
	Label string
	Cond  func(in I) bool
	Then  Runnable[I, O]
}

// When builds a Case.
func When[I, O any](label string, cond func(in I) bool, then Runnable[I, O]) Case[I, O] {
	return Case[I, O]{Label: label, Cond: cond, Then: then}
}

type branch[I, O any] struct {
	cases []Case[I, O]
	def   Runnable[I, O]
}

// Branch routes the input to the first case whose Cond returns true, in
// declaration order, or to def when none match.
//
// Panics if def is nil or any case is incomplete.
func Branch[I, O any](def Runnable[I, O], cases ...Case[I, O]) Runnable[I, O] {
	if def == nil {
		panic("pipeline: branch requires a default runnable")
	}
	for _, c := range cases {
		if c.Cond == nil || c.Then == nil {
			panic("pipeline: branch case requires a condition and a runnable")
		}
	}
	return &branch[I, O]{cases: append([]Case[I, O](nil), cases...), def: def}
}

func (b *branch[I, O]) Invoke(ctx context.Context, in I) (O, error) {
	return b.route(in).Invoke(ctx, in)
}

func (b *branch[I, O]) route(in I) Runnable[I, O] {
	for _, c := range b.cases {
		if c.Cond(in) {
			return c.Then
		}
	}
	return b.def
}

func (b *branch[I, O]) Node() Node {
	n := Node{Kind: KindBranch, Name: "branch"}
	for _, c := range b.cases {
		n.Children = append(n.Children, c.Then.Node())
		n.Labels = append(n.Labels, c.Label)
	}
	n.Children = append(n.Children, b.def.Node())
	n.Labels = append(n.Labels, "default")
	return n
}
