// Package pipeline composes small typed computation steps into linear and
// branching pipelines.
//
// A Runnable transforms an input into an output. Lambda wraps a plain
// function, Pipe chains two runnables, and Branch routes an input to the first
// Case whose predicate matches (or to a default). Every runnable reports a
// Node describing its shape so a composed pipeline can be rendered with
// Describe:
//
//	p := pipeline.Pipe(
//	    pipeline.Func("double", func(x int) int { return 2 * x }),
//	    pipeline.Branch(
//	        pipeline.Func("odd", func(int) string { return "odd" }),
//	        pipeline.When("even", func(x int) bool { return x%2 == 0 },
//	            pipeline.Func("even", func(int) string { return "even" })),
//	    ),
//	)
//	out, err := p.Invoke(ctx, 21)
//
// Pipelines are immutable after construction and safe for concurrent use
// when their step functions are.
package pipeline
