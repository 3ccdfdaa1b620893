package pipeline

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parity() Runnable[int, string] {
	return Branch(
		Func("other", func(int) string { return "other" }),
		When("negative", func(x int) bool { return x < 0 }, Func("neg", func(int) string { return "negative" })),
		When("even", func(x int) bool { return x%2 == 0 }, Func("even", func(int) string { return "even" })),
	)
}

func TestPipe_RunsInOrder(t *testing.T) {
	p := Pipe(
		Func("double", func(x int) int { return x * 2 }),
		Func("format", strconv.Itoa),
	)
	out, err := p.Invoke(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, "42", out)
}

func TestBranch_FirstMatchWins(t *testing.T) {
	b := parity()
	ctx := context.Background()

	tests := map[int]string{-2: "negative", 4: "even", 3: "other"}
	for in, want := range tests {
		got, err := b.Invoke(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %d", in)
	}
}

func TestLambda_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	p := Pipe(
		Func("id", func(x int) int { return x }),
		Lambda("fail", func(context.Context, int) (int, error) { return 0, boom }),
	)
	_, err := p.Invoke(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "fail", stepErr.Step)
}

func TestPipe_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Pipe(
		Lambda("cancel", func(_ context.Context, x int) (int, error) {
			calls++
			cancel()
			return x, nil
		}),
		Func("never", func(x int) int {
			calls++
			return x
		}),
	)
	_, err := p.Invoke(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestConstructorsPanic(t *testing.T) {
	assert.Panics(t, func() { Lambda[int, int]("", func(context.Context, int) (int, error) { return 0, nil }) })
	assert.Panics(t, func() { Lambda[int, int]("x", nil) })
	assert.Panics(t, func() { Branch[int, int](nil) })
	assert.Panics(t, func() {
		Branch(Func("d", func(x int) int { return x }), Case[int, int]{Label: "bad"})
	})
}

func TestDescribe(t *testing.T) {
	p := Pipe(Func("first", func(x int) int { return x }), parity())
	want := "[input]\n" +
		"   |\n[first]\n" +
		"   |\n<branch>\n" +
		"   +-- negative --> [neg]\n" +
		"   +-- even --> [even]\n" +
		"   +-- default --> [other]\n" +
		"   |\n[output]\n"
	assert.Equal(t, want, Describe(p))
}

func TestNode_FlattensSequences(t *testing.T) {
	id := func(name string) Runnable[int, int] { return Func(name, func(x int) int { return x }) }
	p := Pipe(Pipe(id("a"), id("b")), id("c"))
	n := p.Node()
	require.Equal(t, KindSequence, n.Kind)
	require.Len(t, n.Children, 3)
	assert.Equal(t, "c", n.Children[2].Name)
}
