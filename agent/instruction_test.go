package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockProvider struct {
	text string
	err  error
}

func (m mockProvider) Instruction(context.Context) (string, error) { return m.text, m.err }

func TestInstruction_Static(t *testing.T) {
	inst := NewInstructionFromText("static instruction")
	assert.True(t, inst.IsStatic())

	got, err := inst.Resolve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "static instruction", got)
}

func TestInstruction_Provider(t *testing.T) {
	inst := NewInstructionFromProvider(mockProvider{text: "dynamic"})
	assert.False(t, inst.IsStatic())

	got, err := inst.Resolve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "dynamic", got)
}

func TestInstruction_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	inst := NewInstructionFromProvider(mockProvider{err: boom})

	_, err := inst.Resolve(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestInstruction_Func(t *testing.T) {
	type key struct{}
	inst := NewInstructionFromFunc(func(ctx context.Context) (string, error) {
		return "shop " + ctx.Value(key{}).(string), nil
	})

	got, err := inst.Resolve(context.WithValue(context.Background(), key{}, "assistant"))
	assert.NoError(t, err)
	assert.Equal(t, "shop assistant", got)
}
