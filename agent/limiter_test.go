package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepLimiter(t *testing.T) {
	l := NewStepLimiter(2)
	require.NoError(t, l.Increment())
	require.NoError(t, l.Increment())
	assert.Equal(t, 0, l.Remaining())

	err := l.Increment()
	assert.ErrorIs(t, err, ErrMaxSteps)
	assert.Equal(t, 2, l.Count())
}

func TestStepLimiter_Unlimited(t *testing.T) {
	l := NewStepLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Increment())
	}
	assert.Equal(t, -1, l.Remaining())
	assert.Equal(t, 100, l.Count())
}
