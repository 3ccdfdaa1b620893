package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentshop/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		provider string
		name     string
	}{
		{config.ProviderOpenAI, "openai"},
		{config.ProviderAnthropic, "anthropic"},
		{config.ProviderMock, "mock"},
	}
	for _, tc := range tests {
		t.Run(tc.provider, func(t *testing.T) {
			s := config.Default()
			s.Provider = tc.provider
			s.APIKey = "test"

			m, err := New(s)
			require.NoError(t, err)
			assert.Equal(t, tc.name, m.Info().Provider)
			assert.True(t, m.Info().SupportsTools)
		})
	}
}

func TestNew_ModelName(t *testing.T) {
	s := config.Default()
	s.APIKey = "test"

	m, err := New(s)
	require.NoError(t, err)
	assert.Equal(t, "mistral-large-latest", m.Info().Name)
}

func TestNew_Unknown(t *testing.T) {
	s := config.Default()
	s.Provider = "cohere"

	_, err := New(s)
	assert.ErrorContains(t, err, "unknown provider")
}
