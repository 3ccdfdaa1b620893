// Package provider builds a model.Model from config.Settings.
package provider

import (
	"fmt"

	"github.com/hupe1980/agentshop/config"
	"github.com/hupe1980/agentshop/model"
	"github.com/hupe1980/agentshop/model/anthropic"
	"github.com/hupe1980/agentshop/model/openai"
)

// New selects the adapter for s.Provider. The OpenAI adapter targets
// s.ProviderBaseURL(), which defaults to Mistral's OpenAI-compatible API.
func New(s config.Settings) (model.Model, error) {
	switch s.Provider {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.Model = s.Model
			o.Temperature = s.Temperature
			o.MaxCompletionTokens = s.MaxTokens
			o.APIKey = s.APIKey
			o.BaseURL = s.ProviderBaseURL()
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = s.Model
			o.Temperature = s.Temperature
			o.MaxTokens = s.MaxTokens
			o.APIKey = s.APIKey
		}), nil
	case config.ProviderMock:
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", s.Provider)
	}
}
