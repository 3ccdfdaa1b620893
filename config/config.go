// Package config loads the shop assistant settings from an optional YAML
// file, an optional .env file and the process environment, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentshop/logging"
)

// Supported model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Settings holds all runtime configuration.
type Settings struct {
	// APIProvider is the host of an OpenAI-compatible endpoint, e.g. api.mistral.ai.
	APIProvider  string  `yaml:"api_provider"`
	APIKey       string  `yaml:"api_key"`
	TavilyAPIKey string  `yaml:"tavily_api_key"`
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int64   `yaml:"max_tokens"`
	HistoryLimit int     `yaml:"history_limit"`
	MaxSteps     int     `yaml:"max_steps"`
	Stream       bool    `yaml:"stream"`
	ListenAddr   string  `yaml:"listen_addr"`
	LogLevel     string  `yaml:"log_level"`
	LogFormat    string  `yaml:"log_format"`
}

// Default returns the built-in settings: Mistral through its
// OpenAI-compatible API.
func Default() Settings {
	return Settings{
		APIProvider:  "api.mistral.ai",
		Provider:     ProviderOpenAI,
		Model:        "mistral-large-latest",
		Temperature:  0,
		MaxTokens:    1024,
		HistoryLimit: 10,
		MaxSteps:     5,
		ListenAddr:   ":8080",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// ProviderBaseURL returns the OpenAI-compatible base URL for APIProvider,
// or "" when no provider host is set.
func (s Settings) ProviderBaseURL() string {
	if s.APIProvider == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/v1", s.APIProvider)
}

// Level returns the parsed log level.
func (s Settings) Level() (logging.LogLevel, error) {
	return logging.ParseLevel(s.LogLevel)
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	switch s.Provider {
	case ProviderOpenAI, ProviderAnthropic:
		if s.APIKey == "" {
			return fmt.Errorf("config: api key is required for provider %q", s.Provider)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("config: unknown provider %q", s.Provider)
	}
	if s.Model == "" && s.Provider != ProviderMock {
		return errors.New("config: model is required")
	}
	if s.MaxSteps <= 0 {
		return fmt.Errorf("config: max_steps must be positive, got %d", s.MaxSteps)
	}
	if s.HistoryLimit < 0 {
		return fmt.Errorf("config: history_limit must not be negative, got %d", s.HistoryLimit)
	}
	if _, err := s.Level(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LoadOptions control where Load reads from.
type LoadOptions struct {
	// EnvFile is read with godotenv; a missing file is ignored.
	EnvFile string
	// LookupEnv reads the process environment.
	LookupEnv func(key string) (string, bool)
}

// Load builds Settings from Default, the YAML file at path (skipped when
// path is empty), the .env file and the environment.
func Load(path string, optFns ...func(o *LoadOptions)) (Settings, error) {
	opts := LoadOptions{
		EnvFile:   ".env",
		LookupEnv: os.LookupEnv,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse yaml: %w", err)
		}
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		m, err := godotenv.Read(opts.EnvFile)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Settings{}, fmt.Errorf("read env file: %w", err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := opts.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := overlay(&s, lookup); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func overlay(s *Settings, lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	str(&s.APIProvider, "API_PROVIDER")
	str(&s.APIKey, "API_KEY", "MISTRAL_API_KEY")
	str(&s.TavilyAPIKey, "TAVILY_API_KEY")
	str(&s.Provider, "LLM_PROVIDER")
	str(&s.Model, "LLM_MODEL")
	str(&s.ListenAddr, "LISTEN_ADDR")
	str(&s.LogLevel, "LOG_LEVEL")
	str(&s.LogFormat, "LOG_FORMAT")
	s.Provider = strings.ToLower(s.Provider)

	var errs []error
	parse := func(key string, set func(string) error) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		if err := set(v); err != nil {
			errs = append(errs, fmt.Errorf("config: invalid %s %q: %w", key, v, err))
		}
	}

	parse("LLM_TEMPERATURE", func(v string) (err error) {
		s.Temperature, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse("LLM_MAX_TOKENS", func(v string) (err error) {
		s.MaxTokens, err = strconv.ParseInt(v, 10, 64)
		return err
	})
	parse("HISTORY_LIMIT", func(v string) (err error) {
		s.HistoryLimit, err = strconv.Atoi(v)
		return err
	})
	parse("MAX_STEPS", func(v string) (err error) {
		s.MaxSteps, err = strconv.Atoi(v)
		return err
	})
	parse("STREAM", func(v string) (err error) {
		s.Stream, err = strconv.ParseBool(v)
		return err
	})

	return errors.Join(errs...)
}
