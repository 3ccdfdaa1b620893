package cli

import (
	"fmt"
	"io"

	"github.com/hupe1980/agentshop/agent"
	"github.com/hupe1980/agentshop/config"
	"github.com/hupe1980/agentshop/logging"
	"github.com/hupe1980/agentshop/model/provider"
	"github.com/hupe1980/agentshop/order"
	"github.com/hupe1980/agentshop/shoptools"
	"github.com/hupe1980/agentshop/tool"
)

// app bundles the components shared by chat and serve.
type app struct {
	settings config.Settings
	logger   logging.Logger
	store    *order.Store
	tools    *tool.Registry
	agent    *agent.ToolAgent
}

func loadSettings(flags *globalFlags) (config.Settings, error) {
	s, err := config.Load(flags.configPath, func(o *config.LoadOptions) { o.EnvFile = flags.envFile })
	if err != nil {
		return config.Settings{}, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		s.LogLevel = flags.logLevel
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

func newApp(s config.Settings, logOut io.Writer, agentOpts ...func(o *agent.Options)) (*app, error) {
	level, err := s.Level()
	if err != nil {
		return nil, err
	}
	logger := logging.NewSlogLogger(level, s.LogFormat, logOut)

	store := order.NewStore()
	tools, err := shoptools.NewRegistry(store, func(o *tool.RegistryOptions) { o.Logger = logger })
	if err != nil {
		return nil, err
	}

	llm, err := provider.New(s)
	if err != nil {
		return nil, err
	}

	opts := append([]func(o *agent.Options){func(o *agent.Options) {
		o.MaxSteps = s.MaxSteps
		o.HistoryLimit = s.HistoryLimit
		o.Stream = s.Stream
		o.Logger = logger
	}}, agentOpts...)

	return &app{
		settings: s,
		logger:   logger,
		store:    store,
		tools:    tools,
		agent:    agent.New("shopbot", llm, tools, opts...),
	}, nil
}
