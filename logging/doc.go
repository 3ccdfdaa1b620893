// Package logging provides the minimal logging interface used across agentshop.
//
// Components accept a Logger through their functional options and default to
// NoOpLogger. NewSlogLogger builds a slog-backed Logger writing JSON or text:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", os.Stderr)
//	registry := tool.NewRegistry(func(o *tool.RegistryOptions) { o.Logger = logger })
//
// Messages are dotted event names ("tool.call.start") followed by key/value pairs.
package logging
