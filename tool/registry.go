package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentshop/logging"
	"github.com/hupe1980/agentshop/model"
)

const instrumentationName = "github.com/hupe1980/agentshop/tool"

// RegistryOptions configure a Registry. Nil providers fall back to the
// global OpenTelemetry providers.
type RegistryOptions struct {
	Logger         logging.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Registry resolves tools by name and executes model issued calls.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool

	logger  logging.Logger
	tracer  trace.Tracer
	calls   metric.Int64Counter
	failed  metric.Int64Counter
	latency metric.Float64Histogram
}

// NewRegistry creates an empty Registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	r := &Registry{
		tools:  make(map[string]Tool),
		logger: logging.OrNoOp(opts.Logger),
		tracer: tp.Tracer(instrumentationName),
	}

	meter := mp.Meter(instrumentationName)
	// Instrument creation only fails on invalid names; the API returns usable
	// no-op instruments alongside any error.
	r.calls, _ = meter.Int64Counter("agentshop.tool.calls",
		metric.WithDescription("Number of tool executions"),
	)
	r.failed, _ = meter.Int64Counter("agentshop.tool.errors",
		metric.WithDescription("Number of failed tool executions"),
	)
	r.latency, _ = meter.Float64Histogram("agentshop.tool.latency_ms",
		metric.WithDescription("Tool execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)

	return r
}

// Register adds tools to the registry. Registering a name twice is an error.
func (r *Registry) Register(tools ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tools {
		name := t.Name()
		if name == "" {
			return fmt.Errorf("tool: empty tool name")
		}
		if _, exists := r.tools[name]; exists {
			return fmt.Errorf("tool: %q already registered", name)
		}
		r.tools[name] = t
	}
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the model-facing definitions, sorted by name.
func (r *Registry) Definitions() []model.ToolDefinition {
	names := r.Names()
	defs := make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		t, _ := r.Get(name)
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Execute decodes rawArgs (a JSON object, empty means no arguments) and calls
// the named tool inside a "tool.execute" span. Panics are recovered and
// reported as PANIC tool errors.
func (r *Registry) Execute(ctx context.Context, name, rawArgs string) (result any, err error) {
	ctx, span := r.tracer.Start(ctx, "tool.execute",
		trace.WithAttributes(attribute.String("tool.name", name)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("tool", name))

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool.execute.panic", "tool", name, "panic", fmt.Sprint(rec))
			result, err = nil, &ToolError{
				Tool:    name,
				Message: fmt.Sprintf("panic: %v", rec),
				Code:    CodePanic,
			}
		}

		r.calls.Add(ctx, 1, attrs)
		r.latency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
		if err != nil {
			r.failed.Add(ctx, 1, attrs)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	t, ok := r.Get(name)
	if !ok {
		r.logger.Warn("tool.execute.not_found", "tool", name)
		return nil, &ToolError{
			Tool:    name,
			Message: fmt.Sprintf("tool %q not found", name),
			Code:    CodeNotFound,
		}
	}

	args := map[string]any{}
	if strings.TrimSpace(rawArgs) != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			r.logger.Warn("tool.execute.invalid_arguments", "tool", name, "error", err.Error())
			return nil, &ToolError{
				Tool:    name,
				Message: fmt.Sprintf("arguments are not a JSON object: %v", err),
				Code:    CodeInvalidArguments,
				Cause:   err,
			}
		}
	}

	r.logger.Debug("tool.execute.start", "tool", name)

	result, err = t.Call(ctx, args)
	if err != nil {
		r.logger.Warn("tool.execute.failed", "tool", name, "error", err.Error())
		return nil, err
	}

	r.logger.Info("tool.execute.complete", "tool", name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}
