package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentshop/core"
	"github.com/hupe1980/agentshop/logging"
	"github.com/hupe1980/agentshop/model"
	"github.com/hupe1980/agentshop/session"
	"github.com/hupe1980/agentshop/tool"
)

// DefaultInstruction is the system prompt used when none is configured.
const DefaultInstruction = "You are an expert in online shop assistant. Your task is to help consumers."

// ErrMaxSteps is returned when the model keeps requesting tools beyond the step limit.
var ErrMaxSteps = errors.New("agent: maximum number of model steps reached")

// Options configures a ToolAgent.
type Options struct {
	Instruction Instruction
	// MaxSteps bounds the model calls made for one user message.
	MaxSteps int
	// HistoryLimit is the message window passed to the model (see session.History.Last).
	// Zero sends the full history.
	HistoryLimit int
	// Stream requests streamed generation; text deltas go to OnDelta.
	Stream  bool
	OnDelta func(delta string)
	Logger  logging.Logger
	// Sessions holds the per-session histories. A new store is created when nil.
	Sessions *session.InMemoryStore
}

// ToolAgent is a conversational agent that lets a model call tools from a
// registry. It is safe for concurrent use; calls for the same session are
// serialized.
type ToolAgent struct {
	name         string
	llm          model.Model
	tools        *tool.Registry
	instruction  Instruction
	maxSteps     int
	historyLimit int
	stream       bool
	onDelta      func(string)
	logger       logging.Logger
	sessions     *session.InMemoryStore

	locks sync.Map // session id -> *sync.Mutex
}

// New creates a ToolAgent. tools may be nil for a plain chat agent.
func New(name string, llm model.Model, tools *tool.Registry, optFns ...func(o *Options)) *ToolAgent {
	opts := Options{
		Instruction:  NewInstructionFromText(DefaultInstruction),
		MaxSteps:     5,
		HistoryLimit: 10,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 1
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewInMemoryStore()
	}

	return &ToolAgent{
		name:         name,
		llm:          llm,
		tools:        tools,
		instruction:  opts.Instruction,
		maxSteps:     opts.MaxSteps,
		historyLimit: opts.HistoryLimit,
		stream:       opts.Stream,
		onDelta:      opts.OnDelta,
		logger:       logging.With(logging.OrNoOp(opts.Logger), "agent", name),
		sessions:     opts.Sessions,
	}
}

// Name returns the agent name.
func (a *ToolAgent) Name() string { return a.name }

// Sessions returns the session store backing the agent.
func (a *ToolAgent) Sessions() *session.InMemoryStore { return a.sessions }

// Chat sends text as the next user message of sessionID and returns the
// model's final text reply.
func (a *ToolAgent) Chat(ctx context.Context, sessionID, text string) (string, error) {
	mu := a.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	history := a.sessions.Get(sessionID)
	history.Add(core.NewUserContent(text))

	a.logger.Debug("agent.turn.start", "session", sessionID)

	instructions, err := a.instruction.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve instruction: %w", err)
	}

	var defs []model.ToolDefinition
	if a.tools != nil {
		defs = a.tools.Definitions()
	}

	limiter := NewStepLimiter(a.maxSteps)
	for {
		if err := limiter.Increment(); err != nil {
			a.logger.Warn("agent.turn.max_steps", "session", sessionID, "max_steps", a.maxSteps)
			return "", err
		}
		step := limiter.Count()

		req := model.Request{
			Instructions: instructions,
			Contents:     history.Last(a.historyLimit),
			Tools:        defs,
			Stream:       a.stream,
		}

		resp, err := model.Collect(ctx, a.llm, req, a.onDelta)
		if err != nil {
			a.logger.Error("agent.model.error", "session", sessionID, "step", step, "error", err.Error())
			return "", fmt.Errorf("model call failed: %w", err)
		}

		reply := resp.Content
		reply.Role = core.RoleAssistant
		history.Add(reply)

		calls := reply.FunctionCalls()
		if len(calls) == 0 {
			a.logger.Info("agent.turn.complete",
				"session", sessionID,
				"steps", step,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return reply.Text(), nil
		}

		a.logger.Debug("agent.tool_calls", "session", sessionID, "step", step, "count", len(calls))
		history.Add(a.executeCalls(ctx, calls))
	}
}

// executeCalls runs the calls one after another; later calls may depend on
// the effects of earlier ones (create an order, then add to it).
func (a *ToolAgent) executeCalls(ctx context.Context, calls []core.FunctionCall) core.Content {
	parts := make([]core.Part, 0, len(calls))
	for _, fc := range calls {
		fr := core.FunctionResponse{ID: fc.ID, Name: fc.Name}

		var (
			result any
			err    error
		)
		if a.tools == nil {
			err = tool.NewToolError(fc.Name, fmt.Sprintf("tool %q not found", fc.Name), tool.CodeNotFound)
		} else {
			result, err = a.tools.Execute(ctx, fc.Name, fc.Arguments)
		}

		if err != nil {
			fr.Error = err.Error()
		} else {
			fr.Response = result
		}
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}
	return core.Content{Role: core.RoleTool, Parts: parts}
}

// EndSession drops the history and lock of sessionID. It waits for an
// in-flight Chat on the same session to finish.
func (a *ToolAgent) EndSession(sessionID string) {
	mu := a.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	a.sessions.Delete(sessionID)
	a.locks.Delete(sessionID)
	a.logger.Debug("agent.session.end", "session", sessionID)
}

// activeLocks reports the number of tracked session locks.
func (a *ToolAgent) activeLocks() int {
	n := 0
	a.locks.Range(func(_, _ any) bool { n++; return true })
	return n
}

func (a *ToolAgent) sessionLock(sessionID string) *sync.Mutex {
	mu, _ := a.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
