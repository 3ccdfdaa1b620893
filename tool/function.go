package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentshop/internal/util"
	"github.com/hupe1980/agentshop/logging"
)

// FunctionTool exposes a plain Go function as a Tool.
//
// Call validates arguments against the declared schema before invoking the
// function and normalizes failures into *ToolError:
//
//	VALIDATION_ERROR  -> schema / argument mismatch
//	EXECUTION_ERROR   -> the function returned a plain error
//
// A *ToolError returned by the function is forwarded unchanged. A FunctionTool
// has no mutable state after construction and is safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
	logger      logging.Logger
}

// FunctionToolOptions configure a FunctionTool.
type FunctionToolOptions struct {
	Logger logging.Logger
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(ctx context.Context, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
	optFns ...func(o *FunctionToolOptions),
) *FunctionTool {
	opts := FunctionToolOptions{}
	for _, f := range optFns {
		f(&opts)
	}
	if parameters == nil {
		parameters = util.CreateSchema(nil)
	}
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
		logger:      logging.OrNoOp(opts.Logger),
	}
}

// NewTypedTool derives the schema from T and decodes validated arguments into
// a T before calling fn.
//
//	type itemArgs struct {
//	  OrderID int `json:"order_id" description:"order id"`
//	  ItemID  int `json:"item_id" description:"item id"`
//	}
//
//	add := NewTypedTool("add_item_to_order", "Add item to order",
//	  func(ctx context.Context, in itemArgs) (any, error) { ... })
func NewTypedTool[T any](
	name, description string,
	fn func(ctx context.Context, in T) (any, error),
	optFns ...func(o *FunctionToolOptions),
) *FunctionTool {
	var zero T
	return NewFunctionTool(name, description, util.CreateSchema(zero), func(ctx context.Context, args map[string]any) (any, error) {
		var in T
		if err := util.DecodeArgs(args, &in); err != nil {
			return nil, &ToolError{
				Tool:    name,
				Message: fmt.Sprintf("invalid arguments: %v", err),
				Code:    CodeInvalidArguments,
				Cause:   err,
			}
		}
		return fn(ctx, in)
	}, optFns...)
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args then invokes the underlying function.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	start := time.Now()

	t.logger.Debug("tool.call.start", "tool", t.name)

	if args == nil {
		args = map[string]any{}
	}

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		t.logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
			Cause:   err,
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			t.logger.Error("tool.call.error", "tool", t.name, "code", toolErr.Code, "error", toolErr.Message)

			return nil, toolErr
		}

		t.logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
			Cause:   err,
		}
	}

	t.logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
