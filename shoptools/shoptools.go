package shoptools

import (
	"context"
	"errors"

	"github.com/hupe1980/agentshop/logging"
	"github.com/hupe1980/agentshop/order"
	"github.com/hupe1980/agentshop/quadratic"
	"github.com/hupe1980/agentshop/tool"
)

// Status strings returned by the order tools.
const (
	SuccessAddItemMessage     = "success add item message"
	SuccessRemoveItemMessage  = "success remove item message"
	ErrorNoOrderMessage       = "error no order message"
	ErrorNoItemInOrderMessage = "error no item in order message"
)

type noArgs struct{}

type orderArgs struct {
	OrderID int `json:"order_id" description:"order id"`
}

type itemArgs struct {
	OrderID int `json:"order_id" description:"order id"`
	ItemID  int `json:"item_id" description:"item id"`
}

type quadraticArgs struct {
	A float64 `json:"a" description:"coefficient of x^2, must be non-zero"`
	B float64 `json:"b" description:"coefficient of x"`
	C float64 `json:"c" description:"constant term"`
}

type linearArgs struct {
	A float64 `json:"a" description:"a coefficient"`
	B float64 `json:"b" description:"bias"`
}

// Options configure the tools built by this package.
type Options struct {
	Logger logging.Logger
}

func toolOptions(opts Options) func(o *tool.FunctionToolOptions) {
	return func(o *tool.FunctionToolOptions) { o.Logger = opts.Logger }
}

// OrderTools returns the five order management tools bound to store.
func OrderTools(store *order.Store, optFns ...func(o *Options)) []tool.Tool {
	opts := applyOptions(optFns)
	to := toolOptions(opts)

	return []tool.Tool{
		tool.NewTypedTool("create_order",
			"Create new order. Returns the id of the new, empty order.",
			func(context.Context, noArgs) (any, error) {
				return store.Create(), nil
			}, to),
		tool.NewTypedTool("add_item_to_order",
			`Add an item to an existing order. Returns "success add item message" on success, otherwise "error no order message".`,
			func(_ context.Context, in itemArgs) (any, error) {
				return statusOf(store.AddItem(in.OrderID, in.ItemID), SuccessAddItemMessage)
			}, to),
		tool.NewTypedTool("remove_item_from_order",
			`Remove an item from an order. Returns "success remove item message" on success, "error no order message" if the order does not exist, otherwise "error no item in order message".`,
			func(_ context.Context, in itemArgs) (any, error) {
				return statusOf(store.RemoveItem(in.OrderID, in.ItemID), SuccessRemoveItemMessage)
			}, to),
		tool.NewTypedTool("get_order_items",
			"Get order items. Returns the item ids of the order, empty if the order does not exist.",
			func(_ context.Context, in orderArgs) (any, error) {
				items, err := store.Items(in.OrderID)
				if errors.Is(err, order.ErrOrderNotFound) {
					return []order.ItemID{}, nil
				}
				return items, err
			}, to),
		tool.NewTypedTool("get_orders",
			"Get all orders. Returns the ids of all existing orders.",
			func(context.Context, noArgs) (any, error) {
				return store.Orders(), nil
			}, to),
	}
}

// SolverTools returns the equation solving tools.
func SolverTools(optFns ...func(o *Options)) []tool.Tool {
	to := toolOptions(applyOptions(optFns))

	return []tool.Tool{
		tool.NewTypedTool("solve_quadratic",
			"Solve the quadratic equation a*x^2 + b*x + c = 0 and return its real or complex roots.",
			func(ctx context.Context, in quadraticArgs) (any, error) {
				return quadratic.Solve(ctx, in.A, in.B, in.C)
			}, to),
		tool.NewTypedTool("solve_linear_equation",
			"Solve the linear equation a*x + b = 0. Example: 4*x - 12 = 0 has a=4, b=-12 and the solution 3.",
			func(_ context.Context, in linearArgs) (any, error) {
				return quadratic.SolveLinear(in.A, in.B)
			}, to),
	}
}

// NewRegistry builds a registry holding the order and solver tools.
func NewRegistry(store *order.Store, optFns ...func(o *tool.RegistryOptions)) (*tool.Registry, error) {
	reg := tool.NewRegistry(optFns...)

	// Tool level logging follows the registry logger.
	var ro tool.RegistryOptions
	for _, fn := range optFns {
		fn(&ro)
	}
	withLogger := func(o *Options) { o.Logger = ro.Logger }

	if err := reg.Register(OrderTools(store, withLogger)...); err != nil {
		return nil, err
	}
	if err := reg.Register(SolverTools(withLogger)...); err != nil {
		return nil, err
	}
	return reg, nil
}

func applyOptions(optFns []func(o *Options)) Options {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// statusOf maps a store outcome to its wire status string. Errors other than
// the order kinds are returned unchanged.
func statusOf(err error, success string) (any, error) {
	switch order.KindOf(err) {
	case order.KindNone:
		if err != nil {
			return nil, err
		}
		return success, nil
	case order.KindOrderNotFound:
		return ErrorNoOrderMessage, nil
	case order.KindItemNotFound:
		return ErrorNoItemInOrderMessage, nil
	default:
		return nil, err
	}
}
