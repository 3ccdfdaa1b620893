package order

import (
	"errors"
	"fmt"
)

// ErrorKind classifies store failures.
type ErrorKind int

const (
	// KindNone is reported by KindOf for nil or foreign errors.
	KindNone ErrorKind = iota
	// KindOrderNotFound means the order id does not refer to a created order.
	KindOrderNotFound
	// KindItemNotFound means the order exists but does not contain the item.
	KindItemNotFound
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindOrderNotFound:
		return "order_not_found"
	case KindItemNotFound:
		return "item_not_found"
	default:
		return "none"
	}
}

// Error is returned by Store operations. Two Errors match under errors.Is
// when their kinds are equal, so the package sentinels can be compared
// against errors that carry ids.
type Error struct {
	Kind    ErrorKind
	OrderID ID
	ItemID  ItemID
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindOrderNotFound:
		if e.OrderID == 0 {
			return "order not found"
		}
		return fmt.Sprintf("order %d not found", e.OrderID)
	case KindItemNotFound:
		if e.OrderID == 0 {
			return "item not found in order"
		}
		return fmt.Sprintf("item %d not found in order %d", e.ItemID, e.OrderID)
	default:
		return "order error"
	}
}

// Is reports kind equality.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrOrderNotFound matches any error of kind KindOrderNotFound.
	ErrOrderNotFound = &Error{Kind: KindOrderNotFound}
	// ErrItemNotFound matches any error of kind KindItemNotFound.
	ErrItemNotFound = &Error{Kind: KindItemNotFound}
)

// KindOf extracts the ErrorKind from err, or KindNone if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}
