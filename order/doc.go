// Package order implements the in-memory order registry behind the shop tools.
//
// A Store hands out sequential order ids starting at 1 and keeps each order's
// item ids in insertion order. Orders are never deleted; their item lists
// only grow through AddItem and shrink through RemoveItem. Failures are
// reported as *Error values carrying an ErrorKind so callers (the tool layer in
// particular) can branch on the kind instead of comparing message strings.
package order
