// Package shoptools exposes the order store and the equation solvers as
// model-callable tools.
//
// Order tools report domain outcomes as fixed status strings rather than
// errors, so a model always receives a result it can relay to the customer:
//
//	add_item_to_order       -> "success add item message" | "error no order message"
//	remove_item_from_order  -> "success remove item message" | "error no order message" |
//	                           "error no item in order message"
//	get_order_items         -> item ids, or [] for an unknown order
package shoptools
