package enums

import "slices"

// OrderStatus tracks fulfillment. The storefront only ever writes pending.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

func (s OrderStatus) IsValid() bool { return slices.Contains(orderStatuses, s) }

func ParseOrderStatus(raw string) (OrderStatus, error) {
	return parse(orderStatuses, "order status", raw)
}
