package model

import "time"

// OrderStatus is the lifecycle stage of an order: unpaid → paid → delivered.
type OrderStatus string

const (
	OrderUnpaid    OrderStatus = "unpaid"
	OrderPaid      OrderStatus = "paid"
	OrderDelivered OrderStatus = "delivered"
)

// Flags returns the isPaid/isDelivered pair a status maps to. Delivered
// always implies paid.
func (s OrderStatus) Flags() (isPaid, isDelivered bool) {
	switch s {
	case OrderPaid:
		return true, false
	case OrderDelivered:
		return true, true
	default:
		return false, false
	}
}

func (s OrderStatus) rank() int {
	switch s {
	case OrderPaid:
		return 1
	case OrderDelivered:
		return 2
	default:
		return 0
	}
}

// StatusFromFlags maps the two booleans to a status. delivered wins even if
// the paid flag is missing.
func StatusFromFlags(isPaid, isDelivered bool) OrderStatus {
	switch {
	case isDelivered:
		return OrderDelivered
	case isPaid:
		return OrderPaid
	default:
		return OrderUnpaid
	}
}

// OrderItem is a product snapshot inside an order.
type OrderItem struct {
	Product
	Quantity int `json:"quantity"`
}

// ItemsFromCart converts cart lines into order items, ordered by product id.
func ItemsFromCart(c Cart) []OrderItem {
	lines := c.Items()
	if len(lines) == 0 {
		return nil
	}
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItem{Product: line.Product, Quantity: line.Quantity})
	}
	return items
}

// ItemsTotal returns Σ quantity × price.
func ItemsTotal(items []OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}

// Order is a placed order as known by the client.
type Order struct {
	ID          int64
	Items       []OrderItem
	TotalPrice  float64
	ItemCount   int
	IsPaid      bool
	IsDelivered bool
	CreatedAt   time.Time
}

// Status derives the lifecycle stage from the flags.
func (o Order) Status() OrderStatus {
	return StatusFromFlags(o.IsPaid, o.IsDelivered)
}

// CanMoveTo reports whether target is the same or a later stage.
func (o Order) CanMoveTo(target OrderStatus) bool {
	return target.rank() >= o.Status().rank()
}

// Clone returns a copy with its own item slice.
func (o Order) Clone() Order {
	dup := o
	if o.Items != nil {
		dup.Items = make([]OrderItem, len(o.Items))
		copy(dup.Items, o.Items)
	}
	return dup
}
