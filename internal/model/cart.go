package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CartLine is one product's entry in a cart. Quantity is always >= 1; a line
// that would drop to zero is removed instead.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns quantity × unit price.
func (l CartLine) Subtotal() float64 {
	return float64(l.Quantity) * l.Product.Price
}

// Cart is the per-user shopping cart. TotalQuantity and TotalPrice are
// derived from Lines and recomputed on every change.
type Cart struct {
	Lines         map[int64]CartLine `json:"items"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalPrice    float64            `json:"totalPrice"`
}

// NewCart returns an empty cart.
func NewCart() Cart {
	return Cart{Lines: map[int64]CartLine{}}
}

// Recompute derives the totals from the line mapping.
func (c *Cart) Recompute() {
	if c.Lines == nil {
		c.Lines = map[int64]CartLine{}
	}
	quantity := 0
	price := 0.0
	for _, line := range c.Lines {
		quantity += line.Quantity
		price += line.Subtotal()
	}
	c.TotalQuantity = quantity
	c.TotalPrice = price
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	dup := Cart{
		Lines:         make(map[int64]CartLine, len(c.Lines)),
		TotalQuantity: c.TotalQuantity,
		TotalPrice:    c.TotalPrice,
	}
	for id, line := range c.Lines {
		dup.Lines[id] = line
	}
	return dup
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Items returns the lines ordered by product id.
func (c Cart) Items() []CartLine {
	if len(c.Lines) == 0 {
		return nil
	}
	items := make([]CartLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, line)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Product.ID < items[j].Product.ID
	})
	return items
}

// MarshalCart serializes the whole cart for the key-value store.
func MarshalCart(c Cart) ([]byte, error) {
	if c.Lines == nil {
		c.Lines = map[int64]CartLine{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal cart: %w", err)
	}
	return data, nil
}

// UnmarshalCart decodes a persisted cart, dropping lines with a non-positive
// quantity and recomputing the totals.
func UnmarshalCart(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return NewCart(), fmt.Errorf("unmarshal cart: %w", err)
	}
	for id, line := range c.Lines {
		if line.Quantity <= 0 {
			delete(c.Lines, id)
		}
	}
	c.Recompute()
	return c, nil
}
