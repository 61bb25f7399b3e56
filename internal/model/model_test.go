package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_RecomputeAndItems(t *testing.T) {
	c := NewCart()
	c.Lines[2] = CartLine{Product: Product{ID: 2, Price: 5}, Quantity: 1}
	c.Lines[1] = CartLine{Product: Product{ID: 1, Price: 10}, Quantity: 2}
	c.Recompute()

	assert.Equal(t, 3, c.TotalQuantity)
	assert.InDelta(t, 25.0, c.TotalPrice, 1e-9)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].Product.ID)
	assert.Equal(t, int64(2), items[1].Product.ID)
}

func TestCart_CloneIsIndependent(t *testing.T) {
	c := NewCart()
	c.Lines[1] = CartLine{Product: Product{ID: 1, Price: 1}, Quantity: 1}
	c.Recompute()

	dup := c.Clone()
	dup.Lines[1] = CartLine{Product: Product{ID: 1, Price: 1}, Quantity: 9}
	delete(dup.Lines, 1)

	assert.Equal(t, 1, c.Lines[1].Quantity)
}

func TestUnmarshalCart_RecomputesTotals(t *testing.T) {
	data := []byte(`{"items":{"1":{"product":{"id":1,"price":10},"quantity":2},"2":{"product":{"id":2,"price":4},"quantity":0}},"totalQuantity":99,"totalPrice":1}`)

	c, err := UnmarshalCart(data)
	require.NoError(t, err)
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.TotalQuantity)
	assert.InDelta(t, 20.0, c.TotalPrice, 1e-9)
}

func TestUnmarshalCart_Corrupt(t *testing.T) {
	c, err := UnmarshalCart([]byte("{nope"))
	require.Error(t, err)
	assert.True(t, c.Empty())
	assert.NotNil(t, c.Lines)
}

func TestMarshalCart_EmptyCartKeepsItems(t *testing.T) {
	data, err := MarshalCart(Cart{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":{},"totalQuantity":0,"totalPrice":0}`, string(data))
}

func TestOrderStatus_Flags(t *testing.T) {
	tests := []struct {
		status        OrderStatus
		wantPaid      bool
		wantDelivered bool
	}{
		{OrderUnpaid, false, false},
		{OrderPaid, true, false},
		{OrderDelivered, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			paid, delivered := tt.status.Flags()
			assert.Equal(t, tt.wantPaid, paid)
			assert.Equal(t, tt.wantDelivered, delivered)
			assert.Equal(t, tt.status, StatusFromFlags(paid, delivered))
		})
	}
}

func TestOrder_CanMoveTo(t *testing.T) {
	unpaid := Order{}
	paid := Order{IsPaid: true}
	delivered := Order{IsPaid: true, IsDelivered: true}

	assert.True(t, unpaid.CanMoveTo(OrderPaid))
	assert.True(t, unpaid.CanMoveTo(OrderDelivered))
	assert.True(t, paid.CanMoveTo(OrderDelivered))
	assert.False(t, paid.CanMoveTo(OrderUnpaid))
	assert.False(t, delivered.CanMoveTo(OrderPaid))
	assert.True(t, delivered.CanMoveTo(OrderDelivered))
}

func TestItemsFromCart(t *testing.T) {
	c := NewCart()
	c.Lines[1] = CartLine{Product: Product{ID: 1, Price: 10}, Quantity: 2}
	c.Lines[2] = CartLine{Product: Product{ID: 2, Price: 5}, Quantity: 1}

	items := ItemsFromCart(c)
	require.Len(t, items, 2)
	assert.InDelta(t, 25.0, ItemsTotal(items), 1e-9)
	assert.Nil(t, ItemsFromCart(NewCart()))
}

func TestProfileUpdate_Empty(t *testing.T) {
	blank := "  "
	name := "Ann"
	assert.True(t, ProfileUpdate{}.Empty())
	assert.True(t, ProfileUpdate{Name: &blank}.Empty())
	assert.False(t, ProfileUpdate{Name: &name}.Empty())
}
