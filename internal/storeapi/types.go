package storeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/storefront/internal/model"
)

const serverTimestampLayout = "2006-01-02 15:04:05"

// StatusOK is the acknowledgment value the order and profile endpoints return.
const StatusOK = "OK"

const statusError = "error"

// flexID accepts ids encoded as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// flexBool accepts 0/1 integers as well as JSON booleans.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "1", "true", `"1"`, `"true"`:
		*f = true
	case "0", "false", `"0"`, `"false"`, "null", `""`:
		*f = false
	default:
		return fmt.Errorf("invalid flag %s", data)
	}
	return nil
}

// AuthResult is the body returned by sign-in and sign-up.
type AuthResult struct {
	Token   string `json:"token"`
	ID      flexID `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Identity extracts the profile part of the result.
func (r AuthResult) Identity() model.Identity {
	return model.Identity{ID: string(r.ID), Name: r.Name, Email: r.Email}
}

// ProfileResult is the body returned by the profile update endpoint. Empty
// fields were not changed.
type ProfileResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      flexID `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// Merge overlays the returned fields onto identity.
func (r ProfileResult) Merge(identity model.Identity) model.Identity {
	if id := strings.TrimSpace(string(r.ID)); id != "" {
		identity.ID = id
	}
	if name := strings.TrimSpace(r.Name); name != "" {
		identity.Name = name
	}
	if email := strings.TrimSpace(r.Email); email != "" {
		identity.Email = email
	}
	return identity
}

// Ack is the acknowledgment body of mutating order calls.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the server acknowledged the call.
func (a Ack) OK() bool {
	return a.Status == StatusOK
}

// CreatedOrder is the body returned when an order is created.
type CreatedOrder struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the server acknowledged the order.
func (c CreatedOrder) OK() bool {
	return c.Status == StatusOK
}

// OrderListResponse mirrors /orders/all.
type OrderListResponse struct {
	Orders []OrderRecord `json:"orders"`
}

// OrderRecord is an order in transport form.
type OrderRecord struct {
	ID          int64           `json:"id"`
	OrderItems  json.RawMessage `json:"order_items"`
	TotalPrice  json.Number     `json:"total_price"`
	ItemNumbers int             `json:"item_numbers"`
	IsPaid      flexBool        `json:"is_paid"`
	IsDelivered flexBool        `json:"is_delivered"`
	CreatedAt   string          `json:"created_at"`
}

// ParsedItems decodes order_items, which the server sends as a JSON-encoded
// string; a plain array is accepted too.
func (o OrderRecord) ParsedItems() ([]model.OrderItem, error) {
	raw := bytes.TrimSpace(o.OrderItems)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("order %d items: %w", o.ID, err)
		}
		if strings.TrimSpace(encoded) == "" {
			return nil, nil
		}
		raw = []byte(encoded)
	}
	var items []model.OrderItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("order %d items: %w", o.ID, err)
	}
	return items, nil
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (o OrderRecord) ParsedCreatedAt() time.Time {
	return parseTime(o.CreatedAt)
}

// Order converts the record into the domain type. A paid flag is implied by
// a delivered one.
func (o OrderRecord) Order() (model.Order, error) {
	items, err := o.ParsedItems()
	if err != nil {
		return model.Order{}, err
	}
	total := model.ItemsTotal(items)
	if o.TotalPrice != "" {
		if v, err := strconv.ParseFloat(o.TotalPrice.String(), 64); err == nil {
			total = v
		}
	}
	count := o.ItemNumbers
	if count == 0 {
		count = len(items)
	}
	return model.Order{
		ID:          o.ID,
		Items:       items,
		TotalPrice:  total,
		ItemCount:   count,
		IsPaid:      bool(o.IsPaid) || bool(o.IsDelivered),
		IsDelivered: bool(o.IsDelivered),
		CreatedAt:   o.ParsedCreatedAt(),
	}, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(serverTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateStatusRequest struct {
	OrderID     int64 `json:"orderID"`
	IsPaid      int   `json:"isPaid"`
	IsDelivered int   `json:"isDelivered"`
}

type createOrderRequest struct {
	Items     []model.OrderItem `json:"items"`
	UserEmail string            `json:"userEmail"`
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
