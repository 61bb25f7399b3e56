package state

import (
	"fmt"
	"time"

	"github.com/five82/storefront/internal/model"
)

// Status is the lifecycle of the most recent request a store issued.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Tracker records the request lifecycle of one store. It is not safe for
// concurrent use; owners call it while holding their own lock.
type Tracker struct {
	status              Status
	lastErr             error
	lastUpdated         time.Time
	consecutiveFailures int
}

// Begin marks a request as in flight.
func (t *Tracker) Begin() {
	t.status = StatusLoading
}

// Succeed marks the request as resolved and clears the error.
func (t *Tracker) Succeed() {
	t.status = StatusSucceeded
	t.lastErr = nil
	t.lastUpdated = time.Now()
	t.consecutiveFailures = 0
}

// Fail records err. Data owned by the store is left as it was.
func (t *Tracker) Fail(err error) {
	t.status = StatusFailed
	t.lastErr = err
	t.lastUpdated = time.Now()
	t.consecutiveFailures++
}

// Reset returns the tracker to idle.
func (t *Tracker) Reset() {
	*t = Tracker{}
}

// Status returns the current status, idle for the zero tracker.
func (t *Tracker) Status() Status {
	if t.status == "" {
		return StatusIdle
	}
	return t.status
}

// LastError returns the most recent failure, nil after a success.
func (t *Tracker) LastError() error {
	return t.lastErr
}

// Snapshot copies the tracker into a read-only view.
func (t *Tracker) Snapshot() Request {
	r := Request{
		Status:              t.Status(),
		LastUpdated:         t.lastUpdated,
		ConsecutiveFailures: t.consecutiveFailures,
	}
	if t.lastErr != nil {
		r.LastError = fmt.Errorf("%w", t.lastErr)
	}
	return r
}

// Request is a copy of a tracker's state.
type Request struct {
	Status              Status
	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// Loading reports whether a request is in flight.
func (r Request) Loading() bool {
	return r.Status == StatusLoading
}

// IsOffline returns true when the remote API has failed several times in a row.
func (r Request) IsOffline() bool {
	return r.ConsecutiveFailures >= 2
}

// Snapshot is the composed client state read by consumers.
type Snapshot struct {
	Identity *model.Identity
	Cart     model.Cart
	Orders   []model.Order

	Session Request
	CartIO  Request
	OrderIO Request
	Catalog Request
}

// SignedIn reports whether an identity is active.
func (s Snapshot) SignedIn() bool {
	return s.Identity != nil
}

// CartBadge is the number shown on the cart tab.
func (s Snapshot) CartBadge() int {
	return s.Cart.TotalQuantity
}

// CountOrders returns the number of orders in the given stage.
func (s Snapshot) CountOrders(status model.OrderStatus) int {
	n := 0
	for _, o := range s.Orders {
		if o.Status() == status {
			n++
		}
	}
	return n
}

// UnpaidCount is the number shown on the orders tab.
func (s Snapshot) UnpaidCount() int {
	return s.CountOrders(model.OrderUnpaid)
}
