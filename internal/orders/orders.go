// Package orders holds the order list of the signed-in user and applies
// remote status changes only after the server acknowledges them.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/storefront/internal/model"
	"github.com/five82/storefront/internal/state"
	"github.com/five82/storefront/internal/storeapi"
)

var (
	// ErrNotAcknowledged is returned when the server answered without an OK
	// status. Local state is left unchanged.
	ErrNotAcknowledged = errors.New("not acknowledged by server")
	// ErrInvalidTransition is returned for changes that would move an order
	// back to an earlier stage.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrNoItems is returned when creating an order without items.
	ErrNoItems = errors.New("order has no items")
	// ErrStale is returned when the session changed while a request was in
	// flight; its result was discarded.
	ErrStale = errors.New("session changed during request")
)

// API is the part of the remote client the order store needs.
type API interface {
	ListOrders(ctx context.Context, token string) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, token string, orderID int64, isPaid, isDelivered bool) (storeapi.Ack, error)
	CreateOrder(ctx context.Context, token string, items []model.OrderItem, userEmail, idempotencyKey string) (storeapi.CreatedOrder, error)
}

// Store is the order list of the active user.
type Store struct {
	api    API
	logger *zap.Logger
	now    func() time.Time
	newKey func() string

	mu      sync.RWMutex
	orders  []model.Order
	tracker state.Tracker
	// epoch changes on Reset; results of requests started under an older
	// epoch are dropped.
	epoch uint64
}

// New returns an empty order store.
func New(api API, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:    api,
		logger: logger.Named("orders"),
		now:    time.Now,
		newKey: uuid.NewString,
	}
}

// Fetch replaces the list with the server's. On failure the previous list
// is kept.
func (s *Store) Fetch(ctx context.Context, credential string) error {
	epoch := s.begin()

	list, err := s.api.ListOrders(ctx, credential)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Debug("dropping stale order list")
		return ErrStale
	}
	if err != nil {
		err = fmt.Errorf("fetch orders: %w", err)
		s.tracker.Fail(err)
		s.logger.Warn("order fetch failed", zap.Error(err))
		return err
	}
	s.orders = cloneOrders(list)
	s.tracker.Succeed()
	return nil
}

// UpdateStatus asks the server to set the flags of orderID and patches the
// local record once acknowledged. isDelivered implies isPaid.
func (s *Store) UpdateStatus(ctx context.Context, orderID int64, isPaid, isDelivered bool, credential string) error {
	if isDelivered {
		isPaid = true
	}
	target := model.StatusFromFlags(isPaid, isDelivered)

	s.mu.Lock()
	if idx := s.indexLocked(orderID); idx >= 0 && !s.orders[idx].CanMoveTo(target) {
		from := s.orders[idx].Status()
		s.mu.Unlock()
		return fmt.Errorf("order %d %s to %s: %w", orderID, from, target, ErrInvalidTransition)
	}
	s.tracker.Begin()
	epoch := s.epoch
	s.mu.Unlock()

	ack, err := s.api.UpdateOrderStatus(ctx, credential, orderID, isPaid, isDelivered)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrStale
	}
	if err == nil && !ack.OK() {
		err = fmt.Errorf("status %q %s: %w", ack.Status, ack.Message, ErrNotAcknowledged)
	}
	if err != nil {
		err = fmt.Errorf("update order %d: %w", orderID, err)
		s.tracker.Fail(err)
		return err
	}
	s.tracker.Succeed()

	idx := s.indexLocked(orderID)
	if idx < 0 {
		s.logger.Warn("acknowledged update for unknown order", zap.Int64("order_id", orderID))
		return nil
	}
	// Never regress, even if the list changed while the request was out.
	if s.orders[idx].CanMoveTo(target) {
		s.orders[idx].IsPaid = isPaid
		s.orders[idx].IsDelivered = isDelivered
	}
	return nil
}

// MarkPaid moves orderID to paid.
func (s *Store) MarkPaid(ctx context.Context, orderID int64, credential string) error {
	isPaid, isDelivered := model.OrderPaid.Flags()
	return s.UpdateStatus(ctx, orderID, isPaid, isDelivered, credential)
}

// MarkDelivered moves orderID to delivered.
func (s *Store) MarkDelivered(ctx context.Context, orderID int64, credential string) error {
	isPaid, isDelivered := model.OrderDelivered.Flags()
	return s.UpdateStatus(ctx, orderID, isPaid, isDelivered, credential)
}

// Create places an order and appends it once the server acknowledges it.
func (s *Store) Create(ctx context.Context, items []model.OrderItem, credential, ownerEmail string) (model.Order, error) {
	if len(items) == 0 {
		return model.Order{}, fmt.Errorf("create order: %w", ErrNoItems)
	}
	items = append([]model.OrderItem(nil), items...)
	key := s.newKey()
	epoch := s.begin()

	created, err := s.api.CreateOrder(ctx, credential, items, ownerEmail, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Warn("dropping order created by a previous session", zap.Int64("order_id", created.ID))
		return model.Order{}, ErrStale
	}
	if err == nil && !created.OK() {
		err = fmt.Errorf("status %q %s: %w", created.Status, created.Message, ErrNotAcknowledged)
	}
	if err != nil {
		err = fmt.Errorf("create order: %w", err)
		s.tracker.Fail(err)
		return model.Order{}, err
	}

	order := model.Order{
		ID:         created.ID,
		Items:      items,
		TotalPrice: model.ItemsTotal(items),
		ItemCount:  len(items),
		CreatedAt:  s.now(),
	}
	s.orders = append(s.orders, order)
	s.tracker.Succeed()
	s.logger.Info("order created", zap.Int64("order_id", order.ID), zap.String("idempotency_key", key))
	return order.Clone(), nil
}

// Reset empties the list and returns the store to idle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = nil
	s.tracker.Reset()
	s.epoch++
}

// Orders returns a copy of the list.
func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.orders)
}

// Filter returns the orders in the given stage.
func (s *Store) Filter(status model.OrderStatus) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Order
	for _, o := range s.orders {
		if o.Status() == status {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (s *Store) count(status model.OrderStatus) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.orders {
		if o.Status() == status {
			n++
		}
	}
	return n
}

// UnpaidCount is the number of orders awaiting payment.
func (s *Store) UnpaidCount() int { return s.count(model.OrderUnpaid) }

// AwaitingDeliveryCount is the number of paid, undelivered orders.
func (s *Store) AwaitingDeliveryCount() int { return s.count(model.OrderPaid) }

// DeliveredCount is the number of delivered orders.
func (s *Store) DeliveredCount() int { return s.count(model.OrderDelivered) }

// Status returns the state of the most recent remote call.
func (s *Store) Status() state.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Status()
}

// LastError returns the error of the most recent failed call.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.LastError()
}

// Request returns a copy of the request lifecycle.
func (s *Store) Request() state.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Snapshot()
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Begin()
	return s.epoch
}

func (s *Store) indexLocked(orderID int64) int {
	for i, o := range s.orders {
		if o.ID == orderID {
			return i
		}
	}
	return -1
}

func cloneOrders(list []model.Order) []model.Order {
	if list == nil {
		return nil
	}
	out := make([]model.Order, len(list))
	for i, o := range list {
		out[i] = o.Clone()
	}
	return out
}
