// Package cart holds the in-memory cart of the signed-in user and mirrors
// every change to the device-local key-value store under a per-user key.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/storefront/internal/kvstore"
	"github.com/five82/storefront/internal/model"
	"github.com/five82/storefront/internal/state"
)

var (
	// ErrNoOwner is returned when a mutation is attempted without an owner
	// email. Nothing is changed.
	ErrNoOwner = errors.New("cart owner email required")
	// ErrInvalidProduct is returned for products without an id.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrNotLoaded is returned when the owner's persisted cart could not be
	// read, so writing would overwrite it.
	ErrNotLoaded = errors.New("persisted cart not loaded")
)

const keyPrefix = "cart_"

// Key returns the persistence key of the cart owned by email.
func Key(email string) string {
	return keyPrefix + email
}

// Store is the cart of the active user.
type Store struct {
	kv     kvstore.Store
	logger *zap.Logger

	// mu is held across persistence writes so they land in mutation order.
	mu      sync.Mutex
	cart    model.Cart
	tracker state.Tracker
	// unloaded is the owner whose last restore failed. Nothing is written
	// under that owner's key until a read succeeds.
	unloaded string
}

// New returns a store with an empty cart.
func New(kv kvstore.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger.Named("cart"), cart: model.NewCart()}
}

// AddItem increments the quantity of product, adding a line with quantity 1
// when absent. The line keeps the product snapshot it was first added with.
func (s *Store) AddItem(ctx context.Context, product model.Product, ownerEmail string) error {
	owner, err := ownerOf(ownerEmail)
	if err != nil {
		return err
	}
	if product.ID <= 0 {
		s.logger.Warn("add item rejected", zap.Int64("product_id", product.ID))
		return fmt.Errorf("add item: %w", ErrInvalidProduct)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx, owner); err != nil {
		return err
	}
	line, ok := s.cart.Lines[product.ID]
	if !ok {
		line = model.CartLine{Product: product}
	}
	line.Quantity++
	s.cart.Lines[product.ID] = line
	s.cart.Recompute()
	return s.persistLocked(ctx, owner, s.cart)
}

// RemoveItem decrements the quantity of productID, deleting the line when it
// reaches zero. Removing an absent product is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID int64, ownerEmail string) error {
	owner, err := ownerOf(ownerEmail)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx, owner); err != nil {
		return err
	}
	line, ok := s.cart.Lines[productID]
	if !ok {
		s.logger.Warn("remove of absent cart line", zap.Int64("product_id", productID))
		return nil
	}
	if line.Quantity <= 1 {
		delete(s.cart.Lines, productID)
	} else {
		line.Quantity--
		s.cart.Lines[productID] = line
	}
	s.cart.Recompute()
	return s.persistLocked(ctx, owner, s.cart)
}

// Clear empties the cart and persists the empty cart for ownerEmail.
func (s *Store) Clear(ctx context.Context, ownerEmail string) error {
	owner, err := ownerOf(ownerEmail)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx, owner); err != nil {
		return err
	}
	s.cart = model.NewCart()
	return s.persistLocked(ctx, owner, s.cart)
}

// Restore loads the persisted cart of ownerEmail into memory. A missing key
// yields an empty cart. A corrupt record is logged and replaced by an empty
// cart as well. When the read fails the in-memory cart is emptied and writes
// for ownerEmail are refused until a later read succeeds.
func (s *Store) Restore(ctx context.Context, ownerEmail string) (model.Cart, error) {
	owner, err := ownerOf(ownerEmail)
	if err != nil {
		return model.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Begin()
	data, ok, err := s.kv.Get(ctx, Key(owner))
	if err != nil {
		s.cart = model.NewCart()
		s.unloaded = owner
		err = fmt.Errorf("restore cart: %w", err)
		s.tracker.Fail(err)
		return model.Cart{}, err
	}
	s.loadLocked(owner, data, ok)
	s.tracker.Succeed()
	return s.cart.Clone(), nil
}

func (s *Store) loadLocked(owner string, data []byte, ok bool) {
	restored := model.NewCart()
	if ok {
		decoded, err := model.UnmarshalCart(data)
		if err != nil {
			s.logger.Error("discarding corrupt cart", zap.String("key", Key(owner)), zap.Error(err))
		}
		restored = decoded
	}
	s.cart = restored
	s.unloaded = ""
}

// ensureLoadedLocked retries the read for an owner whose restore failed.
func (s *Store) ensureLoadedLocked(ctx context.Context, owner string) error {
	if s.unloaded != owner {
		return nil
	}
	data, ok, err := s.kv.Get(ctx, Key(owner))
	if err != nil {
		err = fmt.Errorf("restore cart: %w: %w", ErrNotLoaded, err)
		s.tracker.Fail(err)
		return err
	}
	s.loadLocked(owner, data, ok)
	return nil
}

// ResetEphemeral drops the in-memory cart without touching persistence.
func (s *Store) ResetEphemeral() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = model.NewCart()
	s.tracker.Reset()
}

// Save persists c for ownerEmail without changing the in-memory cart.
func (s *Store) Save(ctx context.Context, ownerEmail string, c model.Cart) error {
	owner, err := ownerOf(ownerEmail)
	if err != nil {
		return err
	}
	c = c.Clone()
	c.Recompute()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unloaded == owner {
		return fmt.Errorf("save cart: %w", ErrNotLoaded)
	}
	return s.persistLocked(ctx, owner, c)
}

// Snapshot returns a copy of the cart.
func (s *Store) Snapshot() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Request returns a copy of the persistence lifecycle.
func (s *Store) Request() state.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Snapshot()
}

func (s *Store) persistLocked(ctx context.Context, owner string, c model.Cart) error {
	s.tracker.Begin()
	data, err := model.MarshalCart(c)
	if err == nil {
		err = s.kv.Set(ctx, Key(owner), data)
	}
	if err != nil {
		err = fmt.Errorf("persist cart: %w", err)
		s.tracker.Fail(err)
		s.logger.Error("cart not persisted", zap.String("key", Key(owner)), zap.Error(err))
		return err
	}
	s.tracker.Succeed()
	return nil
}

func ownerOf(email string) (string, error) {
	owner := strings.TrimSpace(email)
	if owner == "" {
		return "", ErrNoOwner
	}
	return owner, nil
}
