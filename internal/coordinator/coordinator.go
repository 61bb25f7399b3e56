package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/model"
	"github.com/five82/storefront/internal/orders"
	"github.com/five82/storefront/internal/session"
	"github.com/five82/storefront/internal/state"
)

var (
	// ErrEmptyCart is returned by Checkout when there is nothing to order.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotSignedIn is returned by actions that need a session.
	ErrNotSignedIn = session.ErrNotSignedIn
)

// Coordinator sequences actions that touch more than one store. Every
// action runs under one mutex, so cross-store effects never interleave.
type Coordinator struct {
	session *session.Store
	cart    *cart.Store
	orders  *orders.Store
	catalog *catalog.Cache
	logger  *zap.Logger

	mu sync.Mutex
}

// New wires the stores together.
func New(sess *session.Store, carts *cart.Store, ords *orders.Store, cat *catalog.Cache, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		session: sess,
		cart:    carts,
		orders:  ords,
		catalog: cat,
		logger:  logger.Named("coordinator"),
	}
}

// SignUp registers an account, then loads its cart and orders.
func (c *Coordinator) SignUp(ctx context.Context, name, email, password string) (model.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, err := c.session.SignUp(ctx, name, email, password)
	if err != nil {
		return model.Identity{}, err
	}
	c.afterSignInLocked(ctx, id)
	return id, nil
}

// SignIn opens a session, then loads its cart and orders. Failures of the
// follow-up loads are recorded by their stores and do not fail the sign-in.
func (c *Coordinator) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, err := c.session.SignIn(ctx, email, password)
	if err != nil {
		return model.Identity{}, err
	}
	c.afterSignInLocked(ctx, id)
	return id, nil
}

func (c *Coordinator) afterSignInLocked(ctx context.Context, id model.Identity) {
	// the previous user's in-flight order results must not land here
	c.orders.Reset()
	if _, err := c.cart.Restore(ctx, id.Email); err != nil {
		c.logger.Warn("cart restore failed", zap.String("email", id.Email), zap.Error(err))
	}
	if err := c.orders.Fetch(ctx, c.session.Credential()); err != nil {
		c.logger.Warn("order fetch after sign in failed", zap.Error(err))
	}
}

// SignOut ends the session and writes the cart it held back under the
// signed-out user's key.
func (c *Coordinator) SignOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	held := c.cart.Snapshot()
	prev, had := c.session.SignOut()
	c.cart.ResetEphemeral()
	c.orders.Reset()

	if !had || prev.Email == "" {
		c.logger.Error("sign out without an email, cart not saved")
		return nil
	}
	if err := c.cart.Save(ctx, prev.Email, held); err != nil {
		if errors.Is(err, cart.ErrNotLoaded) {
			c.logger.Warn("sign out left the unread cart untouched", zap.String("email", prev.Email))
			return nil
		}
		return fmt.Errorf("sign out: %w", err)
	}
	c.logger.Info("signed out", zap.String("email", prev.Email))
	return nil
}

// UpdateProfile changes the name and/or password of the signed-in user.
func (c *Coordinator) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.UpdateProfile(ctx, update)
}

// AddToCart adds one unit of product to the signed-in user's cart.
func (c *Coordinator) AddToCart(ctx context.Context, product model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.session.Identity()
	if !ok {
		return fmt.Errorf("add to cart: %w", ErrNotSignedIn)
	}
	return c.cart.AddItem(ctx, product, id.Email)
}

// RemoveFromCart removes one unit of productID.
func (c *Coordinator) RemoveFromCart(ctx context.Context, productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.session.Identity()
	if !ok {
		return fmt.Errorf("remove from cart: %w", ErrNotSignedIn)
	}
	return c.cart.RemoveItem(ctx, productID, id.Email)
}

// Checkout turns the cart into an order. The cart is cleared only after the
// server acknowledged the order; on failure it is left as it was.
func (c *Coordinator) Checkout(ctx context.Context) (model.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.session.Identity()
	if !ok {
		return model.Order{}, fmt.Errorf("checkout: %w", ErrNotSignedIn)
	}
	items := model.ItemsFromCart(c.cart.Snapshot())
	if len(items) == 0 {
		return model.Order{}, fmt.Errorf("checkout: %w", ErrEmptyCart)
	}

	order, err := c.orders.Create(ctx, items, c.session.Credential(), id.Email)
	if err != nil {
		return model.Order{}, fmt.Errorf("checkout: %w", err)
	}
	if err := c.cart.Clear(ctx, id.Email); err != nil {
		return order, fmt.Errorf("checkout: order %d placed: %w", order.ID, err)
	}
	return order, nil
}

// RefreshOrders reloads the order list.
func (c *Coordinator) RefreshOrders(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.session.Credential()
	if token == "" {
		return fmt.Errorf("refresh orders: %w", ErrNotSignedIn)
	}
	return c.orders.Fetch(ctx, token)
}

// PayOrder marks orderID as paid.
func (c *Coordinator) PayOrder(ctx context.Context, orderID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.session.Credential()
	if token == "" {
		return fmt.Errorf("pay order: %w", ErrNotSignedIn)
	}
	return c.orders.MarkPaid(ctx, orderID, token)
}

// DeliverOrder marks orderID as delivered, and therefore paid.
func (c *Coordinator) DeliverOrder(ctx context.Context, orderID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.session.Credential()
	if token == "" {
		return fmt.Errorf("deliver order: %w", ErrNotSignedIn)
	}
	return c.orders.MarkDelivered(ctx, orderID, token)
}

// BrowseCategories lists catalog categories. Catalog reads need no session
// and do not take the coordinator lock.
func (c *Coordinator) BrowseCategories(ctx context.Context) ([]string, error) {
	return c.catalog.Categories(ctx)
}

func (c *Coordinator) BrowseCategory(ctx context.Context, name string) ([]model.Product, error) {
	return c.catalog.GetOrFetchCategory(ctx, name)
}

func (c *Coordinator) BrowseProduct(ctx context.Context, id int64) (model.Product, error) {
	return c.catalog.GetOrFetchProduct(ctx, id)
}

// SignedIn reports whether a session is active.
func (c *Coordinator) SignedIn() bool {
	_, ok := c.session.Identity()
	return ok
}

// SessionExpired reports whether the credential carries an expiry that has
// passed.
func (c *Coordinator) SessionExpired(now time.Time) bool {
	return c.session.Expired(now)
}

// Snapshot assembles the state read by consumers. Each store is copied under
// its own lock.
func (c *Coordinator) Snapshot() state.Snapshot {
	snap := state.Snapshot{
		Cart:    c.cart.Snapshot(),
		Orders:  c.orders.Orders(),
		Session: c.session.Request(),
		CartIO:  c.cart.Request(),
		OrderIO: c.orders.Request(),
		Catalog: c.catalog.Request(),
	}
	if id, ok := c.session.Identity(); ok {
		snap.Identity = &id
	}
	return snap
}
