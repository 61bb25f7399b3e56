// Package catalog is a read-through cache over the product catalog. Entries
// are written once and kept for the life of the process.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/five82/storefront/internal/model"
	"github.com/five82/storefront/internal/state"
)

// API is the catalog part of the remote client.
type API interface {
	Categories(ctx context.Context) ([]string, error)
	ProductsByCategory(ctx context.Context, category string) ([]model.Product, error)
	Product(ctx context.Context, id int64) (model.Product, error)
}

// Cache memoizes catalog reads. Concurrent misses on one key share a single
// remote call; failures are never cached.
type Cache struct {
	api    API
	logger *zap.Logger
	group  singleflight.Group

	mu         sync.RWMutex
	categories []string
	byCategory map[string][]model.Product
	products   map[int64]model.Product
	tracker    state.Tracker
}

// New returns an empty cache.
func New(api API, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		api:        api,
		logger:     logger.Named("catalog"),
		byCategory: map[string][]model.Product{},
		products:   map[int64]model.Product{},
	}
}

// Categories returns the category names.
func (c *Cache) Categories(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	cached := c.categories
	c.mu.RUnlock()
	if cached != nil {
		return append([]string(nil), cached...), nil
	}

	v, err := c.load(ctx, "categories", func(ctx context.Context) (any, error) {
		list, err := c.api.Categories(ctx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []string{}
		}
		c.mu.Lock()
		if c.categories == nil {
			c.categories = list
		}
		list = c.categories
		c.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return append([]string(nil), v.([]string)...), nil
}

// GetOrFetchCategory returns the products of a category, fetching them on
// the first request. Products seen this way also seed the product cache.
func (c *Cache) GetOrFetchCategory(ctx context.Context, name string) ([]model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name required")
	}
	if list, ok := c.cachedCategory(name); ok {
		return list, nil
	}

	v, err := c.load(ctx, "category:"+name, func(ctx context.Context) (any, error) {
		list, err := c.api.ProductsByCategory(ctx, name)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []model.Product{}
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.byCategory[name]; ok {
			return existing, nil
		}
		c.byCategory[name] = list
		for _, p := range list {
			if _, ok := c.products[p.ID]; !ok && p.ID > 0 {
				c.products[p.ID] = p
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch category %q: %w", name, err)
	}
	return append([]model.Product(nil), v.([]model.Product)...), nil
}

// GetOrFetchProduct returns one product, fetching it on the first request.
func (c *Cache) GetOrFetchProduct(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, fmt.Errorf("product id required")
	}
	c.mu.RLock()
	p, ok := c.products[id]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	v, err := c.load(ctx, "product:"+strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		p, err := c.api.Product(ctx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.products[id]; ok {
			return existing, nil
		}
		c.products[id] = p
		return p, nil
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("fetch product %d: %w", id, err)
	}
	return v.(model.Product), nil
}

// Request returns a copy of the request lifecycle.
func (c *Cache) Request() state.Request {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracker.Snapshot()
}

// LastError returns the error of the most recent failed fetch.
func (c *Cache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracker.LastError()
}

func (c *Cache) cachedCategory(name string) ([]model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list, ok := c.byCategory[name]
	if !ok {
		return nil, false
	}
	return append([]model.Product(nil), list...), true
}

// load runs fn once per key among concurrent callers. The shared call does
// not inherit the starting caller's cancellation; each caller stops waiting
// on its own ctx.
func (c *Cache) load(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	c.tracker.Begin()
	c.mu.Unlock()

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) { return fn(shared) })

	var v any
	var err error
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.tracker.Fail(err)
		c.logger.Warn("catalog fetch failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	c.tracker.Succeed()
	return v, nil
}
