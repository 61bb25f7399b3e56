package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/storefront/internal/model"
	"github.com/five82/storefront/internal/state"
)

type fakeAPI struct {
	categoryCalls atomic.Int32
	productCalls  atomic.Int32
	listCalls     atomic.Int32
	fail          atomic.Bool
	// gate, when set, blocks category fetches until closed
	gate chan struct{}
}

var errDown = errors.New("execute request: connection refused")

func (f *fakeAPI) Categories(context.Context) ([]string, error) {
	f.listCalls.Add(1)
	if f.fail.Load() {
		return nil, errDown
	}
	return []string{"jewelery", "electronics"}, nil
}

func (f *fakeAPI) ProductsByCategory(ctx context.Context, name string) ([]model.Product, error) {
	f.categoryCalls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fail.Load() {
		return nil, errDown
	}
	return []model.Product{{ID: 1, Title: "Ring", Category: name, Price: 100}}, nil
}

func (f *fakeAPI) Product(_ context.Context, id int64) (model.Product, error) {
	f.productCalls.Add(1)
	if f.fail.Load() {
		return model.Product{}, errDown
	}
	return model.Product{ID: id, Title: "Item"}, nil
}

func TestCategoryFetchedOnce(t *testing.T) {
	api := &fakeAPI{}
	c := New(api, nil)
	ctx := context.Background()

	first, err := c.GetOrFetchCategory(ctx, "jewelery")
	require.NoError(t, err)
	second, err := c.GetOrFetchCategory(ctx, "jewelery")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), api.categoryCalls.Load())
	assert.Equal(t, state.StatusSucceeded, c.Request().Status)
}

func TestConcurrentMissesShareOneCall(t *testing.T) {
	api := &fakeAPI{gate: make(chan struct{})}
	c := New(api, nil)

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]model.Product, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFetchCategory(context.Background(), "jewelery")
		}(i)
	}
	// let every caller reach the shared call before releasing it
	require.Eventually(t, func() bool { return api.categoryCalls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(api.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 1)
	}
	assert.Equal(t, int32(1), api.categoryCalls.Load())
}

func TestCancelledCallerDoesNotFailSharedWaiters(t *testing.T) {
	api := &fakeAPI{gate: make(chan struct{})}
	c := New(api, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrFetchCategory(firstCtx, "jewelery")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return api.categoryCalls.Load() >= 1 }, time.Second, time.Millisecond)

	type result struct {
		list []model.Product
		err  error
	}
	second := make(chan result, 1)
	go func() {
		list, err := c.GetOrFetchCategory(context.Background(), "jewelery")
		second <- result{list, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(api.gate)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.list, 1)
	assert.Equal(t, int32(1), api.categoryCalls.Load())

	cached, err := c.GetOrFetchCategory(context.Background(), "jewelery")
	require.NoError(t, err)
	assert.Equal(t, got.list, cached)
}

func TestFailuresAreNotCached(t *testing.T) {
	api := &fakeAPI{}
	api.fail.Store(true)
	c := New(api, nil)
	ctx := context.Background()

	_, err := c.GetOrFetchCategory(ctx, "jewelery")
	require.ErrorIs(t, err, errDown)
	assert.ErrorIs(t, c.LastError(), errDown)
	assert.Equal(t, state.StatusFailed, c.Request().Status)

	api.fail.Store(false)
	list, err := c.GetOrFetchCategory(ctx, "jewelery")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int32(2), api.categoryCalls.Load())
	assert.NoError(t, c.LastError())
}

func TestCategorySeedsProductCache(t *testing.T) {
	api := &fakeAPI{}
	c := New(api, nil)
	ctx := context.Background()

	_, err := c.GetOrFetchCategory(ctx, "jewelery")
	require.NoError(t, err)
	p, err := c.GetOrFetchProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ring", p.Title)
	assert.Zero(t, api.productCalls.Load())

	_, err = c.GetOrFetchProduct(ctx, 2)
	require.NoError(t, err)
	_, err = c.GetOrFetchProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.productCalls.Load())
}

func TestCategoriesCachedAndCopied(t *testing.T) {
	api := &fakeAPI{}
	c := New(api, nil)
	ctx := context.Background()

	list, err := c.Categories(ctx)
	require.NoError(t, err)
	list[0] = "mutated"

	again, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"jewelery", "electronics"}, again)
	assert.Equal(t, int32(1), api.listCalls.Load())
}

func TestReturnedProductsAreCopies(t *testing.T) {
	c := New(&fakeAPI{}, nil)
	list, err := c.GetOrFetchCategory(context.Background(), "jewelery")
	require.NoError(t, err)
	list[0].Title = "mutated"

	again, err := c.GetOrFetchCategory(context.Background(), "jewelery")
	require.NoError(t, err)
	assert.Equal(t, "Ring", again[0].Title)
}

func TestInvalidKeysRejected(t *testing.T) {
	api := &fakeAPI{}
	c := New(api, nil)
	_, err := c.GetOrFetchCategory(context.Background(), " ")
	assert.Error(t, err)
	_, err = c.GetOrFetchProduct(context.Background(), 0)
	assert.Error(t, err)
	assert.Zero(t, api.categoryCalls.Load()+api.productCalls.Load())
}
