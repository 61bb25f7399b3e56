package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/config"
	"github.com/five82/storefront/internal/model"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/signin":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok", "id": 7, "name": "Ann", "email": body["email"]})
		case "/orders/all":
			_ = json.NewEncoder(w).Encode(map[string]any{"orders": []any{}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, apiURL string) config.Config {
	cfg := config.Default()
	cfg.APIURL = apiURL
	cfg.CatalogURL = apiURL
	cfg.DataDir = t.TempDir()
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

func TestNewServices_CartSurvivesRestart(t *testing.T) {
	server := fakeAPI(t)
	cfg := testConfig(t, server.URL)
	ctx := context.Background()

	first, err := NewServices(cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = first.Coordinator.SignIn(ctx, "ann@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, first.Coordinator.AddToCart(ctx, model.Product{ID: 3, Title: "Lamp", Price: 12.5}))
	require.NoError(t, first.Coordinator.AddToCart(ctx, model.Product{ID: 3, Title: "Lamp", Price: 12.5}))

	raw, ok, err := first.Carts.Get(ctx, cart.Key("ann@example.com"))
	require.NoError(t, err)
	require.True(t, ok, "cart should be written to the data dir")
	assert.NotEmpty(t, raw)

	second, err := NewServices(cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = second.Coordinator.SignIn(ctx, "ann@example.com", "pw")
	require.NoError(t, err)

	snap := second.Coordinator.Snapshot()
	assert.Equal(t, 2, snap.CartBadge())
	assert.InDelta(t, 25.0, snap.Cart.TotalPrice, 1e-9)
}

func TestNewServices_RejectsBadURL(t *testing.T) {
	cfg := testConfig(t, "://bad")
	_, err := NewServices(cfg, zap.NewNop())
	require.Error(t, err)
}
