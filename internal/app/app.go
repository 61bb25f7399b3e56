package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/config"
	"github.com/five82/storefront/internal/coordinator"
	"github.com/five82/storefront/internal/kvstore"
	"github.com/five82/storefront/internal/logging"
	"github.com/five82/storefront/internal/orders"
	"github.com/five82/storefront/internal/prefs"
	"github.com/five82/storefront/internal/session"
	"github.com/five82/storefront/internal/storeapi"
	"github.com/five82/storefront/internal/ui"
)

// Options configure the storefront application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/storefront/prefs.toml
	// RefreshEvery overrides the configured order refresh interval. Zero
	// keeps the config value; negative disables the refresher.
	RefreshEvery time.Duration
}

// Services is the wired core. Tests build it against fake backends.
type Services struct {
	Client      *storeapi.Client
	Carts       kvstore.Store
	Coordinator *coordinator.Coordinator
}

// NewServices builds the API client, the cart store and the coordinator
// from cfg.
func NewServices(cfg config.Config, logger *zap.Logger) (*Services, error) {
	client, err := storeapi.NewClient(cfg.APIURL, cfg.CatalogURL, storeapi.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	kv, err := kvstore.NewFileStore(cfg.CartDir())
	if err != nil {
		return nil, fmt.Errorf("open cart store: %w", err)
	}
	return newServices(client, kv, logger), nil
}

func newServices(client *storeapi.Client, kv kvstore.Store, logger *zap.Logger) *Services {
	coord := coordinator.New(
		session.New(client, logger),
		cart.New(kv, logger),
		orders.New(client, logger),
		catalog.New(client, logger),
		logger,
	)
	return &Services{Client: client, Carts: kv, Coordinator: coord}
}

// Run boots the storefront TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logger, err := logging.New(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	svc, err := NewServices(cfg, logger)
	if err != nil {
		return err
	}

	interval := cfg.OrdersRefresh
	if opts.RefreshEvery != 0 {
		interval = opts.RefreshEvery
	}
	StartOrderRefresher(ctx, svc.Coordinator, interval, logger)

	logger.Info("storefront started",
		zap.String("api_url", cfg.APIURL),
		zap.String("catalog_url", cfg.CatalogURL),
		zap.Duration("orders_refresh", interval),
	)

	uiOpts := ui.Options{
		Context:   ctx,
		Actions:   svc.Coordinator,
		LogPath:   cfg.LogPath(),
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		LastEmail: userPrefs.LastEmail,
	}
	return ui.Run(uiOpts)
}
