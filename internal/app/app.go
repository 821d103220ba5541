package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/billie-coop/metanet/internal/auth"
	"github.com/billie-coop/metanet/internal/cache"
	cacheredis "github.com/billie-coop/metanet/internal/cache/redis"
	cachesqlite "github.com/billie-coop/metanet/internal/cache/sqlite"
	"github.com/billie-coop/metanet/internal/config"
	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/focus"
	"github.com/billie-coop/metanet/internal/host/local"
	"github.com/billie-coop/metanet/internal/permission"
	"github.com/billie-coop/metanet/internal/resolve"
	"github.com/billie-coop/metanet/internal/settings"
)

// Options configure New. Zero values get working defaults.
type Options struct {
	Config *config.Manager
	Logger *slog.Logger
	Broker *events.Broker
	// Store overrides the configured cache backend.
	Store cache.Store
	// HTTPClient is used for app manifest lookups.
	HTTPClient *http.Client
	// Version is reported by the local host.
	Version string
	// BcryptCost is passed to the local host; tests lower it.
	BcryptCost int
}

// App holds all the core services and business logic
type App struct {
	Config *config.Manager
	Logger *slog.Logger
	Events *events.Broker

	Host     *local.Host
	Cache    cache.Store
	Settings *settings.Service
	Focus    *focus.Arbiter
	Queue    *permission.Queue
	Handlers []*permission.Handler
	Resolver *resolve.Service
	Auth     *auth.Flow
	Wallet   *WalletService
	Commands *CommandService
	Input    *InputRouter

	ownsBroker bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// New creates a new app with all services initialized
func New(ctx context.Context, opts Options) (*App, error) {
	cfgManager := opts.Config
	if cfgManager == nil {
		cfgManager = config.NewManager(config.DefaultDir())
		if err := cfgManager.Load(); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	cfg := cfgManager.Get()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		Config: cfgManager,
		Logger: logger.With("component", "app"),
		Events: opts.Broker,
	}
	if a.Events == nil {
		a.Events = events.NewBroker()
		a.ownsBroker = true
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = openStore(ctx, cfgManager, a.Logger)
		if err != nil {
			return nil, err
		}
	}
	a.Cache = store

	h, err := local.New(local.Options{
		Dir:        filepath.Join(cfgManager.Dir(), "host"),
		Code:       cfg.LocalCode,
		Version:    opts.Version,
		BcryptCost: opts.BcryptCost,
		Logger:     logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("start local host: %w", err)
	}
	a.Host = h

	a.Settings = settings.NewService(h, a.Events, cfg.DefaultSettings(), logger)
	a.Focus = focus.NewArbiter(h, logger)
	a.Queue = permission.NewQueue(h, a.Focus, a.Events, logger)
	a.Handlers = permission.NewHandlers(h, a.Queue, logger)

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.HTTPTimeout)}
	}
	apps := resolve.NewAppFetcher(client, rate.Limit(cfg.ResolverRate), cfg.ResolverBurst)
	policy := cache.Policy{
		FreshFor: time.Duration(cfg.Cache.FreshFor),
		MaxStale: time.Duration(cfg.Cache.MaxStale),
	}
	a.Resolver = resolve.NewService(h, a.Settings, store, policy, apps, logger)

	a.Auth = auth.NewFlow(h, a.Events, logger)
	a.Wallet = NewWalletService(h, a.Settings, cfg.USDPerBSV)
	a.Commands = NewCommandService(a, a.Events)
	a.Input = NewInputRouter(a.Commands, a.Events)
	return a, nil
}

// openStore builds the configured cache backend.
func openStore(ctx context.Context, m *config.Manager, logger *slog.Logger) (cache.Store, error) {
	cfg := m.Get().Cache
	switch cfg.Backend {
	case config.CacheMemory:
		return cache.NewMemoryStore(), nil
	case config.CacheRedis:
		store, err := cacheredis.New(ctx, cacheredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      time.Duration(cfg.MaxStale),
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return store, nil
	default:
		store, err := cachesqlite.Open(m.SQLitePath())
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		if maxStale := time.Duration(cfg.MaxStale); maxStale > 0 {
			n, err := store.Prune(ctx, time.Now().Add(-maxStale))
			if err != nil {
				logger.Warn("cache prune failed", "error", err)
			} else if n > 0 {
				logger.Debug("pruned stale cache entries", "count", n)
			}
		}
		return store, nil
	}
}

// Start binds every host event and follows the login so settings are loaded
// for the signed in account.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	// subscribe before the flow starts so an existing session is seen
	sub := a.Events.Subscribe(events.AuthStateChanged)
	a.wg.Add(1)
	go a.followAuth(ctx, sub)

	for _, h := range a.Handlers {
		h.Start(ctx)
	}
	if err := a.Auth.Start(ctx); err != nil {
		return fmt.Errorf("start auth flow: %w", err)
	}
	a.Logger.Info("app started", "cache", a.Config.Get().Cache.Backend)
	return nil
}

func (a *App) followAuth(ctx context.Context, sub <-chan events.Event) {
	defer a.wg.Done()
	defer a.Events.Unsubscribe(sub)

	authenticated := false
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			snap, ok := ev.Payload.(auth.Snapshot)
			if !ok {
				continue
			}
			switch {
			case snap.State == auth.StateAuthenticated && !authenticated:
				authenticated = true
				a.Settings.Load(ctx)
			case snap.State != auth.StateAuthenticated && authenticated:
				authenticated = false
				a.Settings.Reset()
			}
		}
	}
}

// Close stops the services and releases the cache.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		for _, h := range a.Handlers {
			h.Stop()
		}
		a.Auth.Stop()
		if a.cancel != nil {
			a.cancel()
		}
		a.wg.Wait()
		if a.ownsBroker {
			a.Events.Close()
		}
		if cerr := a.Cache.Close(); cerr != nil {
			err = fmt.Errorf("close cache: %w", cerr)
		}
	})
	return err
}

// Toast publishes a status message for the UI.
func (a *App) Toast(level events.StatusLevel, message string) {
	a.Events.Publish(events.Event{
		Type:    events.StatusMessage,
		Payload: events.StatusPayload{Message: message, Level: level},
	})
}
