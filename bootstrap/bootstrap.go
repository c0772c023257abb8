// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file with environment overrides; the
// config Holder keeps reloadable settings live while the process runs.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/subwave-io/subwave/adapters/clock"
	"github.com/subwave-io/subwave/adapters/hasher"
	"github.com/subwave-io/subwave/adapters/idgen"
	"github.com/subwave-io/subwave/adapters/memory"
	"github.com/subwave-io/subwave/adapters/metrics"
	"github.com/subwave-io/subwave/adapters/sqlite"
	"github.com/subwave-io/subwave/app"
	"github.com/subwave-io/subwave/config"
	"github.com/subwave-io/subwave/ports"
	"github.com/subwave-io/subwave/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	Holder     *config.Holder
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	// Services
	Catalog   *app.CatalogService
	Lifecycle *app.LifecycleService
	Meter     *app.MeterService
	Revenue   *app.RevenueService
	Accounts  *app.AccountService

	// Stores (kept for CLI commands that bypass HTTP)
	Plans ports.PlanStore
}

// Options tunes application initialization.
type Options struct {
	// ConfigPath is the YAML config file. Empty means env-only config.
	ConfigPath string
	// SkipServer skips HTTP server setup, for CLI commands that only
	// need the stores and services.
	SkipServer bool
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	a := &App{}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a.Config = cfg
	a.Logger = setupLogger(cfg.Logging)
	a.Logger.Info().Str("driver", cfg.Database.Driver).Msg("initializing subwave")

	if opts.ConfigPath != "" {
		holder, err := config.NewHolder(opts.ConfigPath, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("config holder: %w", err)
		}
		a.Holder = holder
		a.Config = holder.Get()
	}

	if a.Config.Metrics.Enabled {
		a.Metrics = metrics.New()
		a.Logger.Info().Str("path", a.Config.Metrics.Path).Msg("prometheus metrics enabled")
	} else {
		// Services still record; nothing is exposed over HTTP.
		a.Metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	}

	if err := a.initStores(); err != nil {
		return nil, fmt.Errorf("init stores: %w", err)
	}

	if err := a.seedCatalog(context.Background()); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	if !opts.SkipServer {
		a.initHTTPServer()
	}

	return a, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func (a *App) initStores() error {
	clk := clock.Real{}
	bcryptHasher := hasher.NewBcrypt(0)
	ids := idgen.UUID{}

	var (
		plans    ports.PlanStore
		accounts ports.AccountStore
		ledger   ports.LedgerStore
		subs     ports.SubscriptionStore
	)

	switch a.Config.Database.Driver {
	case "sqlite":
		db, err := sqlite.Open(a.Config.Database.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database initialized")

		plans = sqlite.NewPlanStore(db)
		accounts = sqlite.NewAccountStore(db)
		ledger = sqlite.NewLedgerStore(db)
		subs = sqlite.NewSubscriptionStore(db)
	default:
		memAccounts := memory.NewAccountStore()
		memLedger := memory.NewLedgerStore()
		plans = memory.NewPlanStore()
		accounts = memAccounts
		ledger = memLedger
		subs = memory.NewSubscriptionStore(memAccounts, memLedger)
		a.Logger.Info().Msg("using in-memory stores, data will not survive restarts")
	}

	a.Plans = plans
	a.Catalog = app.NewCatalogService(plans, clk, a.Logger)
	a.Lifecycle = app.NewLifecycleService(plans, accounts, subs, clk, a.Metrics, a.Logger)
	a.Meter = app.NewMeterService(accounts, a.Config.Usage.WindowDays, a.Metrics, a.Logger)
	a.Revenue = app.NewRevenueService(plans, ledger, a.Logger)
	a.Accounts = app.NewAccountService(accounts, bcryptHasher, clk, ids, a.Logger)

	return nil
}

// seedCatalog loads the configured plans into an empty catalog. A
// non-empty catalog is left alone so restarts never clobber operator
// edits made through the API.
func (a *App) seedCatalog(ctx context.Context) error {
	n, err := a.Plans.Count(ctx)
	if err != nil {
		return fmt.Errorf("count plans: %w", err)
	}
	if n > 0 {
		a.Metrics.CatalogPlans.Set(float64(n))
		return nil
	}

	for _, pc := range a.Config.Plans {
		if _, err := a.Catalog.AddPlan(ctx, app.AddPlanInput{
			Name:        pc.Name,
			Speed:       pc.Speed,
			Price:       pc.PriceMonthly,
			CapLabel:    pc.Cap,
			Description: pc.Description,
		}); err != nil {
			return fmt.Errorf("seed plan %q: %w", pc.Name, err)
		}
	}

	a.Metrics.CatalogPlans.Set(float64(len(a.Config.Plans)))
	a.Logger.Info().Int("plans", len(a.Config.Plans)).Msg("catalog seeded from config")
	return nil
}

func (a *App) initHTTPServer() {
	handler := web.NewHandler(web.Deps{
		Catalog:   a.Catalog,
		Lifecycle: a.Lifecycle,
		Meter:     a.Meter,
		Revenue:   a.Revenue,
		Accounts:  a.Accounts,
		Metrics:   a.metricsForWeb(),
		Logger:    a.Logger,
	})

	addr := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", addr).Msg("http server configured")
}

// metricsForWeb hides the collector from the router when the endpoint is
// disabled, so /metrics is not mounted.
func (a *App) metricsForWeb() *metrics.Collector {
	if !a.Config.Metrics.Enabled {
		return nil
	}
	return a.Metrics
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if a.Holder != nil {
		a.Holder.OnChange(func(cfg *config.Config) {
			a.Metrics.ConfigReloads.Inc()
			a.applyReloadable(cfg)
		})
		if err := a.Holder.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watch unavailable")
		}
		a.Holder.WatchSignals()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// applyReloadable picks up the live-reloadable settings from a fresh
// config. Server address and store driver changes need a restart.
func (a *App) applyReloadable(cfg *config.Config) {
	a.Config = cfg
	zerolog.SetGlobalLevel(parseLevel(cfg.Logging.Level))
	a.Meter.SetWindow(cfg.Usage.WindowDays)
	a.Logger.Info().
		Str("level", cfg.Logging.Level).
		Int("window_days", cfg.Usage.WindowDays).
		Msg("applied reloaded config")
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Holder != nil {
		a.Holder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// Close releases resources without the HTTP server, for CLI commands.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}
