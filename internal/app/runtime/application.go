package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"github.com/R3E-Network/light_api/internal/app/httpapi"
	"github.com/R3E-Network/light_api/internal/app/storage"
	"github.com/R3E-Network/light_api/internal/app/storage/postgres"
	"github.com/R3E-Network/light_api/internal/config"
	"github.com/R3E-Network/light_api/internal/gas"
	"github.com/R3E-Network/light_api/internal/logging"
	"github.com/R3E-Network/light_api/internal/middleware"
	"github.com/R3E-Network/light_api/internal/platform/database"
	"github.com/R3E-Network/light_api/internal/platform/migrations"
)

const redisKeyPrefix = "light_api:ratelimit:"

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg       *config.Config
	log       *logging.Logger
	handler   http.Handler
	server    *http.Server
	limiter   *middleware.RateLimiter
	scheduler *cron.Cron
	db        *sqlx.DB
	redis     *redis.Client

	mu       sync.Mutex
	listener net.Listener
}

// Option customises application wiring.
type Option func(*options)

type options struct {
	gas   httpapi.GasEstimator
	store *storage.Memory
}

// WithGasEstimator replaces the beaconcha.in fetcher.
func WithGasEstimator(est httpapi.GasEstimator) Option {
	return func(o *options) { o.gas = est }
}

// WithMemoryStore serves lookups from store instead of PostgreSQL.
func WithMemoryStore(store *storage.Memory) Option {
	return func(o *options) { o.store = store }
}

// NewApplication builds every dependency in order: database handle, CORS
// policy, rate limiter, tracing. Any failure is returned to the caller.
func NewApplication(ctx context.Context, cfg *config.Config, log *logging.Logger, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &Application{cfg: cfg, log: log}

	deps := httpapi.Deps{Logger: log, StartedAt: time.Now()}
	if err := a.buildStores(ctx, o.store, &deps); err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	cors := middleware.NewCORSMiddleware(middleware.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:         cfg.CORS.MaxAge,
	})

	limiter, err := a.buildLimiter(ctx)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("configure rate limiter: %w", err)
	}
	a.limiter = limiter

	tracing := middleware.NewTracingMiddleware(log, cfg.RateLimit.TrustProxy)
	recovery := middleware.NewRecoveryMiddleware(log)

	deps.Gas = o.gas
	if deps.Gas == nil {
		deps.Gas = gas.NewFetcher(
			gas.WithTimeout(cfg.Gas.Timeout),
			gas.WithUserAgent(cfg.Gas.UserAgent),
			gas.WithLogger(log),
		)
	}

	var handler http.Handler = httpapi.NewRouter(deps)
	handler = middleware.MetricsMiddleware(handler)
	handler = limiter.Handler(handler)
	handler = cors.Handler(handler)
	handler = tracing.Handler(handler)
	handler = recovery.Handler(handler)
	a.handler = handler

	a.scheduler = cron.New()
	if _, err := a.scheduler.AddFunc(cfg.RateLimit.CleanupSchedule, limiter.Cleanup); err != nil {
		a.closeResources()
		return nil, fmt.Errorf("schedule rate limiter cleanup %q: %w", cfg.RateLimit.CleanupSchedule, err)
	}

	a.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return a, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Addr returns the bound listener address once Run has started.
func (a *Application) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Run binds the listener, starts the HTTP server and the maintenance
// scheduler, and blocks until the context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", a.cfg.Server.Addr, err)
	}
	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	a.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		a.log.WithFields(map[string]interface{}{"addr": ln.Addr().String()}).Info("HTTP server listening")
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains in-flight requests, stops the scheduler and releases the
// database and Redis handles.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)

	<-a.scheduler.Stop().Done()
	a.closeResources()

	return err
}

func (a *Application) buildStores(ctx context.Context, mem *storage.Memory, deps *httpapi.Deps) error {
	if mem != nil {
		deps.Paymasters, deps.Wallets, deps.DB = mem, mem, mem
		return nil
	}
	if a.cfg.Database.DSN == "" {
		a.log.WithContext(ctx).Warn("no database configured, serving from an empty in-memory store")
		mem = storage.NewMemory()
		deps.Paymasters, deps.Wallets, deps.DB = mem, mem, mem
		return nil
	}

	db, err := database.Open(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	if a.cfg.Database.AutoMigrate {
		if err := migrations.Up(db.DB); err != nil {
			db.Close()
			return err
		}
	}
	a.db = db

	store := postgres.New(db)
	deps.Paymasters, deps.Wallets, deps.DB = store, store, store
	return nil
}

func (a *Application) buildLimiter(ctx context.Context) (*middleware.RateLimiter, error) {
	rl := a.cfg.RateLimit

	var limiter middleware.Limiter
	switch rl.Backend {
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		rlimiter := middleware.NewRedisLimiter(a.redis, redisKeyPrefix, rl.Period, rl.Burst)
		if err := rlimiter.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", a.cfg.Redis.Addr, err)
		}
		limiter = rlimiter
	default:
		limiter = middleware.NewMemoryLimiter(rl.Period, rl.Burst)
	}

	return middleware.NewRateLimiter(limiter, rl.Period, rl.Burst, rl.TrustProxy, a.log), nil
}

func (a *Application) closeResources() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
		a.db = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("error closing redis client")
		}
		a.redis = nil
	}
}
