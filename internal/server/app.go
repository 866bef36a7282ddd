// Package server wires configuration, storage backends and the session
// service together, and runs the REST and gRPC front ends until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/keyexchange"
	"github.com/dmitrijs2005/gophauth/internal/server/lock"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/rest"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const janitorInterval = time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	metrics  *metrics.Metrics
	sessions *services.SessionService
	repos    repomanager.RepositoryManager
	redis    *redis.Client
	sweepers []cache.Sweeper
}

// NewApp builds the application with a JSON logger on stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger, metrics: metrics.New()}

	repos, err := app.openRepositories(ctx)
	if err != nil {
		return nil, err
	}
	app.repos = repos

	keyStore, access, refresh, locker, err := app.openCache(ctx)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	engine := cryptox.NewRSAEngine(c.RSAKeyBits)

	app.sessions = services.NewSessionService(services.Dependencies{
		Keys:    keyexchange.NewExchange(keyStore, engine, c.RSATTL),
		Cipher:  engine,
		Hasher:  cryptox.BcryptHasher{},
		Tokens:  auth.NewCodec(c.SecretKey, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration),
		Access:  access,
		Refresh: refresh,
		Repos:   repos,
		Locker:  locker,
		Metrics: app.metrics,
		Logger:  logger,
	}, c)

	if c.BootstrapUsername != "" {
		if _, err := app.sessions.EnsureAccount(ctx, c.BootstrapUsername, c.BootstrapPassword, models.RoleManagerMajor); err != nil {
			app.close()
			return nil, fmt.Errorf("bootstrap account: %w", err)
		}
	}

	return app, nil
}

func (app *App) openRepositories(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Info(ctx, "Using in-memory account storage")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := repomanager.Open(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager(db)
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}
	return rm, nil
}

func (app *App) openCache(ctx context.Context) (keyexchange.Store, credentials.AccessStore, credentials.RefreshStore, lock.Locker, error) {
	if app.config.RedisAddr == "" {
		app.logger.Info(ctx, "Using in-memory session cache")

		keys := keyexchange.NewMemoryStore()
		access := credentials.NewMemoryAccessStore()
		refresh := credentials.NewMemoryRefreshStore()
		app.sweepers = []cache.Sweeper{keys, access, refresh}

		return keys, access, refresh, lock.NewLocal(), nil
	}

	c, err := cache.NewRedisClient(ctx, cache.RedisOptions{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
		DB:       app.config.RedisDB,
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("cache init error: %w", err)
	}
	app.redis = c

	return keyexchange.NewRedisStore(c),
		credentials.NewRedisAccessStore(c),
		credentials.NewRedisRefreshStore(c),
		lock.NewRedis(c, lock.DefaultLease, lock.DefaultRetry),
		nil
}

func (app *App) close() {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.repos != nil {
		errs = append(errs, app.repos.Close())
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Error(context.Background(), "close error", "error", err)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.sessions, app.metrics)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if len(app.sweepers) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.RunJanitor(ctx, janitorInterval, app.sweepers...)
		}()
	}

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}
