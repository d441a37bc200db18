// Package userservice wires the cache-aside user directory.
package userservice

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/kubelearn/internal/cache"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/repositories/repomanager"
	"github.com/dmitrijs2005/kubelearn/internal/userservice/config"
	"github.com/dmitrijs2005/kubelearn/internal/userservice/directory"
	"github.com/dmitrijs2005/kubelearn/internal/userservice/handlers"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	rdb       *redis.Client
	directory *directory.Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel).With("service", "userservice")

	db, err := repomanager.Open(ctx, c.DatabaseDSN, repomanager.PoolOptions{
		MaxOpenConns:   c.MaxOpenConns,
		ConnectTimeout: c.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rdb, err := cache.NewClient(c.RedisURL, cache.ClientOptions{
		DialTimeout:  c.CacheOpTimeout,
		ReadTimeout:  c.CacheOpTimeout,
		WriteTimeout: c.CacheOpTimeout,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ns := cache.NewNamespace(rdb, cache.DirectoryPrefix, c.CacheOpTimeout)
	if err := ns.Ping(ctx); err != nil {
		// the directory still serves from the origin without a cache
		logger.Warn(ctx, "directory cache unreachable at startup", "error", err)
	}

	opts := directory.DefaultOptions()
	opts.TTL = c.CacheTTL
	opts.QueryTimeout = c.QueryTimeout
	if c.InvalidateRetries >= 0 {
		opts.InvalidateRetries = uint64(c.InvalidateRetries)
	}

	repo := repomanager.NewPostgresRepositoryManager().Users(db)
	svc := directory.NewService(repo, ns, opts, logger)

	return &App{config: c, logger: logger, db: db, rdb: rdb, directory: svc}, nil
}

func (app *App) Router() *gin.Engine {
	var verifier *identity.Verifier
	if app.config.IdentitySigningKey != "" {
		verifier = identity.NewVerifier([]byte(app.config.IdentitySigningKey))
	}

	r := httpx.NewEngine(app.logger)
	handlers.NewHandler(app.directory, verifier, app.logger).Register(r)
	return r
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()
	defer app.rdb.Close()

	app.logger.Info(ctx, "Starting userservice...")
	app.initSignalHandler(cancelFunc)

	return httpx.NewServer(app.config.EndpointAddr, app.Router(), app.logger).Run(ctx)
}
