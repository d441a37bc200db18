// Package authservice wires the Credential Verifier: Credential Store,
// migrations, bcrypt service and the internal HTTP endpoint.
package authservice

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/kubelearn/internal/authservice/config"
	"github.com/dmitrijs2005/kubelearn/internal/authservice/handlers"
	"github.com/dmitrijs2005/kubelearn/internal/authservice/services"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/repositories/repomanager"
	"github.com/gin-gonic/gin"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	service *services.Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel).With("service", "authservice")

	db, err := repomanager.Open(ctx, c.DatabaseDSN, repomanager.PoolOptions{
		MaxOpenConns:   c.MaxOpenConns,
		ConnectTimeout: c.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if c.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
	}

	svc, err := services.NewService(services.NewPostgresStore(db, rm), c.BcryptCost, c.QueryTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{config: c, logger: logger, db: db, service: svc}, nil
}

// Router builds the gin engine serving the verifier endpoints.
func (app *App) Router() *gin.Engine {
	r := httpx.NewEngine(app.logger)
	handlers.NewHandler(app.service, app.logger).Register(r)
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

	app.logger.Info(ctx, "Starting authservice...")
	app.initSignalHandler(cancelFunc)

	return httpx.NewServer(app.config.EndpointAddr, app.Router(), app.logger).Run(ctx)
}
