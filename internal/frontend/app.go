// Package frontend wires the page renderer.
package frontend

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/kubelearn/internal/frontend/config"
	"github.com/dmitrijs2005/kubelearn/internal/frontend/handlers"
	"github.com/dmitrijs2005/kubelearn/internal/frontend/views"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/gin-gonic/gin"
)

type App struct {
	config *config.Config
	logger logging.Logger
	router *gin.Engine
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel).With("service", "frontend")

	router, err := Router(c, logger)
	if err != nil {
		return nil, err
	}
	return &App{config: c, logger: logger, router: router}, nil
}

// Router builds the page router with the embedded templates.
func Router(c *config.Config, logger logging.Logger) (*gin.Engine, error) {
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	var verifier *identity.Verifier
	if c.IdentitySigningKey != "" {
		verifier = identity.NewVerifier([]byte(c.IdentitySigningKey))
	}

	r := httpx.NewEngine(logger)
	r.HTMLRender = renderer
	handlers.NewHandler(verifier, logger).Register(r)
	return r, nil
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

	app.logger.Info(ctx, "Starting frontend...")
	app.initSignalHandler(cancelFunc)

	return httpx.NewServer(app.config.EndpointAddr, app.router, app.logger).Run(ctx)
}
