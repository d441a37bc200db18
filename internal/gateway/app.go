// Package gateway is the single public entry point. It owns the session
// cookie, answers login, signup and logout itself and forwards everything
// else to the directory or the page renderer with the resolved identity
// attached.
package gateway

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/kubelearn/internal/cache"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/authclient"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/config"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/handlers"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/proxy"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/session"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/sessionauthority"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config *config.Config
	logger logging.Logger
	rdb    *redis.Client
	router *gin.Engine
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel).With("service", "gateway")

	rdb, err := cache.NewClient(c.RedisURL, cache.ClientOptions{
		DialTimeout:  c.CacheOpTimeout,
		ReadTimeout:  c.CacheOpTimeout,
		WriteTimeout: c.CacheOpTimeout,
	})
	if err != nil {
		return nil, err
	}

	ns := cache.NewNamespace(rdb, cache.SessionPrefix, c.CacheOpTimeout)
	if err := ns.Ping(ctx); err != nil {
		// requests stay anonymous until the store comes back
		logger.Warn(ctx, "session store unreachable at startup", "error", err)
	}

	sessions := session.NewStore(ns, c.SessionTTL, c.SlidingSessions)
	verifier := authclient.New(c.AuthServiceURL, c.VerifierTimeout)

	router, err := Build(c, sessions, verifier, logger)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &App{config: c, logger: logger, rdb: rdb, router: router}, nil
}

// Build assembles the gateway router from its collaborators.
func Build(c *config.Config, sessions sessionauthority.SessionStore, verifier sessionauthority.Verifier, logger logging.Logger) (*gin.Engine, error) {
	frontend, err := parseBackend("frontend", c.FrontendURL)
	if err != nil {
		return nil, err
	}
	users, err := parseBackend("user service", c.UserServiceURL)
	if err != nil {
		return nil, err
	}

	opts := proxy.Options{
		DialTimeout:           c.ProxyDialTimeout,
		ResponseHeaderTimeout: c.ProxyResponseTimeout,
		SessionCookie:         c.CookieName,
	}
	if c.IdentitySigningKey != "" {
		opts.Signer = identity.NewSigner([]byte(c.IdentitySigningKey), identity.DefaultAssertionTTL)
	}

	renderer := proxy.New("renderer", frontend, opts, logger)
	directory := proxy.New("directory", users, opts, logger)

	authority := sessionauthority.New(verifier, sessions, logger)
	h := handlers.NewHandler(authority, handlers.CookieConfig{
		Name:   c.CookieName,
		Secure: c.CookieSecure,
		MaxAge: c.SessionTTL,
	}, c.SlidingSessions, logger)

	return NewRouter(h, renderer, directory, logger), nil
}

func parseBackend(name, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s url: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%s url %q: want http(s)://host[:port]", name, raw)
	}
	return u, nil
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
	defer app.rdb.Close()

	app.logger.Info(ctx, "Starting gateway...", "address", app.config.EndpointAddr)
	app.initSignalHandler(cancelFunc)

	return httpx.NewServer(app.config.EndpointAddr, app.router, app.logger).Run(ctx)
}
