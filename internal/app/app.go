// Package app assembles the application: configuration, logger, store, the
// domain managers and the HTTP server, with graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"flashstore/internal/cart"
	"flashstore/internal/checkout"
	"flashstore/internal/config"
	"flashstore/internal/infrastructure"
	"flashstore/internal/license"
	"flashstore/internal/notify"
	"flashstore/internal/portal"
	"flashstore/internal/script"
	"flashstore/internal/store"
	transport "flashstore/internal/transport/http"
	"flashstore/internal/websocket"
)

// Application is the assembled dependency graph.
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    store.Store
	Hub      *websocket.Hub
	Registry *license.Registry
	Cart     *cart.Manager
	Checkout *checkout.Session
	Portal   *portal.Manager
	Server   *http.Server
}

// New builds the application from configuration.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := infrastructure.InitializeLogger(cfg.Logging)

	fileStore, err := store.NewFileStore(cfg.Storage.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	hub := websocket.NewHub(logger)
	registry := license.NewRegistry(fileStore, hub, logger)
	cartManager := cart.NewManager(fileStore, logger)

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notifier.BotToken != "" && cfg.Notifier.ChatID != "" {
		notifier = notify.NewTelegramNotifier(
			cfg.Notifier.BotToken, cfg.Notifier.ChatID, cfg.Notifier.Timeout, logger)
	}

	var issuer checkout.Issuer = checkout.LocalIssuer{}
	if cfg.Issuer.Endpoint != "" {
		issuer = checkout.NewHTTPIssuer(cfg.Issuer.Endpoint, cfg.Issuer.Timeout)
	}

	player := &script.TimedPlayer{}
	checkoutSession := checkout.NewSession(cartManager, registry, issuer, player, notifier, logger)
	portalManager := portal.NewManager(registry, cartManager, notifier, player, logger)

	router := transport.NewRouter(transport.RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Cart:     cartManager,
		Checkout: checkoutSession,
		Portal:   portalManager,
		Hub:      hub,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		Config:   cfg,
		Logger:   logger,
		Store:    fileStore,
		Hub:      hub,
		Registry: registry,
		Cart:     cartManager,
		Checkout: checkoutSession,
		Portal:   portalManager,
		Server:   server,
	}, nil
}

// Run starts the hub and the HTTP server and blocks until shutdown.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Hub.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		a.Portal.Shutdown()
		a.Hub.Stop()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.Logger.Info("shutdown complete")
	return nil
}

// startupBanner is logged once on boot.
func (a *Application) startupBanner() {
	a.Logger.Info("flashstore starting",
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_dir", a.Config.Storage.DataDir),
		slog.Time("started_at", time.Now().UTC()))
}

// Start logs the banner and runs the application.
func (a *Application) Start() error {
	a.startupBanner()
	return a.Run()
}
