package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SignalDesk/internal/domain/repository"
	"SignalDesk/internal/handler/push"
	"SignalDesk/internal/service/cooldown"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"
	"SignalDesk/pkg/kvstore"
	applogger "SignalDesk/pkg/logger"
)

// App owns the application lifecycle: the HTTP server, the push hub and
// every resource that needs a graceful teardown.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	handler  xhttp.Handler
	hub      *push.Hub
	ledger   *cooldown.Ledger
	store    kvstore.Store
	archiver repository.Archiver

	httpServer *xhttp.Server
}

// New creates an App from its assembled components.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	hub *push.Hub,
	ledger *cooldown.Ledger,
	store kvstore.Store,
	archiver repository.Archiver,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handler:  handler,
		hub:      hub,
		ledger:   ledger,
		store:    store,
		archiver: archiver,
	}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then tears
// everything down in order: server, push hub, cooldown tickers, archive,
// key-value store.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler, a.log,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithShutdownTimeout(a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	a.log.Info("started",
		applogger.String("environment", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.log.Info("shutting down", applogger.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http server shutdown", applogger.Error(err))
	}
	if err := a.hub.Close(); err != nil {
		a.log.Error("push hub close", applogger.Error(err))
	}

	a.ledger.StopAll()

	if err := a.archiver.Close(); err != nil {
		a.log.Error("archiver close", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("store close", applogger.Error(err))
	}

	a.log.Info("stopped")
	return nil
}
