package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/katilkim/katilkim-server/app/eventbus"
	roomservice "github.com/katilkim/katilkim-server/app/modules/room/application"
	roomgateway "github.com/katilkim/katilkim-server/app/modules/room/infrastructure/gateway"
	roomhandlers "github.com/katilkim/katilkim-server/app/modules/room/infrastructure/handlers"
	"github.com/katilkim/katilkim-server/config"
	"github.com/katilkim/katilkim-server/db/bundb"
	"github.com/katilkim/katilkim-server/internal/observability"
)

// App wires the room service, its HTTP surface, the websocket gateway and the
// supporting infrastructure together.
type App struct {
	Cfg         *config.Config
	Logger      *slog.Logger
	RoomService roomservice.Service

	db            *bundb.DBService
	bus           eventbus.EventBus
	gateway       *roomgateway.Gateway
	httpServer    *http.Server
	metricsServer *observability.MetricsServer
}

// NewApp initializes the application with the necessary services and
// configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := observability.NewLogger(cfg.Observability.Environment)

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	var bus eventbus.EventBus
	if cfg.NATS.URL != "" {
		bus, err = eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
		if err != nil {
			dbService.Close()
			return nil, fmt.Errorf("failed to initialize event bus: %w", err)
		}
	} else {
		logger.Info("No NATS URL configured, using the in-memory bus")
		bus = eventbus.NewInMemoryBus(logger)
	}

	registry := observability.NewRegistry()
	metrics := observability.NewMetrics(registry)

	service := roomservice.NewRoomService(
		dbService.RoomDB,
		dbService.PlayerDB,
		bus,
		logger,
		metrics,
		nil,
	)

	gateway := roomgateway.NewGateway(bus, logger, metrics)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Mount("/api/rooms", roomhandlers.NewRoomHandlers(service, logger).Routes())
	router.Get("/ws/rooms/{code}", gateway.ServeHTTP)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &App{
		Cfg:         cfg,
		Logger:      logger,
		RoomService: service,
		db:          dbService,
		bus:         bus,
		gateway:     gateway,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		metricsServer: observability.NewMetricsServer(cfg.Observability.MetricsAddress, registry, logger),
	}, nil
}

// Run starts the gateway, the metrics listener and the HTTP server, and
// blocks until the context is canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.gateway.Run(ctx); err != nil {
		return fmt.Errorf("failed to start websocket gateway: %w", err)
	}
	a.metricsServer.Start()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}
}

// Shutdown drains the HTTP server and releases the bus and the database.
func (a *App) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
	if err := a.metricsServer.Stop(shutdownCtx); err != nil {
		a.Logger.Error("Metrics server shutdown failed", slog.Any("error", err))
	}
	if err := a.bus.Close(); err != nil {
		a.Logger.Error("Event bus close failed", slog.Any("error", err))
	}
	if err := a.db.Close(); err != nil {
		a.Logger.Error("Database close failed", slog.Any("error", err))
	}
}
