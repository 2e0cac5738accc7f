// Package observability bundles the logger and prometheus metrics shared by
// the service, the HTTP handlers and the websocket gateway.
package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewLogger returns the process-wide slog logger. Development gets readable
// text at debug level; everything else gets JSON at info.
func NewLogger(environment string) *slog.Logger {
	if environment == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Metrics holds the counters the room module reports.
type Metrics struct {
	RoomsCreated     prometheus.Counter
	PlayersJoined    prometheus.Counter
	PlayersLeft      prometheus.Counter
	VotesCast        prometheus.Counter
	ConsensusReached *prometheus.CounterVec
	VersionConflicts prometheus.Counter
	WebsocketClients prometheus.Gauge
}

// NewMetrics registers the room metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "katilkim_rooms_created_total",
			Help: "Rooms created.",
		}),
		PlayersJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "katilkim_players_joined_total",
			Help: "Players who joined a room.",
		}),
		PlayersLeft: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "katilkim_players_left_total",
			Help: "Players who explicitly left a room.",
		}),
		VotesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "katilkim_votes_cast_total",
			Help: "Accusation ballots accepted.",
		}),
		ConsensusReached: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "katilkim_consensus_total",
			Help: "Games ended by unanimous accusation, by outcome.",
		}, []string{"outcome"}),
		VersionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "katilkim_room_version_conflicts_total",
			Help: "Optimistic-concurrency conflicts on the room row.",
		}),
		WebsocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "katilkim_websocket_clients",
			Help: "Currently connected websocket clients.",
		}),
	}
	reg.MustRegister(
		m.RoomsCreated,
		m.PlayersJoined,
		m.PlayersLeft,
		m.VotesCast,
		m.ConsensusReached,
		m.VersionConflicts,
		m.WebsocketClients,
	)
	return m
}

// NewRegistry returns a registry pre-loaded with the standard process and Go
// runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// MetricsServer serves /metrics for the given registry. An empty address
// disables it.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

func NewMetricsServer(addr string, reg *prometheus.Registry, logger *slog.Logger) *MetricsServer {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &MetricsServer{
		server: &http.Server{Addr: addr, Handler: mux},
		logger: logger,
	}
}

// Start runs the metrics listener until the server is shut down.
func (s *MetricsServer) Start() {
	if s == nil {
		return
	}
	go func() {
		s.logger.Info("Metrics server listening", slog.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server failed", slog.Any("error", err))
		}
	}()
}

// Stop shuts the metrics listener down.
func (s *MetricsServer) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
