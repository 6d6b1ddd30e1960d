// Package control wires the gateway together: config in, running
// process out.
package control

import (
	"context"
	"log/slog"

	"github.com/vinhng/gatewatch/internal/api"
	"github.com/vinhng/gatewatch/internal/core/config"
	"github.com/vinhng/gatewatch/internal/fault"
	"github.com/vinhng/gatewatch/internal/hub"
	redisclient "github.com/vinhng/gatewatch/internal/infra/redis"
	"github.com/vinhng/gatewatch/internal/monitor"
)

// Gateway is the main application struct that owns all components.
type Gateway struct {
	cfg         config.AppConfig
	hub         *hub.Hub
	monitor     *monitor.Monitor
	server      *api.Server
	redisClient *redisclient.Client
	log         *slog.Logger
}

// NewGateway creates a Gateway with all dependencies initialized.
func NewGateway(cfg config.AppConfig, log *slog.Logger) (*Gateway, error) {
	if log == nil {
		log = slog.Default()
	}

	// A code missing from any mapping table is a programming error; refuse
	// to start rather than serve fallback renderings.
	if err := fault.ValidateTaxonomy(); err != nil {
		return nil, err
	}

	// Redis is optional; rate limits fall back to in-memory counters.
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("failed to connect to redis, rate limits stay in memory", "error", err)
			redisClient = nil
		} else {
			log.Info("redis connected", "url", cfg.Redis.URL)
		}
	}

	h := hub.New(hub.Config{
		InactivityWindow: cfg.Hub.InactivityWindow.Std(),
		JobTTL:           cfg.Hub.JobTTL.Std(),
		RateLimit: hub.RateLimitConfig{
			Enabled:     cfg.Hub.RateLimit.IsEnabled(),
			MaxRequests: cfg.Hub.RateLimit.MaxRequests,
			Window:      cfg.Hub.RateLimit.Window.Std(),
		},
	}, redisClient, log)

	mon := monitor.New(h, log)
	mon.UpdateThresholds(cfg.Monitor.Thresholds.Patch())

	server := api.NewServer(h, mon, cfg.Server.Port, !cfg.Production(), log)

	return &Gateway{
		cfg:         cfg,
		hub:         h,
		monitor:     mon,
		server:      server,
		redisClient: redisClient,
		log:         log,
	}, nil
}

// Start starts the gateway and all its components.
func (g *Gateway) Start(ctx context.Context) error {
	g.monitor.Start(g.cfg.Monitor.Interval.Std())

	go func() {
		g.log.Info("http server listening", "port", g.cfg.Server.Port)
		if err := g.server.Start(); err != nil {
			g.log.Error("http server failed", "error", err)
		}
	}()

	return nil
}

// Stop stops the gateway.
func (g *Gateway) Stop(ctx context.Context) error {
	g.log.Info("stopping gateway")

	g.monitor.Stop()

	if g.redisClient != nil {
		if err := g.redisClient.Close(); err != nil {
			g.log.Warn("failed to close redis", "error", err)
		}
	}

	return g.server.Stop(ctx)
}

// Hub exposes the connection hub.
func (g *Gateway) Hub() *hub.Hub {
	return g.hub
}

// Monitor exposes the resource monitor.
func (g *Gateway) Monitor() *monitor.Monitor {
	return g.monitor
}
