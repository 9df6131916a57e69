package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"overcooked-live/config"
	"overcooked-live/internal/aggregator"
	httpapi "overcooked-live/internal/api/http"
	"overcooked-live/internal/auth"
	"overcooked-live/internal/gateway"
	"overcooked-live/internal/logging"
	"overcooked-live/internal/outbox"
	"overcooked-live/internal/restaurant"
	"overcooked-live/internal/seed"
	"overcooked-live/internal/service"
	"overcooked-live/internal/statistics"
	"overcooked-live/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", os.Getenv("OVERCOOKED_CONFIG"), "path to the YAML config file")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = serve(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("service stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("service stopped")
}

// serve runs the service until ctx is done and releases every opened
// connection before returning.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer a.close()

	return a.run(ctx)
}

type app struct {
	cfg    *config.Config
	logger *zap.Logger

	aggregator *aggregator.Aggregator
	stats      *statistics.Manager
	relay      *outbox.Relay
	hub        *gateway.Hub
	server     *http.Server

	closers []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	seeds, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		return nil, err
	}
	stores := make([]*restaurant.Store, 0, len(seeds))
	for _, s := range seeds {
		stores = append(stores, restaurant.New(s))
		logger.Info("restaurant loaded",
			zap.Int("restaurant_id", s.ID),
			zap.String("name", s.Name),
			zap.Int("dishes", len(s.Dishes)),
			zap.Int("tables", s.Tables))
	}

	a.aggregator = aggregator.New(logger, stores)
	a.stats = statistics.NewManager(logger, stores, cfg.Statistics.Timeframes, nil)
	a.aggregator.Subscribe(a.stats)

	sinks, popularity, err := a.openSinks(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.relay = outbox.NewRelay(logger, a.stats, cfg.Outbox.BufferSize, sinks...)
	a.aggregator.Subscribe(a.relay)

	a.hub = gateway.NewHub(logger, cfg.Server.SendBuffer)
	a.aggregator.Subscribe(a.hub)

	dispatcher := gateway.NewDispatcher(logger, a.aggregator, a.stats)
	realtime := gateway.NewServer(logger, a.hub, dispatcher, auth.NewVerifier(cfg.Auth.JWTSecret), cfg.Server.AllowedOrigins)

	analytics := service.NewAnalyticsService(logger, popularity, a.stats, nil)
	handler := httpapi.NewHandler(a.aggregator, service.TableQRGenerator{BaseURL: cfg.Server.BaseURL}, analytics, realtime)

	a.server = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// openSinks connects the enabled external stores. popularity is nil without redis.
func (a *app) openSinks(ctx context.Context) ([]outbox.Option, service.PopularityReader, error) {
	var (
		opts       []outbox.Option
		popularity service.PopularityReader
	)

	if a.cfg.Postgres.Enabled {
		db, err := config.OpenPostgres(ctx, a.cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db)
		archive := storage.NewPostgresArchive(db)
		if err := archive.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to create archive schema: %w", err)
		}
		opts = append(opts, outbox.WithArchive(archive))
		a.logger.Info("order archive enabled")
	}

	if a.cfg.Redis.Enabled {
		client, err := config.OpenRedis(ctx, a.cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, client)
		mirror := storage.NewRedisStatsMirror(client, a.cfg.Redis.TTL)
		opts = append(opts, outbox.WithStatsMirror(mirror))
		popularity = mirror
		a.logger.Info("statistics mirror enabled", zap.String("addr", a.cfg.Redis.Addr))
	}

	if a.cfg.Kafka.Enabled {
		writer := config.NewKafkaWriter(a.cfg.Kafka)
		a.closers = append(a.closers, writer)
		opts = append(opts, outbox.WithPublisher(storage.NewKafkaPublisher(writer)))
		a.logger.Info("event publisher enabled", zap.String("topic", a.cfg.Kafka.Topic))
	}

	return opts, popularity, nil
}

func (a *app) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.relay.Run(gctx)
	})

	g.Go(func() error {
		a.rolloverLoop(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		err := a.server.Shutdown(shutdownCtx)
		a.hub.Close()
		a.aggregator.Close()
		return err
	})

	return g.Wait()
}

func (a *app) rolloverLoop(ctx context.Context) {
	interval := a.cfg.Statistics.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.stats.Rollover(now)
		}
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}
