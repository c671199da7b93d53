package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"results_sync/internal/config"
	"results_sync/internal/platform/logging"
	"results_sync/internal/platform/metrics"
	"results_sync/internal/platform/resilience"
	"results_sync/internal/publisher"
	"results_sync/internal/ranking"
	"results_sync/internal/scheduler"
	"results_sync/internal/service"
	"results_sync/internal/source/timing"
	"results_sync/internal/storage/postgres"
)

// app holds everything a command needs, wired from one config file.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	db       *sqlx.DB
	registry *prometheus.Registry

	events    *postgres.EventStore
	results   *postgres.ResultStore
	syncState *postgres.SyncStateStore

	client    *timing.Client
	sync      *service.SyncService
	catalog   *service.CatalogService
	scheduler *scheduler.Scheduler
	publisher *publisher.RabbitMQ
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database")

	loc, err := cfg.Live.Location()
	if err != nil {
		db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewManager(metrics.WithPrometheusRegistry(registry))

	a := &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		registry:  registry,
		events:    postgres.NewEventStore(db),
		results:   postgres.NewResultStore(db, cfg.Sync.CachePageSize, cfg.Sync.UpsertChunkSize),
		syncState: postgres.NewSyncStateStore(db),
	}
	txManager := postgres.NewTransactionManager(db)

	opts := []timing.Option{timing.WithObserver(recorder)}
	if cfg.API.Circuit.Enabled {
		opts = append(opts, timing.WithCircuitBreaker(resilience.Settings{
			Threshold: cfg.API.Circuit.FailureThreshold,
			Cooldown:  cfg.API.Circuit.OpenTimeout,
			Probes:    cfg.API.Circuit.HalfOpenMaxReq,
			OnChange: func(from, to resilience.State) {
				logger.Warn("timing api circuit changed state", "from", from, "to", to)
			},
		}))
	}
	a.client = timing.New(timing.Config{
		BaseURL: cfg.API.BaseURL,
		Credentials: timing.Credentials{
			ClientID:     cfg.API.ClientID,
			ClientSecret: cfg.API.ClientSecret,
			Username:     cfg.API.Username,
			Password:     cfg.API.Password,
		},
		PageSize:       cfg.API.PageSize,
		PageSizeParam:  cfg.API.PageSizeParam,
		Timeout:        cfg.API.Timeout,
		TokenMargin:    cfg.API.TokenMargin,
		MaxAttempts:    cfg.API.Retry.MaxAttempts,
		InitialBackoff: cfg.API.Retry.InitialBackoff,
		MaxBackoff:     cfg.API.Retry.MaxBackoff,
	}, logger, opts...)

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		a.publisher, err = publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		pub = a.publisher
	}

	resolver := ranking.NewResolver(a.client, cfg.Sync.BracketConcurrency, logger)
	a.sync = service.NewSyncService(
		a.client,
		resolver,
		a.results,
		a.syncState,
		txManager,
		pub,
		recorder,
		logger,
		cfg.Sync,
		service.WithRaceCatalog(a.events),
	)
	a.catalog = service.NewCatalogService(a.client, a.events, txManager, logger)
	a.scheduler = scheduler.NewScheduler(
		a.sync,
		a.events,
		scheduler.Intervals{Active: cfg.Live.ActiveInterval, Fallback: cfg.Live.FallbackInterval},
		loc,
		logger,
	)

	return a, nil
}

// serveMetrics exposes the registry until ctx is done.
func (a *app) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		a.logger.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
}

func (a *app) Close() {
	if a.scheduler != nil {
		a.scheduler.Close()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()
}
