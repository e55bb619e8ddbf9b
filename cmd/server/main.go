package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	platformconfig "github.com/Ignacio1972/mineria-sub004/internal/platform/config"
	"github.com/Ignacio1972/mineria-sub004/internal/platform/httpserver"
	"github.com/Ignacio1972/mineria-sub004/internal/platform/logger"
	platformredis "github.com/Ignacio1972/mineria-sub004/internal/platform/redis"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/catalog"
	rulescfg "github.com/Ignacio1972/mineria-sub004/internal/seia/config"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/handler"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/metrics"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/ports"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/service/analyzer"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/service/intersect"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/store/geostore"
	"github.com/Ignacio1972/mineria-sub004/pkg/platform/audit/publisher"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Engine logic lives in internal/seia.
func main() {
	cfg := platformconfig.FromEnv()
	log := logger.New()

	rules, err := rulescfg.Load(cfg.RulesPath)
	if err != nil {
		log.Error("load rules", "path", cfg.RulesPath, "error", err)
		os.Exit(1)
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Error("load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}

	store, cleanupStore, err := buildGeometryStore(cfg, log)
	if err != nil {
		log.Error("build geometry store", "error", err)
		os.Exit(1)
	}
	defer cleanupStore()

	engineMetrics := metrics.New()
	intersector, err := intersect.New(store, cat,
		intersect.WithLogger(log),
		intersect.WithMetrics(engineMetrics),
		intersect.WithLayerTimeout(cfg.LayerTimeout),
	)
	if err != nil {
		log.Error("build intersector", "error", err)
		os.Exit(1)
	}

	analyzerOpts := []analyzer.Option{
		analyzer.WithLogger(log),
		analyzer.WithMetrics(engineMetrics),
	}
	if len(cfg.KafkaBrokers) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		pub, err := publisher.NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic,
			publisher.WithLogger(log))
		cancel()
		if err != nil {
			log.Error("connect audit publisher", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		analyzerOpts = append(analyzerOpts, analyzer.WithAuditPublisher(pub))
	}

	svc, err := analyzer.New(rules, cat, intersector, analyzerOpts...)
	if err != nil {
		log.Error("build analyzer", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	handler.New(svc, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting seia engine", "addr", cfg.Addr, "layers", cat.Len())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildGeometryStore picks the PostGIS store when a DSN is configured and
// the fixture store otherwise, wrapping either in the Redis cache when
// Redis is configured.
func buildGeometryStore(cfg platformconfig.Server, log *slog.Logger) (ports.GeometryStore, func(), error) {
	cleanup := func() {}

	var store ports.GeometryStore
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, cleanup, err
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, cleanup, err
		}
		pg, err := geostore.NewPostgres(db)
		if err != nil {
			_ = db.Close()
			return nil, cleanup, err
		}
		store = pg
		cleanup = func() { _ = db.Close() }
	} else {
		log.Warn("no postgres DSN configured, using empty in-memory geometry store")
		store = geostore.NewMemory()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, cleanup, err
	}
	if redisClient != nil {
		dbCleanup := cleanup
		cleanup = func() {
			_ = redisClient.Close()
			dbCleanup()
		}
		cached, err := geostore.NewCached(store, redisClient.Client,
			geostore.WithCacheTTL(cfg.Redis.CacheTTL))
		if err != nil {
			return nil, cleanup, err
		}
		store = cached
	}
	return store, cleanup, nil
}
