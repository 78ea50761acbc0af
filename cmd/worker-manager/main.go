package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"site-traffic-workers/internal/cache"
	"site-traffic-workers/internal/common/aws"
	"site-traffic-workers/internal/common/camunda"
	"site-traffic-workers/internal/common/config"
	"site-traffic-workers/internal/common/database"
	"site-traffic-workers/internal/common/logger"
	"site-traffic-workers/internal/common/observability"
	"site-traffic-workers/internal/directory"
	"site-traffic-workers/internal/traffic"
	"site-traffic-workers/internal/visitstats"

	aa "site-traffic-workers/internal/workers/analytics/analyze-area"
)

const (
	shutdownGrace = 15 * time.Second
	purgeInterval = time.Hour
)

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("Starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checks []readinessCheck

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	checks = append(checks, readinessCheck{"zeebe", zeebe.HealthCheck})
	log.Info("Zeebe client connected", nil)

	// --- Venue directory ---
	var esClient *elasticsearch.Client
	if cfg.Traffic.Directory.Backend == config.DirectoryBackendElasticsearch {
		var es *database.ElasticsearchClient
		err := camunda.Retry(ctx, camunda.DefaultRetryConfig, func() error {
			var err error
			if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
				return err
			}
			return es.Ping(ctx)
		})
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		esClient = es.Client
		checks = append(checks, readinessCheck{"elasticsearch", es.Ping})
		log.Info("Elasticsearch connected", nil)
	}

	venueDirectory, err := directory.New(cfg.Traffic.Directory, esClient)
	if err != nil {
		zapLog.Fatal("venue directory setup failed", zap.Error(err))
	}

	// --- Analysis cache ---
	var backends cache.Backends
	switch cfg.Traffic.Cache.Backend {
	case config.CacheBackendRedis:
		var rdb *database.RedisClient
		err := camunda.Retry(ctx, camunda.DefaultRetryConfig, func() error {
			var err error
			if rdb, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return err
			}
			return rdb.Ping(ctx)
		})
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		backends.Redis = rdb.Client
		checks = append(checks, readinessCheck{"redis", rdb.Ping})
		log.Info("Redis connected", nil)

	case config.CacheBackendPostgres:
		var pg *database.PostgresClient
		err := camunda.Retry(ctx, camunda.DefaultRetryConfig, func() error {
			var err error
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
			return pg.Ping(ctx)
		})
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		backends.Postgres = pg.DB
		checks = append(checks, readinessCheck{"postgres", pg.Ping})
		log.Info("PostgreSQL connected", nil)
	}

	analysisCache, err := cache.New(cfg.Traffic.Cache, backends)
	if err != nil {
		zapLog.Fatal("analysis cache setup failed", zap.Error(err))
	}
	if pgCache, ok := analysisCache.(*cache.Postgres); ok {
		if err := pgCache.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("analysis cache schema failed", zap.Error(err))
		}
		go purgeExpired(ctx, pgCache, purgeInterval, log)
	}

	// --- Engine ---
	var provider traffic.VisitStatisticsProvider
	if cfg.Traffic.VisitStats.Enabled {
		provider = visitstats.New(cfg.Traffic.VisitStats)
	}

	jitter := traffic.NewRandomJitter()
	if seed := cfg.Traffic.Engine.JitterSeed; seed != 0 {
		jitter = traffic.NewSeededJitter(seed)
	}

	resolver := traffic.NewResolver(
		provider,
		traffic.NewSynthesizer(jitter),
		config.GetDuration(cfg.Traffic.VisitStats.Timeout),
		log.WithFields(map[string]interface{}{"component": "resolver"}),
	)

	opts := traffic.DefaultOptions()
	opts.DirectoryTimeout = config.GetDuration(cfg.Traffic.Directory.Timeout)
	opts.CacheReadTimeout = config.GetDuration(cfg.Traffic.Cache.ReadTimeout)
	opts.CacheWriteTimeout = config.GetDuration(cfg.Traffic.Cache.WriteTimeout)
	opts.MaxConcurrentLookups = cfg.Traffic.Engine.MaxConcurrentLookups
	opts.MaxVenues = cfg.Traffic.Directory.MaxResults
	opts.SortHint = cfg.Traffic.Directory.SortHint

	engine := traffic.NewEngine(venueDirectory, resolver, analysisCache,
		log.WithFields(map[string]interface{}{"component": "engine"}), opts)

	// --- Opportunity alerts ---
	var publisher aa.AlertPublisher
	sns := cfg.Notifications.SNS
	if sns.Enabled {
		client, err := aws.NewSNSClient(ctx, sns.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		publisher = client
	}

	// --- Workers ---
	workers := camunda.NewWorkers(zeebe.GetClient(), log)

	handler := aa.NewHandler(aa.LoadConfig(cfg), engine, publisher, obs, log)
	if !workers.Register(aa.TaskType, config.GetWorkerConfig(cfg, aa.TaskType), handler.Handle) {
		log.Warn("No workers enabled", nil)
	}

	log.Info("Workers registered", map[string]interface{}{"active": workers.Active()})

	// --- Health, readiness & metrics ---
	server := newHealthServer(cfg.App.HealthPort, checks)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers", nil)

	workers.Close(shutdownGrace)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	log.Info("Worker manager stopped", nil)
}

func newHealthServer(port int, checks []readinessCheck) *http.Server {
	if port == 0 {
		port = 8080
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				results[c.name] = err.Error()
				status, code = "not_ready", http.StatusServiceUnavailable
				continue
			}
			results[c.name] = "ok"
		}
		writeJSON(w, code, map[string]interface{}{"status": status, "checks": results})
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// purgeExpired drops stale rows from the durable cache until ctx ends.
func purgeExpired(ctx context.Context, store *cache.Postgres, every time.Duration, log logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				log.Warn("cache purge failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			if n > 0 {
				log.Debug("cache purge", map[string]interface{}{"removed": n})
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
