package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/swaggo/swag"

	_ "github.com/superpool/superpool/docs"
	"github.com/superpool/superpool/internal/core"
	transporthttp "github.com/superpool/superpool/internal/http"
	"github.com/superpool/superpool/internal/http/handlers"
	"github.com/superpool/superpool/internal/http/health"
	"github.com/superpool/superpool/internal/jobs"
	"github.com/superpool/superpool/internal/middleware"
	"github.com/superpool/superpool/internal/platform/config"
	"github.com/superpool/superpool/internal/platform/logging"
	"github.com/superpool/superpool/internal/platform/rates"
	"github.com/superpool/superpool/internal/providers"
	"github.com/superpool/superpool/internal/store/dynamo"
	"github.com/superpool/superpool/internal/store/mongo"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env, "superpool-api")

	log.Info("starting superpool API", "env", cfg.Env, "port", cfg.Port, "db_type", cfg.DBType)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Storage ----
	var (
		catalog core.CatalogRepo
		quotes  core.QuoteRepo
		pinger  health.Pinger
	)

	switch cfg.DBType {
	case "mongo":
		client, err := mongo.NewClient(cfg)
		if err != nil {
			log.Error("failed to connect to MongoDB", "err", err)
			os.Exit(1)
		}
		defer client.Close(context.Background())

		if err := mongo.EnsureIndexes(ctx, client.DB); err != nil {
			log.Error("failed to ensure indexes", "err", err)
			os.Exit(1)
		}

		opTimeout := time.Duration(cfg.MongoOpTimeoutMs) * time.Millisecond
		catalog = mongo.NewCatalogRepo(client.DB, opTimeout)
		quotes = mongo.NewQuoteRepo(client.DB, opTimeout)
		pinger = client

	case "dynamodb":
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoDBEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			log.Error("failed to connect to DynamoDB", "err", err)
			os.Exit(1)
		}

		if err := dynamo.EnsureTables(ctx, client.DB, log); err != nil {
			log.Error("failed to ensure tables", "err", err)
			os.Exit(1)
		}

		catalog = dynamo.NewCatalogRepo(client.DB)
		quotes = dynamo.NewQuoteRepo(client.DB)
		pinger = client

	default:
		log.Error("unsupported DB_TYPE", "db_type", cfg.DBType)
		os.Exit(1)
	}

	// ---- Rating ----
	rateTable, err := rates.Load(cfg.RateTablePath)
	if err != nil {
		log.Error("failed to load rate table", "err", err)
		os.Exit(1)
	}
	log.Info("rate table loaded", "version", rateTable.Version())

	rating := core.NewRatingEngine(rateTable, core.DefaultRiskAssessors(), core.NoDiscount{}, log)

	// ---- External provider ----
	adapter, err := providers.New(providers.Config{
		Kind:    providers.Kind(cfg.ExternalProvider),
		BaseURL: cfg.HeirsBaseURL,
		APIKey:  cfg.HeirsAPIKey,
		Timeout: time.Duration(cfg.HeirsTimeoutSec) * time.Second,
	}, catalog, quotes, log)
	if err != nil {
		log.Error("failed to configure external provider", "err", err)
		os.Exit(1)
	}
	if adapter != nil {
		log.Info("external provider enabled", "provider", adapter.Name())
	}

	notify := func(ctx context.Context, event string, q core.Quote) {
		log.Info("quote lifecycle event",
			"event", event,
			"quote_code", q.QuoteCode,
			"status", q.Status,
		)
	}

	quoteSvc := core.NewQuoteService(catalog, quotes, rating, adapter, notify, log)

	// ---- Background workers ----
	expiryWorker := jobs.NewExpiryWorker(quotes,
		time.Duration(cfg.ExpirySweepIntervalSec)*time.Second, log)
	go expiryWorker.Start(ctx)

	// ---- HTTP ----
	rl := middleware.NewRateLimiter(cfg.RateLimitRPM, time.Minute)
	rl.StartWithContext(ctx)

	api := transporthttp.NewRouter(transporthttp.Deps{
		Mounts: []handlers.Mountable{
			handlers.NewQuoteHandler(quoteSvc, log),
			handlers.NewProductHandler(catalog, log),
		},
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(time.Duration(cfg.HTTPRequestTimeoutSec) * time.Second))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.LimitRequestBody(middleware.MaxBodySize))
	r.Use(rl.Middleware)
	r.Use(middleware.SimpleAPIKey(cfg.APIKey))

	r.Mount("/", health.New(log, pinger, cfg.DBType, 2*time.Second))
	r.Mount("/api/v1", api)

	r.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, "swagger doc unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}

	log.Info("server stopped")
}
