package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/directory"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/event"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/handler"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/repo"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
	platformlogging "github.com/halcyon-cloud/accountflow/platform/go/logging"
	"github.com/halcyon-cloud/accountflow/platform/go/metrics"
	platformmw "github.com/halcyon-cloud/accountflow/platform/go/middleware"
	"github.com/halcyon-cloud/accountflow/platform/go/persistence"
)

type config struct {
	Port             string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	StoreBackend     string        `env:"STORE_BACKEND" envDefault:"postgres"` // postgres | memory
	DatabaseURL      string        `env:"DATABASE_URL"`                        // required when STORE_BACKEND=postgres
	DirectoryURL     string        `env:"DIRECTORY_URL,required"`
	DirectoryTimeout time.Duration `env:"DIRECTORY_TIMEOUT" envDefault:"5s"`
	CrossAccountRole string        `env:"CROSS_ACCOUNT_ROLE" envDefault:""`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "ingest-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var store service.Store
	switch cfg.StoreBackend {
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			logger.Fatal("database url required when STORE_BACKEND=postgres")
		}
		pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
		if err != nil {
			logger.Fatal("init postgres pool", zap.Error(err))
		}
		defer persistence.ClosePool(pool)

		accountStore, err := persistence.NewAccountStore(ctx, pool)
		if err != nil {
			logger.Fatal("init account store", zap.Error(err))
		}
		store = repo.NewPostgresStore(accountStore)
	case "memory":
		logger.Warn("using in-memory store; state is lost on restart")
		store = repo.NewMemoryStore()
	default:
		logger.Fatal("invalid STORE_BACKEND (use postgres or memory)", zap.String("backend", cfg.StoreBackend))
	}

	dir := directory.NewClient(cfg.DirectoryURL, cfg.DirectoryTimeout)
	svc := service.New(store, dir, cfg.CrossAccountRole)

	normalizer, err := event.NewNormalizer()
	if err != nil {
		logger.Fatal("compile event schemas", zap.Error(err))
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	httpHandler := handler.New(svc, normalizer, logger, m)

	rootRouter := chi.NewRouter()
	rootRouter.Use(chimw.RequestID)
	rootRouter.Use(chimw.RealIP)
	rootRouter.Use(chimw.Recoverer)
	rootRouter.Use(platformlogging.RequestLogger(logger))
	rootRouter.Use(platformmw.RequestTrace)

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Method(http.MethodGet, "/metrics", promhttp.Handler())

	apiRouter := chi.NewRouter()
	httpHandler.Register(apiRouter)
	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting ingest server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
