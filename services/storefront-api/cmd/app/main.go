package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpx "ecommerce-storefront/services/storefront-api/internal/http"
	"ecommerce-storefront/services/storefront-api/internal/http/handlers"
	"ecommerce-storefront/services/storefront-api/internal/repo"
	"ecommerce-storefront/services/storefront-api/internal/service"
	"ecommerce-storefront/shared/pkg/cache"
	"ecommerce-storefront/shared/pkg/config"
	"ecommerce-storefront/shared/pkg/logger"
	"ecommerce-storefront/shared/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Common.ServiceName, cfg.Common.LogLevel)
	if err := cfg.RequireStore(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctxBoot, cancelBoot := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelBoot()

	store, err := openStore(ctxBoot, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("store open failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	var accounts repo.AccountStore = store.Accounts
	if cfg.Redis.Addr != "" {
		rc := cache.New(cfg.Redis.Addr)
		defer rc.Close()
		if err := rc.Ping(ctxBoot); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, cache calls will fall through")
		}
		accounts = &repo.AccountsCached{Next: accounts, Cache: rc, TTL: cfg.Redis.TTL, Log: log}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	accountsSvc := &service.AccountsService{
		Repo:   accounts,
		Hasher: service.BcryptHasher{Cost: cfg.Security.BcryptCost},
	}
	ordersSvc := &service.OrdersService{Repo: store.Orders}

	router := httpx.NewRouter(&httpx.Handlers{
		Health:   handlers.Health(store, log),
		Accounts: handlers.NewAccountsHandler(accountsSvc, log, cfg.HTTP.RequestTimeout),
		Orders:   handlers.NewOrdersHandler(ordersSvc, log, cfg.HTTP.RequestTimeout),
	}, httpx.Options{
		Log:         log,
		Metrics:     metrics.NewHTTP(reg, cfg.Common.ServiceName),
		Gatherer:    reg,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutdown...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}

func openStore(ctx context.Context, cfg config.Config) (*repo.Store, error) {
	if cfg.Store.Driver == config.DriverMongo {
		return repo.OpenMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	}
	return repo.OpenPostgres(ctx, cfg.Postgres.DSN)
}
