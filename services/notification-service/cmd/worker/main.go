package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecommerce-storefront/services/notification-service/internal/worker"
	"ecommerce-storefront/shared/pkg/config"
	"ecommerce-storefront/shared/pkg/logger"
	"ecommerce-storefront/shared/pkg/models"
	"ecommerce-storefront/shared/pkg/rabbit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New("notification-service", cfg.Common.LogLevel)

	rc, err := rabbit.Dial(cfg.Rabbit.URL, "notification-service")
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareBase(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare base failed")
	}

	if err := rabbit.DeclareQueueWithDLQ(rc.Ch, rabbit.QueueSpec{
		Name:     "notification.q",
		BindKeys: []string{models.EventOrderPlaced},
		DLQ:      "notification.dlq",
	}); err != nil {
		log.Fatal().Err(err).Msg("declare notification topology failed")
	}

	deliveries, err := rabbit.NewConsumer(rc.Ch, "notification-service").Consume("notification.q", cfg.Notify.Prefetch)
	if err != nil {
		log.Fatal().Err(err).Msg("consume failed")
	}

	reg := prometheus.NewRegistry()
	consumer := &worker.Consumer{Log: log, Processed: worker.NewProcessedCounter(reg)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumer.Run(ctx, deliveries)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	httpSrv := &http.Server{Addr: cfg.Notify.HTTPAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	log.Info().Msg("notification worker started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case amqpErr := <-rc.Closed():
		log.Error().Interface("reason", amqpErr).Msg("rabbit connection closed")
	}

	log.Info().Msg("shutdown")
	cancel()
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = httpSrv.Shutdown(shCtx)
}
