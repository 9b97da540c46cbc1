package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type PendingCounter interface {
	Pending(ctx context.Context) (int, error)
}

type Server struct {
	Outbox   PendingCounter
	Pending  prometheus.Gauge
	Gatherer prometheus.Gatherer
	Log      zerolog.Logger
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/outbox/pending", func(w http.ResponseWriter, r *http.Request) {
		n, err := s.Outbox.Pending(r.Context())
		if err != nil {
			s.Log.Error().Err(err).Msg("count pending outbox events")
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		s.Pending.Set(float64(n))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"pending": n})
	})

	return mux
}
