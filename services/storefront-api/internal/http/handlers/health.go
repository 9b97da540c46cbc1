package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports 200 while the store answers a ping within two seconds.
func Health(store Pinger, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("health: store ping failed")
			WriteFail(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		writeOK(w, nil, "ok")
	}
}
