package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ecommerce-storefront/services/storefront-api/internal/repo"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

const msgInternal = "internal server error"

// Envelope is the body of every response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeOK(w http.ResponseWriter, data any, msg string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: msg})
}

func WriteFail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{Success: false, Message: msg})
}

var errBadJSON = errors.New("invalid JSON body")

// decodeBody reads a single JSON object. Numbers inside opaque line items are
// kept as json.Number so they round-trip without float rounding.
func decodeBody(r *http.Request, w http.ResponseWriter, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body exceeds %d bytes", errBadJSON, maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: body is empty", errBadJSON)
		}
		return errBadJSON
	}
	return nil
}

// base carries what every handler group shares.
type base struct {
	Log     zerolog.Logger
	Timeout time.Duration
}

func (b base) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	if b.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), b.Timeout)
}

// fail answers errors the endpoint did not map itself. Validation problems
// are the caller's fault and are echoed; anything else is logged and hidden.
func (b base) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, errBadJSON), errors.Is(err, repo.ErrValidation):
		WriteFail(w, http.StatusBadRequest, err.Error())
	default:
		b.Log.Error().
			Err(err).
			Str("op", op).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request failed")
		WriteFail(w, http.StatusInternalServerError, msgInternal)
	}
}
