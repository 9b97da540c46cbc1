package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ecommerce-storefront/services/storefront-api/internal/http/handlers"
	"ecommerce-storefront/shared/pkg/metrics"
)

type Handlers struct {
	Health   http.HandlerFunc
	Accounts *handlers.AccountsHandler
	Orders   *handlers.OrdersHandler
}

type Options struct {
	Log         zerolog.Logger
	Metrics     *metrics.HTTP
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

func NewRouter(h *Handlers, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AccessLog(opts.Log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(Recoverer(opts.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteFail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteFail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/createAccount", h.Accounts.Create)
		r.Get("/getAccounts", h.Accounts.List)
		r.Get("/getLoginDetail/{email}", h.Accounts.GetByEmail)
		r.Post("/login", h.Accounts.Login)
		r.Put("/updateAccount/{email}", h.Accounts.UpdateCart)

		r.Post("/createOrder", h.Orders.Create)
		r.Get("/getOrders", h.Orders.List)
	})
	return r
}
