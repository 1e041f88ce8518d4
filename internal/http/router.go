package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter wires the REST surface of the gateway.
func NewRouter(sales *SaleHandler, products *ProductHandler, cfg RouterConfig, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(MaxBodySize(cfg.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sales", func(r chi.Router) {
			r.Post("/", sales.StartSale)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sales.GetSale)
				r.Post("/retry-load", sales.RetryLoad)
				r.Post("/customer", sales.SubmitCustomer)
				r.Post("/scan", sales.Scan)
				r.Post("/items/{product_id}/increment", sales.Increment)
				r.Post("/items/{product_id}/decrement", sales.Decrement)
				r.Post("/invoice", sales.PrintInvoice)
				r.Post("/cancel", sales.RequestCancel)
				r.Post("/cancel/confirm", sales.ConfirmCancel)
				r.Post("/cancel/dismiss", sales.DismissCancel)
			})
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Post("/", products.Create)
			r.Patch("/{id}", products.Update)
			r.Delete("/{id}", products.Delete)
			r.Post("/{id}/label", products.PrintLabel)
		})
	})

	return r
}
