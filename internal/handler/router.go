package handler

import (
	"net/http"

	"github.com/Dan9191/fraud-service/internal/config"
	"github.com/Dan9191/fraud-service/internal/metrics"
	"github.com/Dan9191/fraud-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the HTTP routes
func NewRouter(h *Handler, cfg *config.Config, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging(log), middleware.Metrics())

	// Public routes
	r.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Scoring and analytics, optionally behind a bearer token. Registered on
	// the root router so a wrong method still answers 405.
	guard := func(fn http.HandlerFunc) http.Handler {
		if cfg.RequireAuth {
			return middleware.AuthMiddleware(cfg)(fn)
		}
		return fn
	}
	r.Handle("/predict", guard(h.Predict)).Methods(http.MethodPost)
	r.Handle("/fraud-rate-by-city", guard(h.FraudRateByCity)).Methods(http.MethodGet)
	r.Handle("/transactions", guard(h.ListTransactions)).Methods(http.MethodGet)

	return r
}
