package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/DonaldPG/pytaaa-web/internal/api/handlers"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// Handlers bundles every endpoint handler the router mounts
type Handlers struct {
	Models    *handlers.ModelHandler
	Portfolio *handlers.PortfolioHandler
	Backtest  *handlers.BacktestHandler
	Selection *handlers.SelectionHandler
	Ingest    *handlers.IngestHandler
	Updates   *handlers.UpdatesHandler
}

// NewRouter creates and configures the HTTP router
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api/v1").Subrouter()

	// Fixed paths have to be mounted before the {id} routes
	api.HandleFunc("/models/compare", h.Models.Compare).Methods("GET")
	api.HandleFunc("/models/backtest/compare", h.Backtest.Compare).Methods("GET")
	api.HandleFunc("/models/selection/history", h.Selection.History).Methods("GET")

	api.HandleFunc("/models", h.Models.List).Methods("GET")
	api.HandleFunc("/models/{id}", h.Models.Get).Methods("GET")
	api.HandleFunc("/models/{id}/performance", h.Models.Performance).Methods("GET")
	api.HandleFunc("/models/{id}/holdings", h.Portfolio.Holdings).Methods("GET")
	api.HandleFunc("/models/{id}/holdings/{date}", h.Portfolio.HoldingsByDate).Methods("GET")
	api.HandleFunc("/models/{id}/snapshots", h.Portfolio.Snapshots).Methods("GET")
	api.HandleFunc("/models/{id}/backtest", h.Backtest.Series).Methods("GET")

	api.HandleFunc("/ingest", h.Ingest.Trigger).Methods("POST")
	api.HandleFunc("/ws/updates", h.Updates.Serve).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "pytaaa-web-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
