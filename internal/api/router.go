package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetops/internal/config"
	"fleetops/internal/middleware"
)

// NewRouter assembles the HTTP surface: public health and metrics
// endpoints, and the authenticated API under /v1.
func NewRouter(cfg *config.Config, h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth([]byte(cfg.JWTSecret)))

		r.Route("/trucks", func(r chi.Router) {
			r.Get("/stats", h.GetTruckStats)
			r.Get("/{truckID}", h.GetTruck)
			r.Put("/{truckID}", h.UpdateTruck)
		})

		r.Route("/loads", func(r chi.Router) {
			r.Post("/", h.CreateLoad)
			r.Put("/{loadID}/status", h.UpdateLoadStatus)
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Post("/{driverID}/device-token", h.SetDriverDeviceToken)
			r.Post("/{driverID}/location", h.UpdateTruckLocation)
		})

		r.Get("/employees", h.ListEmployees)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Post("/", h.RaiseNotification)
			r.Put("/{notificationID}/read", h.MarkNotificationRead)
		})

		r.Get("/live", h.Live)
	})

	return r
}
