// Package http wires the REST and SSE surface of the rental lifecycle
// engine.
package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentwheels-backend/internal/lifecycle"
	"rentwheels-backend/internal/metrics"
	"rentwheels-backend/internal/security"
	"rentwheels-backend/internal/service"
)

// RouterConfig carries everything the HTTP surface depends on.
type RouterConfig struct {
	Bookings      service.BookingService
	Negotiations  service.NegotiationService
	Notifications service.NotificationService
	Tokens        security.TokenManager
	Metrics       *metrics.Metrics
	Clock         lifecycle.Clock
	LiveTick      time.Duration
}

func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	bookingHandler := NewBookingHandler(cfg.Bookings)
	negotiationHandler := NewNegotiationHandler(cfg.Negotiations)
	notificationHandler := NewNotificationHandler(cfg.Notifications)
	liveHandler := NewLiveHandler(cfg.Bookings, cfg.Clock, cfg.Metrics, cfg.LiveTick)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(cfg.Tokens))

	api.HandleFunc("/bookings", bookingHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}", bookingHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/live", liveHandler.Stream).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/bargain", negotiationHandler.RespondBookingBargain).Methods(http.MethodPut)
	api.HandleFunc("/bookings/{id}/return", bookingHandler.Return).Methods(http.MethodPut)

	api.HandleFunc("/offers", negotiationHandler.CreateOffer).Methods(http.MethodPost)
	api.HandleFunc("/offers", negotiationHandler.ListOffers).Methods(http.MethodGet)
	api.HandleFunc("/offers/{id}/respond", negotiationHandler.RespondOffer).Methods(http.MethodPut)

	api.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods(http.MethodPut)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(AdminOnly)
	admin.HandleFunc("/bookings/complete/{id}", bookingHandler.Complete).Methods(http.MethodPut)

	return r
}
