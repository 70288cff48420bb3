package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/lifecycle"
	"rentwheels-backend/internal/logger"
	"rentwheels-backend/internal/metrics"
	"rentwheels-backend/internal/service"
)

// LiveHandler streams a booking's live settlement over server-sent events.
// Each connection owns one Countdown instance; closing the connection stops
// it, so abandoned tabs never leave a ticker running.
type LiveHandler struct {
	bookings     service.BookingService
	clock        lifecycle.Clock
	metrics      *metrics.Metrics
	tickInterval time.Duration
}

func NewLiveHandler(bookings service.BookingService, clock lifecycle.Clock, m *metrics.Metrics, tickInterval time.Duration) *LiveHandler {
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	return &LiveHandler{
		bookings:     bookings,
		clock:        clock,
		metrics:      m,
		tickInterval: tickInterval,
	}
}

type liveEvent struct {
	BookingID  string               `json:"booking_id"`
	Stage      domain.Stage         `json:"stage"`
	Settlement lifecycle.Settlement `json:"settlement"`
	Countdown  lifecycle.Snapshot   `json:"countdown"`
	ServerTime time.Time            `json:"server_time"`
}

func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["id"]
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming not supported"})
		return
	}

	// Resolve and authorize before committing to the event stream; errors
	// after the first write can only abort the connection.
	view, err := h.bookings.GetBooking(r.Context(), callerID(r), callerIsAdmin(r), bookingID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if h.metrics != nil {
		h.metrics.LiveStreamsActive.Inc()
		defer h.metrics.LiveStreamsActive.Dec()
	}

	cfg := lifecycle.CountdownConfig{
		Interval: h.tickInterval,
	}
	if view.Settlement.Deadline != nil {
		cfg.HasTarget = true
		cfg.Target = *view.Settlement.Deadline
		if view.Stage == domain.StageOverdue {
			// Past the deadline the stream counts elapsed overdue time.
			cfg.Direction = lifecycle.DirectionUp
		}
	}

	ticks := make(chan lifecycle.Snapshot, 1)
	cfg.OnTick = func(snap lifecycle.Snapshot) {
		// Drop the tick if the writer is behind; the next one supersedes it.
		select {
		case ticks <- snap:
		default:
		}
	}

	cd := lifecycle.NewCountdown(h.clock, cfg)
	if err := cd.Start(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	defer cd.Stop()

	// First event immediately so the client renders without waiting a tick.
	if !h.writeEvent(w, flusher, view, cd.Observe()) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-ticks:
			view, err := h.bookings.GetBooking(r.Context(), callerID(r), callerIsAdmin(r), bookingID)
			if err != nil {
				logger.Warn("Live stream refetch failed", "booking_id", bookingID, "error", err)
				return
			}
			if !h.writeEvent(w, flusher, view, snap) {
				return
			}
			if view.Stage == domain.StageCompleted || view.Stage == domain.StageCancelled {
				// Settlement is frozen; nothing further will change.
				return
			}
		}
	}
}

func (h *LiveHandler) writeEvent(w http.ResponseWriter, flusher http.Flusher, view *service.BookingView, snap lifecycle.Snapshot) bool {
	event := liveEvent{
		BookingID:  view.Booking.ID,
		Stage:      view.Stage,
		Settlement: view.Settlement,
		Countdown:  snap,
		ServerTime: view.ServerTime,
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal live event", "error", err)
		return false
	}
	if _, err := fmt.Fprintf(w, "event: settlement\ndata: %s\n\n", data); err != nil {
		return false
	}
	flusher.Flush()
	return true
}
