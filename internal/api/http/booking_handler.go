package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rentwheels-backend/internal/service"
)

type BookingHandler struct {
	bookings service.BookingService
}

func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type bookingListResponse struct {
	Bookings []service.BookingView `json:"bookings"`
	Total    int32                 `json:"total"`
	Page     int32                 `json:"page"`
	PageSize int32                 `json:"page_size"`
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	status := r.URL.Query().Get("status")

	views, total, err := h.bookings.ListBookings(r.Context(), callerID(r), callerIsAdmin(r), status, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingListResponse{
		Bookings: views,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["id"]

	view, err := h.bookings.GetBooking(r.Context(), callerID(r), callerIsAdmin(r), bookingID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *BookingHandler) Return(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["id"]

	view, err := h.bookings.ReturnBooking(r.Context(), callerID(r), callerIsAdmin(r), bookingID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["id"]

	view, err := h.bookings.CompleteBooking(r.Context(), callerID(r), bookingID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func pagination(r *http.Request) (int32, int32) {
	page := int32(1)
	pageSize := int32(20)
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}
