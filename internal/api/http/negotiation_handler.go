package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/service"
)

type NegotiationHandler struct {
	negotiations service.NegotiationService
}

func NewNegotiationHandler(negotiations service.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{negotiations: negotiations}
}

type bargainRequest struct {
	Action  string  `json:"action"`
	Price   float64 `json:"price"`
	Message string  `json:"message"`
}

func (h *NegotiationHandler) RespondBookingBargain(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["id"]

	var req bargainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	b, err := h.negotiations.RespondBookingBargain(r.Context(), callerID(r), callerIsAdmin(r), bookingID,
		service.BargainAction(req.Action), req.Price, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

type createOfferRequest struct {
	CarID       string  `json:"car_id"`
	ListedPrice float64 `json:"listed_price"`
	OfferPrice  float64 `json:"offer_price"`
	Message     string  `json:"message"`
}

func (h *NegotiationHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req createOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	o, err := h.negotiations.CreateOffer(r.Context(), callerID(r), req.CarID, req.ListedPrice, req.OfferPrice, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

type offerListResponse struct {
	Offers   []domain.Offer `json:"offers"`
	Total    int32          `json:"total"`
	Page     int32          `json:"page"`
	PageSize int32          `json:"page_size"`
}

func (h *NegotiationHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	offers, total, err := h.negotiations.ListOffers(r.Context(), callerID(r), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, offerListResponse{
		Offers:   offers,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *NegotiationHandler) RespondOffer(w http.ResponseWriter, r *http.Request) {
	offerID := mux.Vars(r)["id"]

	var req bargainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	o, err := h.negotiations.RespondOffer(r.Context(), callerID(r), callerIsAdmin(r), offerID,
		service.BargainAction(req.Action), req.Price, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
