package service

import (
	"context"
	"time"

	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/lifecycle"
)

// BookingView is a booking joined with its derived lifecycle figures. The
// stage and settlement are computed per request from the server clock; the
// embedded booking row is the persisted state.
type BookingView struct {
	Booking    domain.Booking       `json:"booking"`
	Stage      domain.Stage         `json:"stage"`
	Settlement lifecycle.Settlement `json:"settlement"`
	ServerTime time.Time            `json:"server_time"`
}

// BargainAction is a client-requested negotiation transition.
type BargainAction string

const (
	BargainActionOffer  BargainAction = "OFFER"
	BargainActionQuote  BargainAction = "COUNTER"
	BargainActionAccept BargainAction = "ACCEPT"
	BargainActionReject BargainAction = "REJECT"
)

type BookingService interface {
	ListBookings(ctx context.Context, userID int32, isAdmin bool, status string, page, pageSize int32) ([]BookingView, int32, error)
	GetBooking(ctx context.Context, userID int32, isAdmin bool, bookingID string) (*BookingView, error)
	ReturnBooking(ctx context.Context, userID int32, isAdmin bool, bookingID string) (*BookingView, error)
	CompleteBooking(ctx context.Context, adminID int32, bookingID string) (*BookingView, error)
}

type NegotiationService interface {
	RespondBookingBargain(ctx context.Context, actorID int32, isAdmin bool, bookingID string, action BargainAction, price float64, message string) (*domain.Booking, error)
	CreateOffer(ctx context.Context, userID int32, carID string, listedPrice, offerPrice float64, message string) (*domain.Offer, error)
	ListOffers(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Offer, int32, error)
	RespondOffer(ctx context.Context, actorID int32, isAdmin bool, offerID string, action BargainAction, price float64, message string) (*domain.Offer, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendOverdueReminder(ctx context.Context, email, name, bookingID string, lateHours, lateFee float64) error
	SendReturnConfirmation(ctx context.Context, email, name, bookingID string, lateFee, remaining float64) error
	SendBargainNotification(ctx context.Context, email, name, subject, body string) error
}
