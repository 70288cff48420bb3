package repository

import (
	"context"
	"time"

	"rentwheels-backend/internal/domain"
)

// SettlementUpdate is the authoritative settlement snapshot written when a
// booking is returned/completed or refreshed by the overdue job.
type SettlementUpdate struct {
	LateHours       float64
	LateFee         float64
	RemainingAmount float64
	ActualReturnAt  *time.Time
	TripStatus      domain.TripStatus
	PaymentStatus   domain.PaymentStatus
}

type BookingFilter struct {
	RenterID *int32
	Status   *domain.BookingStatus
	Page     int32
	PageSize int32
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, int32, error)

	// UpdateBargain persists a bargain transition guarded by the status the
	// caller read before applying the machine. Zero rows affected means the
	// state moved concurrently and the caller must refetch.
	UpdateBargain(ctx context.Context, bookingID string, expected domain.BargainStatus, bg *domain.Bargain) error

	// AcceptBargain writes the agreed price into final_amount and marks the
	// bargain accepted in one statement, guarded the same way, so the price
	// is mutated exactly once no matter how often accept is retried.
	AcceptBargain(ctx context.Context, bookingID string, expected domain.BargainStatus, bg *domain.Bargain, finalAmount float64) error

	// Settle writes the settlement snapshot and completes the trip, guarded
	// on the trip not being completed yet.
	Settle(ctx context.Context, bookingID string, upd SettlementUpdate) error

	// UpdateSettlementSnapshot refreshes the stored late-fee figures without
	// completing the trip (periodic overdue refresh).
	UpdateSettlementSnapshot(ctx context.Context, bookingID string, lateHours, lateFee, remaining float64) error

	// ListOverdueCandidates returns confirmed, advance-paid, uncompleted
	// bookings whose return deadline has passed.
	ListOverdueCandidates(ctx context.Context, now time.Time) ([]domain.Booking, error)

	// ListWithLiveBargains returns bookings whose bargain is in a
	// non-terminal state and carries an expiry.
	ListWithLiveBargains(ctx context.Context, now time.Time) ([]domain.Booking, error)
}

type OfferRepository interface {
	Create(ctx context.Context, o *domain.Offer) error
	GetByID(ctx context.Context, id string) (*domain.Offer, error)
	ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Offer, int32, error)
	UpdateBargain(ctx context.Context, offerID string, expected domain.BargainStatus, bg *domain.Bargain) error
	ListWithLiveBargains(ctx context.Context, now time.Time) ([]domain.Offer, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
