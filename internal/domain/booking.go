package domain

import "time"

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
	BookingStatusRejected       BookingStatus = "REJECTED"
)

type TripStatus string

const (
	TripStatusUpcoming  TripStatus = "UPCOMING"
	TripStatusActive    TripStatus = "ACTIVE"
	TripStatusCompleted TripStatus = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "PENDING"
	PaymentStatusAdvancePaid PaymentStatus = "ADVANCE_PAID"
	PaymentStatusFullyPaid   PaymentStatus = "FULLY_PAID"
	PaymentStatusRefunded    PaymentStatus = "REFUNDED"
)

// Stage is the derived lifecycle phase of a booking. It is computed from
// timestamps and status flags plus a current time and is never stored as
// authoritative state; the persisted settlement snapshot is.
type Stage string

const (
	StagePendingPayment Stage = "PENDING_PAYMENT"
	StageScheduled      Stage = "SCHEDULED"
	StageActive         Stage = "ACTIVE"
	StageOverdue        Stage = "OVERDUE"
	StageCompleted      Stage = "COMPLETED"
	StageCancelled      Stage = "CANCELLED"
)

// DefaultGracePeriodHours applies when a booking row carries no grace period.
const DefaultGracePeriodHours = 1.0

type Booking struct {
	ID       string `json:"id"`
	CarID    string `json:"car_id"`
	RenterID int32  `json:"renter_id"`

	PickupAt         time.Time  `json:"pickup_at"`
	DropAt           *time.Time `json:"drop_at,omitempty"`
	GracePeriodHours float64    `json:"grace_period_hours"`
	ActualReturnAt   *time.Time `json:"actual_return_at,omitempty"`

	// Amounts are float64 on purpose: fee math runs at full floating
	// precision and is rounded to 2 decimals only at the presentation
	// boundary.
	FinalAmount            float64  `json:"final_amount"`
	AdvancePaid            float64  `json:"advance_paid"`
	FullPaymentAmount      *float64 `json:"full_payment_amount,omitempty"`
	DamageCost             float64  `json:"damage_cost"`
	HourlyLateRate         float64  `json:"hourly_late_rate"`
	LateFeeDiscountPercent float64  `json:"late_fee_discount_percent"`
	RefundAmount           float64  `json:"refund_amount"`
	RefundStatus           *string  `json:"refund_status,omitempty"`

	// Server-side settlement snapshot. Clients pass these through verbatim
	// for every stage except OVERDUE, where they recompute live values.
	LateHours       float64 `json:"late_hours"`
	LateFee         float64 `json:"late_fee"`
	RemainingAmount float64 `json:"remaining_amount"`

	BookingStatus BookingStatus `json:"booking_status"`
	TripStatus    TripStatus    `json:"trip_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	Bargain Bargain `json:"bargain"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// IsCancelled covers both renter cancellation and admin rejection.
func (b *Booking) IsCancelled() bool {
	return b.BookingStatus == BookingStatusCancelled || b.BookingStatus == BookingStatusRejected
}

func (b *Booking) IsCompleted() bool {
	return b.TripStatus == TripStatusCompleted
}

// AdvanceConfirmed reports whether the advance payment has cleared, which is
// the gate between PENDING_PAYMENT and the scheduled/active stages.
func (b *Booking) AdvanceConfirmed() bool {
	return b.PaymentStatus == PaymentStatusAdvancePaid || b.PaymentStatus == PaymentStatusFullyPaid
}

// CanBeSettled reports whether a return/complete action is still meaningful.
func (b *Booking) CanBeSettled() bool {
	return !b.IsCancelled() && !b.IsCompleted() && b.AdvanceConfirmed()
}
