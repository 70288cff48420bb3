package domain

import "time"

// Offer is a pre-booking quote negotiation. It carries the same bargain
// record as a booking, but exists before any booking does; once accepted,
// the agreed price seeds the booking's final amount.
type Offer struct {
	ID          string  `json:"id"`
	CarID       string  `json:"car_id"`
	UserID      int32   `json:"user_id"`
	Message     string  `json:"message,omitempty"`
	Bargain     Bargain `json:"bargain"`
	ListedPrice float64 `json:"listed_price"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
