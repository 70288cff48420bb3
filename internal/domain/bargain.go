package domain

import "time"

type BargainStatus string

const (
	BargainStatusNone           BargainStatus = "NONE"
	BargainStatusUserOffered    BargainStatus = "USER_OFFERED"
	BargainStatusAdminCountered BargainStatus = "ADMIN_COUNTERED"
	BargainStatusLocked         BargainStatus = "LOCKED"
	BargainStatusAccepted       BargainStatus = "ACCEPTED"
	BargainStatusRejected       BargainStatus = "REJECTED"
	BargainStatusExpired        BargainStatus = "EXPIRED"
)

// MaxBargainAttempts caps the number of price rounds a renter may open.
// The cap is enforced server-side; clients only mirror it for pre-validation.
const MaxBargainAttempts = 3

type Actor string

const (
	ActorUser  Actor = "USER"
	ActorAdmin Actor = "ADMIN"
)

// PriceOffer is one entry in a bargain's ordered negotiation history.
type PriceOffer struct {
	Actor   Actor     `json:"actor"`
	Price   float64   `json:"price"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// Bargain is the bounded price-negotiation record embedded in a booking or
// carried by a pre-booking offer.
type Bargain struct {
	Status            BargainStatus `json:"status"`
	UserAttempts      int32         `json:"user_attempts"`
	OfferedPrice      float64       `json:"offered_price"`
	AdminCounterPrice *float64      `json:"admin_counter_price,omitempty"`
	History           []PriceOffer  `json:"history,omitempty"`
	ExpiresAt         *time.Time    `json:"expires_at,omitempty"`
}

// Terminal reports whether no further transitions are legal.
func (bg *Bargain) Terminal() bool {
	switch bg.Status {
	case BargainStatusAccepted, BargainStatusRejected, BargainStatusExpired:
		return true
	}
	return false
}

// Locked reports whether the round cap has been reached: only accept and
// reject remain legal.
func (bg *Bargain) Locked() bool {
	return bg.Status == BargainStatusLocked
}

// LastPrice returns the most recent price on the table, falling back to the
// renter's standing offer when the history is empty.
func (bg *Bargain) LastPrice() float64 {
	if n := len(bg.History); n > 0 {
		return bg.History[n-1].Price
	}
	return bg.OfferedPrice
}
