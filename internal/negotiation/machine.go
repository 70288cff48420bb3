// Package negotiation implements the bounded price-negotiation state machine
// shared by booking-embedded bargains and pre-booking offers. Transitions are
// pure functions over a Bargain: every guard is checked before any field is
// touched, so a rejected transition leaves the record byte-identical.
//
// The server is the authority on the round cap; this machine is the single
// implementation both the persisted path and any optimistic pre-validation
// run through.
package negotiation

import (
	"math"
	"time"

	"rentwheels-backend/internal/domain"
)

// Open starts a negotiation: NONE -> USER_OFFERED with one attempt consumed.
func Open(bg *domain.Bargain, price float64, now time.Time) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if bg.Status != domain.BargainStatusNone {
		return &domain.InvalidTransitionError{From: bg.Status, Action: "open"}
	}
	bg.Status = domain.BargainStatusUserOffered
	bg.UserAttempts = 1
	bg.OfferedPrice = price
	bg.History = append(bg.History, domain.PriceOffer{Actor: domain.ActorUser, Price: price, At: now})
	return nil
}

// AdminCounter answers a standing user offer with a counter price.
func AdminCounter(bg *domain.Bargain, price float64, now time.Time) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if bg.Status != domain.BargainStatusUserOffered {
		return &domain.InvalidTransitionError{From: bg.Status, Action: "counter"}
	}
	bg.Status = domain.BargainStatusAdminCountered
	bg.AdminCounterPrice = &price
	bg.History = append(bg.History, domain.PriceOffer{Actor: domain.ActorAdmin, Price: price, At: now})
	return nil
}

// UserCounter lets the renter respond to an admin counter. Attempts strictly
// increase per round; the third one locks the bargain so that only accept
// and reject remain legal.
func UserCounter(bg *domain.Bargain, price float64, now time.Time) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if bg.Status != domain.BargainStatusAdminCountered {
		return &domain.InvalidTransitionError{From: bg.Status, Action: "counter"}
	}
	if bg.UserAttempts >= domain.MaxBargainAttempts {
		return domain.ErrRoundLimitReached
	}
	bg.UserAttempts++
	bg.OfferedPrice = price
	bg.History = append(bg.History, domain.PriceOffer{Actor: domain.ActorUser, Price: price, At: now})
	if bg.UserAttempts >= domain.MaxBargainAttempts {
		bg.Status = domain.BargainStatusLocked
	} else {
		bg.Status = domain.BargainStatusUserOffered
	}
	return nil
}

// Accept settles the negotiation on the price currently on the table and
// returns it. The admin accepts a standing user offer; the renter accepts an
// admin counter or a locked bargain. Accepting an already-accepted bargain
// returns ErrAlreadyAccepted without touching price or history, so a retried
// accept can never settle twice.
func Accept(bg *domain.Bargain, actor domain.Actor, now time.Time) (float64, error) {
	if bg.Status == domain.BargainStatusAccepted {
		return bg.LastPrice(), domain.ErrAlreadyAccepted
	}
	switch bg.Status {
	case domain.BargainStatusUserOffered:
		if actor != domain.ActorAdmin {
			return 0, &domain.InvalidTransitionError{From: bg.Status, Action: "accept by " + string(actor)}
		}
	case domain.BargainStatusAdminCountered, domain.BargainStatusLocked:
		if actor != domain.ActorUser {
			return 0, &domain.InvalidTransitionError{From: bg.Status, Action: "accept by " + string(actor)}
		}
	default:
		return 0, &domain.InvalidTransitionError{From: bg.Status, Action: "accept"}
	}
	price := bg.LastPrice()
	bg.Status = domain.BargainStatusAccepted
	return price, nil
}

// Reject terminates the negotiation from any non-terminal state. No price is
// settled and nothing financial changes.
func Reject(bg *domain.Bargain, now time.Time) error {
	if bg.Terminal() {
		return &domain.InvalidTransitionError{From: bg.Status, Action: "reject"}
	}
	if bg.Status == domain.BargainStatusNone {
		return &domain.InvalidTransitionError{From: bg.Status, Action: "reject"}
	}
	bg.Status = domain.BargainStatusRejected
	return nil
}

// Expire applies the server-driven time-based expiry policy: any live
// negotiation past its expiry moves to EXPIRED. Terminal states are left
// alone so the job can sweep repeatedly.
func Expire(bg *domain.Bargain, now time.Time) bool {
	if bg.Terminal() || bg.Status == domain.BargainStatusNone {
		return false
	}
	if bg.ExpiresAt == nil || now.Before(*bg.ExpiresAt) {
		return false
	}
	bg.Status = domain.BargainStatusExpired
	return true
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return domain.NewValidationError("price", "must be a finite number")
	}
	if price <= 0 {
		return domain.NewValidationError("price", "must be greater than zero")
	}
	return nil
}
