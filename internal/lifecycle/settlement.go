package lifecycle

import (
	"math"
	"time"

	"rentwheels-backend/internal/domain"
)

// Settlement is the derived financial picture of a booking at one instant.
// When Live is false, every figure is the server's stored snapshot passed
// through untouched; when Live is true they were recomputed from the clock.
type Settlement struct {
	Stage domain.Stage `json:"stage"`
	Live  bool         `json:"live"`

	// LateHours carries full precision for fee math; DisplayLateHours is
	// the 1-decimal rendering clients show.
	LateHours        float64 `json:"late_hours"`
	DisplayLateHours float64 `json:"display_late_hours"`

	LateFee         float64 `json:"late_fee"`
	DamageCost      float64 `json:"damage_cost"`
	RemainingAmount float64 `json:"remaining_amount"`

	Deadline *time.Time `json:"deadline,omitempty"`
}

// ComputeSettlement derives late hours, late fee and remaining amount for a
// booking at the given time.
//
// For every stage except OVERDUE the stored snapshot is authoritative and is
// returned unchanged: those are settled values and the client never
// re-derives them. For OVERDUE the figures are recomputed live so they tick
// alongside the countdown. At now == deadline the live computation yields
// zero late hours and zero fee, matching the stored snapshot exactly.
//
// Non-finite numeric inputs are coerced to zero instead of propagating NaN.
func ComputeSettlement(b *domain.Booking, stage domain.Stage, now time.Time) Settlement {
	s := Settlement{Stage: stage}
	if deadline, ok := ReturnDeadline(b.DropAt, b.GracePeriodHours); ok {
		d := deadline
		s.Deadline = &d
	}

	if stage != domain.StageOverdue {
		s.LateHours = finiteOrZero(b.LateHours)
		s.DisplayLateHours = RoundHours(s.LateHours)
		s.LateFee = finiteOrZero(b.LateFee)
		s.DamageCost = finiteOrZero(b.DamageCost)
		s.RemainingAmount = finiteOrZero(b.RemainingAmount)
		return s
	}

	s.Live = true
	var lateHours float64
	if s.Deadline != nil && now.After(*s.Deadline) {
		lateHours = now.Sub(*s.Deadline).Hours()
	}
	lateHours = finiteOrZero(lateHours)

	rate := finiteOrZero(b.HourlyLateRate)
	discount := finiteOrZero(b.LateFeeDiscountPercent)
	lateFee := lateHours * rate * (1 - discount/100)
	if lateFee < 0 || math.IsNaN(lateFee) || math.IsInf(lateFee, 0) {
		lateFee = 0
	}

	final := finiteOrZero(b.FinalAmount)
	advance := finiteOrZero(b.AdvancePaid)
	damage := finiteOrZero(b.DamageCost)
	refund := finiteOrZero(b.RefundAmount)

	remaining := final + lateFee + damage - advance - refund
	if remaining < 0 {
		remaining = 0
	}

	s.LateHours = lateHours
	s.DisplayLateHours = RoundHours(lateHours)
	s.LateFee = lateFee
	s.DamageCost = damage
	s.RemainingAmount = remaining
	return s
}

// Rounded returns a copy with all money fields rounded to 2 decimals. This
// is the presentation boundary; internal math stays full precision.
func (s Settlement) Rounded() Settlement {
	s.LateFee = Round2(s.LateFee)
	s.DamageCost = Round2(s.DamageCost)
	s.RemainingAmount = Round2(s.RemainingAmount)
	return s
}

// Round2 rounds a money amount to 2 decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// RoundHours rounds late hours to 1 decimal for display only.
func RoundHours(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
