package lifecycle

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rentwheels-backend/internal/domain"
)

func overdueBooking() *domain.Booking {
	b := confirmedBooking()
	b.FinalAmount = 1000
	b.AdvancePaid = 300
	b.HourlyLateRate = 100
	return b
}

func TestComputeSettlement_PassThroughWhenNotOverdue(t *testing.T) {
	b := overdueBooking()
	b.LateHours = 2.5
	b.LateFee = 250
	b.RemainingAmount = 950

	now := b.PickupAt.Add(time.Hour)
	s := ComputeSettlement(b, domain.StageActive, now)

	assert.False(t, s.Live)
	assert.Equal(t, 2.5, s.LateHours)
	assert.Equal(t, 250.0, s.LateFee)
	assert.Equal(t, 950.0, s.RemainingAmount)
}

func TestComputeSettlement_LiveOverdue(t *testing.T) {
	b := overdueBooking()

	t.Run("ScenarioB_HalfHourLate", func(t *testing.T) {
		// Deadline is 19:00; half an hour past it.
		now := time.Date(2024, 1, 1, 19, 30, 0, 0, time.UTC)
		s := ComputeSettlement(b, domain.StageOverdue, now)

		assert.True(t, s.Live)
		assert.InDelta(t, 0.5, s.LateHours, 1e-9)
		assert.Equal(t, 0.5, s.DisplayLateHours)
		assert.InDelta(t, 50.0, s.LateFee, 1e-9)
	})

	t.Run("ScenarioC_RemainingAmount", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 19, 30, 0, 0, time.UTC)
		s := ComputeSettlement(b, domain.StageOverdue, now)
		// 1000 + 50 + 0 - 300 = 750
		assert.InDelta(t, 750.0, s.RemainingAmount, 1e-9)
	})

	t.Run("SubscriptionDiscount", func(t *testing.T) {
		c := overdueBooking()
		c.LateFeeDiscountPercent = 20
		now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC) // 1h late
		s := ComputeSettlement(c, domain.StageOverdue, now)
		assert.InDelta(t, 80.0, s.LateFee, 1e-9)
	})

	t.Run("ScenarioE_LongOverdueScalesLinearly", func(t *testing.T) {
		c := overdueBooking()
		now := c.DropAt.Add(100 * time.Hour)
		s := ComputeSettlement(c, domain.StageOverdue, now)
		assert.InDelta(t, 99.0, s.LateHours, 1e-9) // 100h past drop minus 1h grace
		assert.InDelta(t, 9900.0, s.LateFee, 1e-9) // no cap
	})
}

func TestComputeSettlement_Continuity(t *testing.T) {
	b := overdueBooking()
	deadline, ok := ReturnDeadline(b.DropAt, b.GracePeriodHours)
	assert.True(t, ok)

	// At the exact deadline the live figures equal the stored snapshot of a
	// booking that was never late: zero hours, zero fee.
	atDeadline := ComputeSettlement(b, domain.StageOverdue, deadline)
	assert.Equal(t, 0.0, atDeadline.LateHours)
	assert.Equal(t, 0.0, atDeadline.LateFee)

	stored := ComputeSettlement(b, domain.StageActive, deadline)
	assert.Equal(t, stored.LateFee, atDeadline.LateFee)

	// Fee is non-decreasing as time advances past the deadline.
	prev := -1.0
	for m := 0; m <= 600; m += 13 {
		s := ComputeSettlement(b, domain.StageOverdue, deadline.Add(time.Duration(m)*time.Minute))
		assert.GreaterOrEqual(t, s.LateFee, prev)
		prev = s.LateFee
	}
}

func TestComputeSettlement_NonNegativity(t *testing.T) {
	b := overdueBooking()
	b.FinalAmount = 200
	b.AdvancePaid = 1000 // overpaid
	now := b.DropAt.Add(2 * time.Hour)

	s := ComputeSettlement(b, domain.StageOverdue, now)
	assert.GreaterOrEqual(t, s.RemainingAmount, 0.0)
	assert.Equal(t, 0.0, s.RemainingAmount)
}

func TestComputeSettlement_NonFiniteInputsCoerced(t *testing.T) {
	b := overdueBooking()
	b.HourlyLateRate = math.NaN()
	b.DamageCost = math.Inf(1)
	now := b.DropAt.Add(5 * time.Hour)

	s := ComputeSettlement(b, domain.StageOverdue, now)
	assert.False(t, math.IsNaN(s.LateFee))
	assert.False(t, math.IsInf(s.RemainingAmount, 0))
	assert.Equal(t, 0.0, s.LateFee)
	assert.Equal(t, 0.0, s.DamageCost)
}

func TestComputeSettlement_NoDeadlineNeverAccrues(t *testing.T) {
	b := overdueBooking()
	b.DropAt = nil
	s := ComputeSettlement(b, domain.StageOverdue, b.PickupAt.Add(500*time.Hour))
	assert.Equal(t, 0.0, s.LateHours)
	assert.Equal(t, 0.0, s.LateFee)
	assert.Nil(t, s.Deadline)
}

func TestSettlementRounded(t *testing.T) {
	s := Settlement{LateFee: 33.3333333, RemainingAmount: 749.995, DamageCost: 10.004}
	r := s.Rounded()
	assert.Equal(t, 33.33, r.LateFee)
	assert.Equal(t, 750.0, r.RemainingAmount)
	assert.Equal(t, 10.0, r.DamageCost)
	// Original untouched: rounding happens only at the boundary.
	assert.Equal(t, 33.3333333, s.LateFee)
}

func TestRoundingHelpers(t *testing.T) {
	assert.Equal(t, 0.5, RoundHours(0.50001))
	assert.Equal(t, 1.3, RoundHours(1.25001))
	assert.Equal(t, 12.35, Round2(12.345001))
	assert.Equal(t, 0.0, Round2(math.NaN()))
	assert.Equal(t, 0.0, RoundHours(math.Inf(1)))
}
