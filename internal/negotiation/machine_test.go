package negotiation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentwheels-backend/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func fresh() *domain.Bargain {
	return &domain.Bargain{Status: domain.BargainStatusNone}
}

func TestOpen(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		assert.Equal(t, domain.BargainStatusUserOffered, bg.Status)
		assert.Equal(t, int32(1), bg.UserAttempts)
		assert.Equal(t, 500.0, bg.OfferedPrice)
		assert.Len(t, bg.History, 1)
		assert.Equal(t, domain.ActorUser, bg.History[0].Actor)
	})

	t.Run("OnlyLegalFromNone", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		err := Open(bg, 400, t0)
		assert.True(t, domain.IsInvalidTransition(err))
	})

	t.Run("InvalidPriceMutatesNothing", func(t *testing.T) {
		for _, p := range []float64{0, -10, math.NaN(), math.Inf(1)} {
			bg := fresh()
			err := Open(bg, p, t0)
			assert.True(t, domain.IsValidation(err), "price %v", p)
			assert.Equal(t, domain.BargainStatusNone, bg.Status)
			assert.Empty(t, bg.History)
			assert.Zero(t, bg.UserAttempts)
		}
	})
}

func TestCounterRounds_ScenarioD(t *testing.T) {
	bg := fresh()
	require.NoError(t, Open(bg, 500, t0))                        // round 1
	require.NoError(t, AdminCounter(bg, 700, t0.Add(time.Minute)))
	require.NoError(t, UserCounter(bg, 650, t0.Add(2*time.Minute))) // round 2
	assert.Equal(t, int32(2), bg.UserAttempts)
	assert.Equal(t, domain.BargainStatusUserOffered, bg.Status)

	require.NoError(t, AdminCounter(bg, 680, t0.Add(3*time.Minute)))
	require.NoError(t, UserCounter(bg, 660, t0.Add(4*time.Minute))) // round 3 locks
	assert.Equal(t, int32(3), bg.UserAttempts)
	assert.Equal(t, domain.BargainStatusLocked, bg.Status)

	// Further counters are rejected regardless of actor.
	err := UserCounter(bg, 655, t0.Add(5*time.Minute))
	assert.True(t, domain.IsInvalidTransition(err))
	err = AdminCounter(bg, 670, t0.Add(5*time.Minute))
	assert.True(t, domain.IsInvalidTransition(err))

	// Only accept/reject remain; the renter accepts the locked bargain.
	price, err := Accept(bg, domain.ActorUser, t0.Add(6*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 660.0, price)
	assert.Equal(t, domain.BargainStatusAccepted, bg.Status)
}

func TestCounterGuards(t *testing.T) {
	t.Run("AdminCounterNeedsUserOffer", func(t *testing.T) {
		bg := fresh()
		err := AdminCounter(bg, 700, t0)
		assert.True(t, domain.IsInvalidTransition(err))
	})

	t.Run("UserCounterNeedsAdminCounter", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		err := UserCounter(bg, 450, t0)
		assert.True(t, domain.IsInvalidTransition(err))
	})

	t.Run("InvalidCounterPriceKeepsState", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		require.NoError(t, AdminCounter(bg, 700, t0))
		before := *bg
		err := UserCounter(bg, -1, t0)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, before.Status, bg.Status)
		assert.Equal(t, before.UserAttempts, bg.UserAttempts)
		assert.Len(t, bg.History, 2)
	})
}

func TestAccept(t *testing.T) {
	t.Run("AdminAcceptsUserOffer", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		price, err := Accept(bg, domain.ActorAdmin, t0)
		require.NoError(t, err)
		assert.Equal(t, 500.0, price)
	})

	t.Run("UserAcceptsAdminCounter", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		require.NoError(t, AdminCounter(bg, 700, t0))
		price, err := Accept(bg, domain.ActorUser, t0)
		require.NoError(t, err)
		assert.Equal(t, 700.0, price)
	})

	t.Run("WrongActorRejected", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		_, err := Accept(bg, domain.ActorUser, t0)
		assert.True(t, domain.IsInvalidTransition(err))
		assert.Equal(t, domain.BargainStatusUserOffered, bg.Status)
	})

	t.Run("Idempotent", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		price, err := Accept(bg, domain.ActorAdmin, t0)
		require.NoError(t, err)

		histLen := len(bg.History)
		again, err := Accept(bg, domain.ActorAdmin, t0.Add(time.Second))
		assert.ErrorIs(t, err, domain.ErrAlreadyAccepted)
		assert.Equal(t, price, again)
		assert.Len(t, bg.History, histLen)
		assert.Equal(t, domain.BargainStatusAccepted, bg.Status)
	})

	t.Run("NotLegalFromNone", func(t *testing.T) {
		bg := fresh()
		_, err := Accept(bg, domain.ActorAdmin, t0)
		assert.True(t, domain.IsInvalidTransition(err))
	})
}

func TestReject(t *testing.T) {
	t.Run("FromAnyLiveState", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		require.NoError(t, Reject(bg, t0))
		assert.Equal(t, domain.BargainStatusRejected, bg.Status)
	})

	t.Run("FromLocked", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		require.NoError(t, AdminCounter(bg, 700, t0))
		require.NoError(t, UserCounter(bg, 650, t0))
		require.NoError(t, AdminCounter(bg, 680, t0))
		require.NoError(t, UserCounter(bg, 660, t0))
		require.Equal(t, domain.BargainStatusLocked, bg.Status)
		require.NoError(t, Reject(bg, t0))
		assert.Equal(t, domain.BargainStatusRejected, bg.Status)
	})

	t.Run("NotFromTerminal", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		require.NoError(t, Reject(bg, t0))
		err := Reject(bg, t0)
		assert.True(t, domain.IsInvalidTransition(err))
	})
}

func TestExpire(t *testing.T) {
	expiry := t0.Add(time.Hour)

	t.Run("PastExpiry", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		bg.ExpiresAt = &expiry
		assert.False(t, Expire(bg, expiry.Add(-time.Second)))
		assert.True(t, Expire(bg, expiry))
		assert.Equal(t, domain.BargainStatusExpired, bg.Status)
	})

	t.Run("TerminalLeftAlone", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		_, err := Accept(bg, domain.ActorAdmin, t0)
		require.NoError(t, err)
		bg.ExpiresAt = &expiry
		assert.False(t, Expire(bg, expiry.Add(time.Hour)))
		assert.Equal(t, domain.BargainStatusAccepted, bg.Status)
	})

	t.Run("NoExpirySet", func(t *testing.T) {
		bg := fresh()
		require.NoError(t, Open(bg, 500, t0))
		assert.False(t, Expire(bg, t0.Add(1000*time.Hour)))
	})
}
