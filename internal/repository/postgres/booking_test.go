package postgres

import (
	"context"
	"testing"
	"time"

	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestBookingRepository_UpdateBargain(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	bg := &domain.Bargain{
		Status:       domain.BargainStatusUserOffered,
		UserAttempts: 2,
		OfferedPrice: 650,
		History: []domain.PriceOffer{
			{Actor: domain.ActorUser, Price: 650, At: time.Now()},
		},
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(bg.Status, bg.UserAttempts, bg.OfferedPrice, bg.AdminCounterPrice, sqlmock.AnyArg(), bg.ExpiresAt, sqlmock.AnyArg(), "bk-1", domain.BargainStatusAdminCountered).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateBargain(ctx, "bk-1", domain.BargainStatusAdminCountered, bg)
		assert.NoError(t, err)
	})

	t.Run("StaleState", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(bg.Status, bg.UserAttempts, bg.OfferedPrice, bg.AdminCounterPrice, sqlmock.AnyArg(), bg.ExpiresAt, sqlmock.AnyArg(), "bk-1", domain.BargainStatusAdminCountered).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateBargain(ctx, "bk-1", domain.BargainStatusAdminCountered, bg)
		assert.True(t, domain.IsStaleState(err))
	})
}

func TestBookingRepository_AcceptBargain(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	bg := &domain.Bargain{Status: domain.BargainStatusAccepted}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BargainStatusAccepted, sqlmock.AnyArg(), 660.0, sqlmock.AnyArg(), "bk-1", domain.BargainStatusLocked).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AcceptBargain(ctx, "bk-1", domain.BargainStatusLocked, bg, 660.0)
		assert.NoError(t, err)
	})

	// A retried accept finds the row already ACCEPTED and matches nothing,
	// so final_amount is written at most once.
	t.Run("AlreadyAccepted", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BargainStatusAccepted, sqlmock.AnyArg(), 660.0, sqlmock.AnyArg(), "bk-1", domain.BargainStatusLocked).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AcceptBargain(ctx, "bk-1", domain.BargainStatusLocked, bg, 660.0)
		assert.True(t, domain.IsStaleState(err))
	})
}

func TestBookingRepository_Settle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	returnAt := time.Now()
	upd := repository.SettlementUpdate{
		LateHours:       0.5,
		LateFee:         50,
		RemainingAmount: 750,
		ActualReturnAt:  &returnAt,
		TripStatus:      domain.TripStatusCompleted,
		PaymentStatus:   domain.PaymentStatusFullyPaid,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(upd.LateHours, upd.LateFee, upd.RemainingAmount, upd.ActualReturnAt, upd.TripStatus, upd.PaymentStatus, sqlmock.AnyArg(), "bk-1", domain.TripStatusCompleted).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Settle(ctx, "bk-1", upd)
		assert.NoError(t, err)
	})

	t.Run("AlreadyCompleted", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(upd.LateHours, upd.LateFee, upd.RemainingAmount, upd.ActualReturnAt, upd.TripStatus, upd.PaymentStatus, sqlmock.AnyArg(), "bk-1", domain.TripStatusCompleted).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Settle(ctx, "bk-1", upd)
		assert.True(t, domain.IsStaleState(err))
	})
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		dropAt := now.Add(4 * time.Hour)
		rows := sqlmock.NewRows([]string{
			"id", "car_id", "renter_id", "pickup_at", "drop_at", "grace_period_hours", "actual_return_at",
			"final_amount", "advance_paid", "full_payment_amount", "damage_cost", "hourly_late_rate", "late_fee_discount_percent",
			"refund_amount", "refund_status", "late_hours", "late_fee", "remaining_amount",
			"booking_status", "trip_status", "payment_status",
			"bargain_status", "bargain_user_attempts", "bargain_offered_price", "bargain_admin_counter_price",
			"bargain_history", "bargain_expires_at", "created_on", "updated_on",
		}).AddRow(
			"bk-1", "car-1", 3, now, dropAt, nil, nil,
			1000.0, 300.0, nil, 0.0, 100.0, 0.0,
			0.0, nil, 0.0, 0.0, 0.0,
			"CONFIRMED", "ACTIVE", "ADVANCE_PAID",
			"NONE", 0, 0.0, nil,
			nil, nil, now, now,
		)

		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs("bk-1").
			WillReturnRows(rows)

		b, err := repo.GetByID(ctx, "bk-1")
		assert.NoError(t, err)
		assert.NotNil(t, b)
		assert.Equal(t, "bk-1", b.ID)
		// NULL grace period falls back to the default.
		assert.Equal(t, domain.DefaultGracePeriodHours, b.GracePeriodHours)
	})
}
