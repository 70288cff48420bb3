package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, car_id, renter_id, pickup_at, drop_at, grace_period_hours, actual_return_at,
	final_amount, advance_paid, full_payment_amount, damage_cost, hourly_late_rate, late_fee_discount_percent,
	refund_amount, refund_status, late_hours, late_fee, remaining_amount,
	booking_status, trip_status, payment_status,
	bargain_status, bargain_user_attempts, bargain_offered_price, bargain_admin_counter_price,
	bargain_history, bargain_expires_at, created_on, updated_on`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	history, err := json.Marshal(b.Bargain.History)
	if err != nil {
		return fmt.Errorf("marshal bargain history: %w", err)
	}
	query := `INSERT INTO bookings (id, car_id, renter_id, pickup_at, drop_at, grace_period_hours,
	          final_amount, advance_paid, damage_cost, hourly_late_rate, late_fee_discount_percent,
	          booking_status, trip_status, payment_status,
	          bargain_status, bargain_user_attempts, bargain_offered_price, bargain_history, bargain_expires_at,
	          created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.CarID, b.RenterID, b.PickupAt, b.DropAt, b.GracePeriodHours,
		b.FinalAmount, b.AdvancePaid, b.DamageCost, b.HourlyLateRate, b.LateFeeDiscountPercent,
		b.BookingStatus, b.TripStatus, b.PaymentStatus,
		b.Bargain.Status, b.Bargain.UserAttempts, b.Bargain.OfferedPrice, history, b.Bargain.ExpiresAt,
		now, now)
	return err
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, int32, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	argIdx := 1
	if filter.RenterID != nil {
		query += fmt.Sprintf(" AND renter_id = $%d", argIdx)
		args = append(args, *filter.RenterID)
		argIdx++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND booking_status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) UpdateBargain(ctx context.Context, bookingID string, expected domain.BargainStatus, bg *domain.Bargain) error {
	history, err := json.Marshal(bg.History)
	if err != nil {
		return fmt.Errorf("marshal bargain history: %w", err)
	}
	query := `UPDATE bookings
	          SET bargain_status=$1, bargain_user_attempts=$2, bargain_offered_price=$3,
	              bargain_admin_counter_price=$4, bargain_history=$5, bargain_expires_at=$6, updated_on=$7
	          WHERE id=$8 AND bargain_status=$9`
	res, err := r.db.ExecContext(ctx, query,
		bg.Status, bg.UserAttempts, bg.OfferedPrice, bg.AdminCounterPrice, history, bg.ExpiresAt,
		time.Now(), bookingID, expected)
	if err != nil {
		return err
	}
	return requireRow(res, "booking", bookingID)
}

func (r *bookingRepository) AcceptBargain(ctx context.Context, bookingID string, expected domain.BargainStatus, bg *domain.Bargain, finalAmount float64) error {
	history, err := json.Marshal(bg.History)
	if err != nil {
		return fmt.Errorf("marshal bargain history: %w", err)
	}
	// Guarding on the pre-transition status makes the final_amount write
	// single-shot: a second accept finds bargain_status already ACCEPTED
	// and matches zero rows.
	query := `UPDATE bookings
	          SET bargain_status=$1, bargain_history=$2, final_amount=$3, updated_on=$4
	          WHERE id=$5 AND bargain_status=$6`
	res, err := r.db.ExecContext(ctx, query,
		domain.BargainStatusAccepted, history, finalAmount, time.Now(), bookingID, expected)
	if err != nil {
		return err
	}
	return requireRow(res, "booking", bookingID)
}

func (r *bookingRepository) Settle(ctx context.Context, bookingID string, upd repository.SettlementUpdate) error {
	query := `UPDATE bookings
	          SET late_hours=$1, late_fee=$2, remaining_amount=$3, actual_return_at=$4,
	              trip_status=$5, payment_status=$6, updated_on=$7
	          WHERE id=$8 AND trip_status <> $9`
	res, err := r.db.ExecContext(ctx, query,
		upd.LateHours, upd.LateFee, upd.RemainingAmount, upd.ActualReturnAt,
		upd.TripStatus, upd.PaymentStatus, time.Now(), bookingID, domain.TripStatusCompleted)
	if err != nil {
		return err
	}
	return requireRow(res, "booking", bookingID)
}

func (r *bookingRepository) UpdateSettlementSnapshot(ctx context.Context, bookingID string, lateHours, lateFee, remaining float64) error {
	query := `UPDATE bookings
	          SET late_hours=$1, late_fee=$2, remaining_amount=$3, updated_on=$4
	          WHERE id=$5 AND trip_status <> $6`
	_, err := r.db.ExecContext(ctx, query, lateHours, lateFee, remaining, time.Now(), bookingID, domain.TripStatusCompleted)
	return err
}

func (r *bookingRepository) ListOverdueCandidates(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE booking_status = $1
	            AND trip_status <> $2
	            AND payment_status IN ($3, $4)
	            AND drop_at IS NOT NULL
	            AND drop_at + make_interval(secs => COALESCE(grace_period_hours, $5) * 3600) < $6`
	rows, err := r.db.QueryContext(ctx, query,
		domain.BookingStatusConfirmed, domain.TripStatusCompleted,
		domain.PaymentStatusAdvancePaid, domain.PaymentStatusFullyPaid,
		domain.DefaultGracePeriodHours, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepository) ListWithLiveBargains(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE bargain_status IN ($1, $2, $3)
	            AND bargain_expires_at IS NOT NULL
	            AND bargain_expires_at <= $4`
	rows, err := r.db.QueryContext(ctx, query,
		domain.BargainStatusUserOffered, domain.BargainStatusAdminCountered, domain.BargainStatusLocked, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b            domain.Booking
		dropAt       sql.NullTime
		grace        sql.NullFloat64
		returnAt     sql.NullTime
		fullPayment  sql.NullFloat64
		refundStatus sql.NullString
		counterPrice sql.NullFloat64
		history      []byte
		expiresAt    sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.CarID, &b.RenterID, &b.PickupAt, &dropAt, &grace, &returnAt,
		&b.FinalAmount, &b.AdvancePaid, &fullPayment, &b.DamageCost, &b.HourlyLateRate, &b.LateFeeDiscountPercent,
		&b.RefundAmount, &refundStatus, &b.LateHours, &b.LateFee, &b.RemainingAmount,
		&b.BookingStatus, &b.TripStatus, &b.PaymentStatus,
		&b.Bargain.Status, &b.Bargain.UserAttempts, &b.Bargain.OfferedPrice, &counterPrice,
		&history, &expiresAt, &b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	if dropAt.Valid {
		t := dropAt.Time
		b.DropAt = &t
	}
	if grace.Valid {
		b.GracePeriodHours = grace.Float64
	} else {
		b.GracePeriodHours = domain.DefaultGracePeriodHours
	}
	if returnAt.Valid {
		t := returnAt.Time
		b.ActualReturnAt = &t
	}
	if fullPayment.Valid {
		v := fullPayment.Float64
		b.FullPaymentAmount = &v
	}
	if refundStatus.Valid {
		s := refundStatus.String
		b.RefundStatus = &s
	}
	if counterPrice.Valid {
		v := counterPrice.Float64
		b.Bargain.AdminCounterPrice = &v
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &b.Bargain.History); err != nil {
			return nil, fmt.Errorf("unmarshal bargain history: %w", err)
		}
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		b.Bargain.ExpiresAt = &t
	}
	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// requireRow converts a zero-row conditional update into a stale-state error.
func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewStaleStateError(entity, id)
	}
	return nil
}
