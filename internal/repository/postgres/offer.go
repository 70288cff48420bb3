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

type offerRepository struct {
	db *sql.DB
}

func NewOfferRepository(db *sql.DB) repository.OfferRepository {
	return &offerRepository{db: db}
}

const offerColumns = `id, car_id, user_id, message, listed_price,
	bargain_status, bargain_user_attempts, bargain_offered_price, bargain_admin_counter_price,
	bargain_history, bargain_expires_at, created_on, updated_on`

func (r *offerRepository) Create(ctx context.Context, o *domain.Offer) error {
	history, err := json.Marshal(o.Bargain.History)
	if err != nil {
		return fmt.Errorf("marshal bargain history: %w", err)
	}
	query := `INSERT INTO offers (id, car_id, user_id, message, listed_price,
	          bargain_status, bargain_user_attempts, bargain_offered_price, bargain_history, bargain_expires_at,
	          created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		o.ID, o.CarID, o.UserID, o.Message, o.ListedPrice,
		o.Bargain.Status, o.Bargain.UserAttempts, o.Bargain.OfferedPrice, history, o.Bargain.ExpiresAt,
		now, now)
	return err
}

func (r *offerRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	o, err := scanOffer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *offerRepository) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Offer, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM offers WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + offerColumns + ` FROM offers WHERE user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, *o)
	}
	return offers, count, rows.Err()
}

func (r *offerRepository) UpdateBargain(ctx context.Context, offerID string, expected domain.BargainStatus, bg *domain.Bargain) error {
	history, err := json.Marshal(bg.History)
	if err != nil {
		return fmt.Errorf("marshal bargain history: %w", err)
	}
	query := `UPDATE offers
	          SET bargain_status=$1, bargain_user_attempts=$2, bargain_offered_price=$3,
	              bargain_admin_counter_price=$4, bargain_history=$5, bargain_expires_at=$6, updated_on=$7
	          WHERE id=$8 AND bargain_status=$9`
	res, err := r.db.ExecContext(ctx, query,
		bg.Status, bg.UserAttempts, bg.OfferedPrice, bg.AdminCounterPrice, history, bg.ExpiresAt,
		time.Now(), offerID, expected)
	if err != nil {
		return err
	}
	return requireRow(res, "offer", offerID)
}

func (r *offerRepository) ListWithLiveBargains(ctx context.Context, now time.Time) ([]domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers
	          WHERE bargain_status IN ($1, $2, $3)
	            AND bargain_expires_at IS NOT NULL
	            AND bargain_expires_at <= $4`
	rows, err := r.db.QueryContext(ctx, query,
		domain.BargainStatusUserOffered, domain.BargainStatusAdminCountered, domain.BargainStatusLocked, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

func scanOffer(row rowScanner) (*domain.Offer, error) {
	var (
		o            domain.Offer
		counterPrice sql.NullFloat64
		history      []byte
		expiresAt    sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.CarID, &o.UserID, &o.Message, &o.ListedPrice,
		&o.Bargain.Status, &o.Bargain.UserAttempts, &o.Bargain.OfferedPrice, &counterPrice,
		&history, &expiresAt, &o.CreatedOn, &o.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	if counterPrice.Valid {
		v := counterPrice.Float64
		o.Bargain.AdminCounterPrice = &v
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &o.Bargain.History); err != nil {
			return nil, fmt.Errorf("unmarshal bargain history: %w", err)
		}
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		o.Bargain.ExpiresAt = &t
	}
	return &o, nil
}
