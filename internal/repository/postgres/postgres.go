package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"

	"rentwheels-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.OfferRepository
	repository.NotificationRepository
	repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookingRepository:      NewBookingRepository(db),
		OfferRepository:        NewOfferRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		UserRepository:         NewUserRepository(db),
	}
}
