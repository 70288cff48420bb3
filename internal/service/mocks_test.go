package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/repository"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*domain.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingRepo) List(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	var bookings []domain.Booking
	if v := args.Get(0); v != nil {
		bookings = v.([]domain.Booking)
	}
	return bookings, args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingRepo) UpdateBargain(ctx context.Context, bookingID string, expected domain.BargainStatus, bg *domain.Bargain) error {
	args := m.Called(ctx, bookingID, expected, bg)
	return args.Error(0)
}

func (m *MockBookingRepo) AcceptBargain(ctx context.Context, bookingID string, expected domain.BargainStatus, bg *domain.Bargain, finalAmount float64) error {
	args := m.Called(ctx, bookingID, expected, bg, finalAmount)
	return args.Error(0)
}

func (m *MockBookingRepo) Settle(ctx context.Context, bookingID string, upd repository.SettlementUpdate) error {
	args := m.Called(ctx, bookingID, upd)
	return args.Error(0)
}

func (m *MockBookingRepo) UpdateSettlementSnapshot(ctx context.Context, bookingID string, lateHours, lateFee, remaining float64) error {
	args := m.Called(ctx, bookingID, lateHours, lateFee, remaining)
	return args.Error(0)
}

func (m *MockBookingRepo) ListOverdueCandidates(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, now)
	var bookings []domain.Booking
	if v := args.Get(0); v != nil {
		bookings = v.([]domain.Booking)
	}
	return bookings, args.Error(1)
}

func (m *MockBookingRepo) ListWithLiveBargains(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, now)
	var bookings []domain.Booking
	if v := args.Get(0); v != nil {
		bookings = v.([]domain.Booking)
	}
	return bookings, args.Error(1)
}

type MockOfferRepo struct {
	mock.Mock
}

func (m *MockOfferRepo) Create(ctx context.Context, o *domain.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferRepo) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*domain.Offer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOfferRepo) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Offer, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	var offers []domain.Offer
	if v := args.Get(0); v != nil {
		offers = v.([]domain.Offer)
	}
	return offers, args.Get(1).(int32), args.Error(2)
}

func (m *MockOfferRepo) UpdateBargain(ctx context.Context, offerID string, expected domain.BargainStatus, bg *domain.Bargain) error {
	args := m.Called(ctx, offerID, expected, bg)
	return args.Error(0)
}

func (m *MockOfferRepo) ListWithLiveBargains(ctx context.Context, now time.Time) ([]domain.Offer, error) {
	args := m.Called(ctx, now)
	var offers []domain.Offer
	if v := args.Get(0); v != nil {
		offers = v.([]domain.Offer)
	}
	return offers, args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepo) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	var notifications []domain.Notification
	if v := args.Get(0); v != nil {
		notifications = v.([]domain.Notification)
	}
	return notifications, args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendOverdueReminder(ctx context.Context, email, name, bookingID string, lateHours, lateFee float64) error {
	args := m.Called(ctx, email, name, bookingID, lateHours, lateFee)
	return args.Error(0)
}

func (m *MockEmailService) SendReturnConfirmation(ctx context.Context, email, name, bookingID string, lateFee, remaining float64) error {
	args := m.Called(ctx, email, name, bookingID, lateFee, remaining)
	return args.Error(0)
}

func (m *MockEmailService) SendBargainNotification(ctx context.Context, email, name, subject, body string) error {
	args := m.Called(ctx, email, name, subject, body)
	return args.Error(0)
}
