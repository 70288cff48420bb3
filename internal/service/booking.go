package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"rentwheels-backend/internal/cache"
	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/lifecycle"
	"rentwheels-backend/internal/repository"
)

type bookingService struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	noteRepo    repository.NotificationRepository
	emailSvc    EmailService
	cache       *cache.Client
	clock       lifecycle.Clock

	// Collapses concurrent cache-miss fetches for the same booking into a
	// single database read. The live stream polls per connection, so a
	// popular booking would otherwise fan out one query per viewer.
	fetchGroup singleflight.Group
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	cacheClient *cache.Client,
	clock lifecycle.Clock,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		noteRepo:    noteRepo,
		emailSvc:    emailSvc,
		cache:       cacheClient,
		clock:       clock,
	}
}

func (s *bookingService) ListBookings(ctx context.Context, userID int32, isAdmin bool, status string, page, pageSize int32) ([]BookingView, int32, error) {
	filter := repository.BookingFilter{Page: page, PageSize: pageSize}
	if !isAdmin {
		filter.RenterID = &userID
	}
	if status != "" {
		st := domain.BookingStatus(status)
		filter.Status = &st
	}

	bookings, count, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	now := s.clock.Now()
	views := make([]BookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, *s.view(&bookings[i], now))
	}
	return views, count, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID int32, isAdmin bool, bookingID string) (*BookingView, error) {
	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.RenterID != userID {
		return nil, domain.ErrUnauthorized
	}
	return s.view(b, s.clock.Now()), nil
}

func (s *bookingService) ReturnBooking(ctx context.Context, userID int32, isAdmin bool, bookingID string) (*BookingView, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.RenterID != userID {
		return nil, domain.ErrUnauthorized
	}
	return s.settle(ctx, b)
}

func (s *bookingService) CompleteBooking(ctx context.Context, adminID int32, bookingID string) (*BookingView, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, b)
}

// settle writes the authoritative settlement snapshot and completes the
// trip. The figures are frozen from the server clock at this instant; after
// this the booking is COMPLETED and every read passes the snapshot through.
func (s *bookingService) settle(ctx context.Context, b *domain.Booking) (*BookingView, error) {
	if b.IsCompleted() {
		return nil, domain.NewStaleStateError("booking", b.ID)
	}
	if !b.CanBeSettled() {
		return nil, domain.NewValidationError("booking", "cannot be settled in its current state")
	}

	now := s.clock.Now()
	stage := lifecycle.ResolveStage(b, now)
	st := lifecycle.ComputeSettlement(b, stage, now)

	pay := b.PaymentStatus
	if st.RemainingAmount == 0 {
		pay = domain.PaymentStatusFullyPaid
	}

	upd := repository.SettlementUpdate{
		LateHours:       st.LateHours,
		LateFee:         st.LateFee,
		RemainingAmount: st.RemainingAmount,
		ActualReturnAt:  &now,
		TripStatus:      domain.TripStatusCompleted,
		PaymentStatus:   pay,
	}
	if err := s.bookingRepo.Settle(ctx, b.ID, upd); err != nil {
		return nil, err
	}

	b.LateHours = st.LateHours
	b.LateFee = st.LateFee
	b.RemainingAmount = st.RemainingAmount
	b.ActualReturnAt = &now
	b.TripStatus = domain.TripStatusCompleted
	b.PaymentStatus = pay

	s.invalidate(ctx, b.ID)
	s.notifySettled(ctx, b, st)

	return s.view(b, now), nil
}

func (s *bookingService) notifySettled(ctx context.Context, b *domain.Booking, st lifecycle.Settlement) {
	notif := &domain.Notification{
		UserID:  b.RenterID,
		Title:   "Booking Completed",
		Message: fmt.Sprintf("Your booking %s has been settled. Remaining balance: %.2f", b.ID, lifecycle.Round2(st.RemainingAmount)),
		Attributes: map[string]string{
			"type":       "BOOKING_SETTLED",
			"booking_id": b.ID,
		},
	}
	_ = s.noteRepo.Create(ctx, notif)

	renter, err := s.userRepo.GetByID(ctx, b.RenterID)
	if err == nil {
		_ = s.emailSvc.SendReturnConfirmation(ctx, renter.Email, renter.Name, b.ID,
			lifecycle.Round2(st.LateFee), lifecycle.Round2(st.RemainingAmount))
	}
}

// fetch reads a booking through the snapshot cache, hitting the database at
// most once per key across concurrent callers.
func (s *bookingService) fetch(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if s.cache != nil {
		var cached domain.Booking
		if err := s.cache.GetJSON(ctx, cache.BookingKey(bookingID), &cached); err == nil {
			return &cached, nil
		}
	}

	v, err, _ := s.fetchGroup.Do(bookingID, func() (interface{}, error) {
		b, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			_ = s.cache.SetJSON(ctx, cache.BookingKey(bookingID), b, s.cache.SnapshotTTL())
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Booking), nil
}

func (s *bookingService) invalidate(ctx context.Context, bookingID string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cache.BookingKey(bookingID))
	}
}

func (s *bookingService) view(b *domain.Booking, now time.Time) *BookingView {
	stage := lifecycle.ResolveStage(b, now)
	return &BookingView{
		Booking:    *b,
		Stage:      stage,
		Settlement: lifecycle.ComputeSettlement(b, stage, now).Rounded(),
		ServerTime: now,
	}
}
