package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentwheels-backend/internal/cache"
	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/lifecycle"
	"rentwheels-backend/internal/negotiation"
	"rentwheels-backend/internal/repository"
)

type negotiationService struct {
	bookingRepo repository.BookingRepository
	offerRepo   repository.OfferRepository
	userRepo    repository.UserRepository
	noteRepo    repository.NotificationRepository
	emailSvc    EmailService
	cache       *cache.Client
	clock       lifecycle.Clock
	expiry      time.Duration
}

func NewNegotiationService(
	bookingRepo repository.BookingRepository,
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	cacheClient *cache.Client,
	clock lifecycle.Clock,
	bargainExpiry time.Duration,
) NegotiationService {
	return &negotiationService{
		bookingRepo: bookingRepo,
		offerRepo:   offerRepo,
		userRepo:    userRepo,
		noteRepo:    noteRepo,
		emailSvc:    emailSvc,
		cache:       cacheClient,
		clock:       clock,
		expiry:      bargainExpiry,
	}
}

// RespondBookingBargain applies one negotiation transition to a booking's
// embedded bargain. The update is guarded on the bargain status the booking
// was read with, so two concurrent responses cannot both land: the loser
// gets a stale-state error and must refetch.
func (s *negotiationService) RespondBookingBargain(ctx context.Context, actorID int32, isAdmin bool, bookingID string, action BargainAction, price float64, message string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.RenterID != actorID {
		return nil, domain.ErrUnauthorized
	}
	if b.IsCancelled() || b.IsCompleted() {
		return nil, domain.NewValidationError("booking", "negotiation is closed for this booking")
	}

	expected := b.Bargain.Status
	now := s.clock.Now()
	actor := domain.ActorUser
	if isAdmin {
		actor = domain.ActorAdmin
	}

	switch action {
	case BargainActionOffer:
		if isAdmin {
			return nil, domain.NewValidationError("action", "only the renter can open a negotiation")
		}
		if err := negotiation.Open(&b.Bargain, price, now); err != nil {
			return nil, err
		}
		s.stamp(&b.Bargain, message, now)

	case BargainActionQuote:
		if isAdmin {
			err = negotiation.AdminCounter(&b.Bargain, price, now)
		} else {
			err = negotiation.UserCounter(&b.Bargain, price, now)
		}
		if err != nil {
			return nil, err
		}
		s.stamp(&b.Bargain, message, now)

	case BargainActionAccept:
		agreed, err := negotiation.Accept(&b.Bargain, actor, now)
		if errors.Is(err, domain.ErrAlreadyAccepted) {
			// Retried accept: the price already settled, report success
			// without touching the row again.
			return b, nil
		}
		if err != nil {
			return nil, err
		}
		if err := s.bookingRepo.AcceptBargain(ctx, b.ID, expected, &b.Bargain, agreed); err != nil {
			return nil, err
		}
		b.FinalAmount = agreed
		s.invalidate(ctx, b.ID)
		s.notifyBargain(ctx, b, actor, fmt.Sprintf("Price of %.2f accepted for booking %s", agreed, b.ID))
		return b, nil

	case BargainActionReject:
		if err := negotiation.Reject(&b.Bargain, now); err != nil {
			return nil, err
		}

	default:
		return nil, domain.NewValidationError("action", "unknown bargain action")
	}

	if err := s.bookingRepo.UpdateBargain(ctx, b.ID, expected, &b.Bargain); err != nil {
		return nil, err
	}
	s.invalidate(ctx, b.ID)
	s.notifyBargain(ctx, b, actor, fmt.Sprintf("Negotiation on booking %s is now %s", b.ID, b.Bargain.Status))
	return b, nil
}

func (s *negotiationService) CreateOffer(ctx context.Context, userID int32, carID string, listedPrice, offerPrice float64, message string) (*domain.Offer, error) {
	if carID == "" {
		return nil, domain.NewValidationError("car_id", "is required")
	}

	now := s.clock.Now()
	o := &domain.Offer{
		ID:          uuid.NewString(),
		CarID:       carID,
		UserID:      userID,
		Message:     message,
		ListedPrice: listedPrice,
	}
	if err := negotiation.Open(&o.Bargain, offerPrice, now); err != nil {
		return nil, err
	}
	s.stamp(&o.Bargain, message, now)

	if err := s.offerRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *negotiationService) ListOffers(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Offer, int32, error) {
	return s.offerRepo.ListByUser(ctx, userID, page, pageSize)
}

func (s *negotiationService) RespondOffer(ctx context.Context, actorID int32, isAdmin bool, offerID string, action BargainAction, price float64, message string) (*domain.Offer, error) {
	o, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != actorID {
		return nil, domain.ErrUnauthorized
	}

	expected := o.Bargain.Status
	now := s.clock.Now()
	actor := domain.ActorUser
	if isAdmin {
		actor = domain.ActorAdmin
	}

	switch action {
	case BargainActionQuote:
		if isAdmin {
			err = negotiation.AdminCounter(&o.Bargain, price, now)
		} else {
			err = negotiation.UserCounter(&o.Bargain, price, now)
		}
		if err != nil {
			return nil, err
		}
		s.stamp(&o.Bargain, message, now)

	case BargainActionAccept:
		if _, err := negotiation.Accept(&o.Bargain, actor, now); err != nil {
			if errors.Is(err, domain.ErrAlreadyAccepted) {
				return o, nil
			}
			return nil, err
		}

	case BargainActionReject:
		if err := negotiation.Reject(&o.Bargain, now); err != nil {
			return nil, err
		}

	default:
		return nil, domain.NewValidationError("action", "unknown bargain action")
	}

	if err := s.offerRepo.UpdateBargain(ctx, o.ID, expected, &o.Bargain); err != nil {
		return nil, err
	}
	return o, nil
}

// stamp attaches the free-text message to the history entry the transition
// just appended and refreshes the negotiation expiry window.
func (s *negotiationService) stamp(bg *domain.Bargain, message string, now time.Time) {
	if message != "" && len(bg.History) > 0 {
		bg.History[len(bg.History)-1].Message = message
	}
	if s.expiry > 0 && !bg.Terminal() {
		t := now.Add(s.expiry)
		bg.ExpiresAt = &t
	}
}

func (s *negotiationService) invalidate(ctx context.Context, bookingID string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cache.BookingKey(bookingID))
	}
}

func (s *negotiationService) notifyBargain(ctx context.Context, b *domain.Booking, actor domain.Actor, message string) {
	// The renter is notified of admin moves; admin-side surfacing happens
	// through the admin booking list, so user moves only store a record.
	if actor == domain.ActorAdmin {
		notif := &domain.Notification{
			UserID:  b.RenterID,
			Title:   "Negotiation Update",
			Message: message,
			Attributes: map[string]string{
				"type":       "BARGAIN_UPDATE",
				"booking_id": b.ID,
			},
		}
		_ = s.noteRepo.Create(ctx, notif)

		renter, err := s.userRepo.GetByID(ctx, b.RenterID)
		if err == nil {
			_ = s.emailSvc.SendBargainNotification(ctx, renter.Email, renter.Name, "Negotiation Update", message)
		}
	}
}
