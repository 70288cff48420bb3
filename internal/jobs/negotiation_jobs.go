package jobs

import (
	"context"

	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/logger"
	"rentwheels-backend/internal/negotiation"
)

// ExpireStaleBargains sweeps live negotiations past their expiry and moves
// them to EXPIRED. Updates are guarded on the status each record was read
// with; a bargain that transitions concurrently is simply skipped and picked
// up on the next sweep.
func (jr *JobRunner) ExpireStaleBargains() {
	jr.runWithRecovery("ExpireStaleBargains", func() {
		ctx := context.Background()
		now := jr.clock.Now()

		expiredBookings := 0
		bookings, err := jr.store.BookingRepository.ListWithLiveBargains(ctx, now)
		if err != nil {
			logger.Error("Failed to list bookings with live bargains", "error", err)
		} else {
			for i := range bookings {
				b := &bookings[i]
				expected := b.Bargain.Status
				if !negotiation.Expire(&b.Bargain, now) {
					continue
				}
				if err := jr.store.BookingRepository.UpdateBargain(ctx, b.ID, expected, &b.Bargain); err != nil {
					if domain.IsStaleState(err) {
						continue
					}
					logger.Error("Failed to expire booking bargain",
						"booking_id", b.ID,
						"error", err)
					continue
				}
				jr.invalidateBooking(ctx, b.ID)
				expiredBookings++
			}
		}

		expiredOffers := 0
		offers, err := jr.store.OfferRepository.ListWithLiveBargains(ctx, now)
		if err != nil {
			logger.Error("Failed to list offers with live bargains", "error", err)
		} else {
			for i := range offers {
				o := &offers[i]
				expected := o.Bargain.Status
				if !negotiation.Expire(&o.Bargain, now) {
					continue
				}
				if err := jr.store.OfferRepository.UpdateBargain(ctx, o.ID, expected, &o.Bargain); err != nil {
					if domain.IsStaleState(err) {
						continue
					}
					logger.Error("Failed to expire offer bargain",
						"offer_id", o.ID,
						"error", err)
					continue
				}
				expiredOffers++
			}
		}

		logger.Info("Stale bargains expired",
			"bookings", expiredBookings,
			"offers", expiredOffers)
	})
}
