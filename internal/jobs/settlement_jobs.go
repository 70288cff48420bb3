package jobs

import (
	"context"
	"fmt"

	"rentwheels-backend/internal/domain"
	"rentwheels-backend/internal/lifecycle"
	"rentwheels-backend/internal/logger"
)

// RefreshOverdueSettlements recomputes and stores the settlement snapshot of
// every overdue booking. Clients derive live figures themselves; this keeps
// the persisted snapshot from drifting too far behind for consumers that
// only read stored rows (exports, offline admin views).
func (jr *JobRunner) RefreshOverdueSettlements() {
	jr.runWithRecovery("RefreshOverdueSettlements", func() {
		ctx := context.Background()
		now := jr.clock.Now()

		bookings, err := jr.store.BookingRepository.ListOverdueCandidates(ctx, now)
		if err != nil {
			logger.Error("Failed to list overdue bookings", "error", err)
			return
		}

		refreshed := 0
		for i := range bookings {
			b := &bookings[i]
			stage := lifecycle.ResolveStage(b, now)
			if stage != domain.StageOverdue {
				continue
			}
			st := lifecycle.ComputeSettlement(b, stage, now)
			if err := jr.store.BookingRepository.UpdateSettlementSnapshot(ctx, b.ID, st.LateHours, st.LateFee, st.RemainingAmount); err != nil {
				logger.Error("Failed to refresh settlement snapshot",
					"booking_id", b.ID,
					"error", err)
				continue
			}
			jr.invalidateBooking(ctx, b.ID)
			refreshed++
		}

		logger.Info("Overdue settlement snapshots refreshed",
			"candidates", len(bookings),
			"refreshed", refreshed)
	})
}

// SendOverdueReminders emails every renter holding an overdue vehicle.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		now := jr.clock.Now()

		bookings, err := jr.store.BookingRepository.ListOverdueCandidates(ctx, now)
		if err != nil {
			logger.Error("Failed to list overdue bookings", "error", err)
			return
		}

		sent := 0
		for i := range bookings {
			b := &bookings[i]
			stage := lifecycle.ResolveStage(b, now)
			if stage != domain.StageOverdue {
				continue
			}
			st := lifecycle.ComputeSettlement(b, stage, now)

			renter, err := jr.store.UserRepository.GetByID(ctx, b.RenterID)
			if err != nil {
				logger.Error("Failed to load renter for overdue reminder",
					"booking_id", b.ID,
					"renter_id", b.RenterID,
					"error", err)
				continue
			}

			if err := jr.services.Email.SendOverdueReminder(ctx, renter.Email, renter.Name, b.ID,
				st.DisplayLateHours, lifecycle.Round2(st.LateFee)); err != nil {
				logger.Error("Failed to send overdue reminder",
					"booking_id", b.ID,
					"error", err)
				continue
			}

			notif := &domain.Notification{
				UserID:  b.RenterID,
				Title:   "Rental Overdue",
				Message: fmt.Sprintf("Your rental is %.1f hours past its return deadline. Late fees so far: %.2f", st.DisplayLateHours, lifecycle.Round2(st.LateFee)),
				Attributes: map[string]string{
					"type":       "OVERDUE_REMINDER",
					"booking_id": b.ID,
				},
			}
			_ = jr.store.NotificationRepository.Create(ctx, notif)
			sent++
		}

		logger.Info("Overdue reminders sent", "count", sent)
	})
}
