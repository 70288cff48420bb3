package lifecycle

import (
	"time"

	"rentwheels-backend/internal/domain"
)

// ResolveStage maps a booking snapshot and a current time to its lifecycle
// stage. The decision order is fixed and first-match-wins:
//
//  1. cancelled/rejected booking        -> CANCELLED
//  2. trip completed                    -> COMPLETED
//  3. advance payment not confirmed     -> PENDING_PAYMENT
//  4. now before pickup                 -> SCHEDULED
//  5. now within [pickup, deadline]     -> ACTIVE
//  6. now past deadline                 -> OVERDUE
//
// Both interval bounds of rule 5 are inclusive: at now == pickup the booking
// is already ACTIVE, and at now == deadline it is still ACTIVE (late fees at
// that instant are zero either way, so settlement stays continuous).
//
// A booking with no drop-off time has no deadline and can never be OVERDUE;
// it resolves on pickup alone.
func ResolveStage(b *domain.Booking, now time.Time) domain.Stage {
	if b.IsCancelled() {
		return domain.StageCancelled
	}
	if b.IsCompleted() {
		return domain.StageCompleted
	}
	if !b.AdvanceConfirmed() {
		return domain.StagePendingPayment
	}
	if now.Before(b.PickupAt) {
		return domain.StageScheduled
	}
	deadline, ok := ReturnDeadline(b.DropAt, b.GracePeriodHours)
	if !ok || !now.After(deadline) {
		return domain.StageActive
	}
	return domain.StageOverdue
}
