package scheduling

import (
	"context"
	"fmt"

	"concierge/models"
	"concierge/utils"

	"go.uber.org/zap"
)

// Book commits an appointment for the requested slot. The slot may have
// been filled between search and booking, so it is re-checked first; a
// busy candidate advances by one slot duration and the check repeats, up
// to the configured number of advances. The calendar backend gives no
// transactional guarantee, so two simultaneous bookings can still race;
// the guard narrows that gap with a best-effort reservation record.
func (se *DefaultSchedulingEngine) Book(ctx context.Context, req models.BookingRequest) (*models.ConfirmedBooking, error) {
	logger := utils.GetLogger()

	maxRetries := se.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	slot := req.Slot
	for attempt := 0; attempt <= maxRetries; attempt++ {
		free, err := se.CheckSlot(ctx, slot)
		if err != nil {
			return nil, err
		}
		if !free {
			logger.Info("slot taken, advancing to next candidate",
				zap.Time("start", slot.Start), zap.Int("attempt", attempt))
			slot = slot.Next()
			continue
		}

		if se.Guard != nil {
			reserved, guardErr := se.Guard.Reserve(ctx, slot)
			switch {
			case guardErr != nil:
				// Guard is best-effort; a broken Redis must not block bookings.
				logger.Warn("booking guard unavailable, proceeding unguarded",
					zap.Time("start", slot.Start), zap.Error(guardErr))
			case !reserved:
				logger.Info("slot reserved by a concurrent booking, advancing",
					zap.Time("start", slot.Start))
				slot = slot.Next()
				continue
			}
		}

		attemptReq := req
		attemptReq.Slot = slot
		link, err := se.Backend.InsertEvent(ctx, se.ResourceID, attemptReq)
		if err != nil {
			// Not retried: a retry after an ambiguous failure could
			// create a duplicate event.
			if se.Guard != nil {
				if relErr := se.Guard.Release(ctx, slot); relErr != nil {
					logger.Warn("failed to release booking guard", zap.Error(relErr))
				}
			}
			return nil, NewUnavailableBackendError("event insert failed", err)
		}

		logger.Info("appointment booked",
			zap.Time("start", slot.Start),
			zap.String("attendee", attemptReq.AttendeeEmail),
			zap.String("link", link),
		)
		return &models.ConfirmedBooking{Slot: slot, ExternalLink: link}, nil
	}

	return nil, NewNoSlotAvailableError(
		fmt.Sprintf("no free slot within %d advances of %s", maxRetries, req.Slot.Start.Format("2006-01-02 15:04")))
}
