package scheduling

import (
	"context"

	"concierge/models"
	"concierge/utils"

	"go.uber.org/zap"
)

// CheckSlot queries the backend for a window tightly covering the
// candidate and reports free when no busy interval intersects it. The
// calendar may have changed by the time the caller acts on the answer;
// Book re-checks before committing.
func (se *DefaultSchedulingEngine) CheckSlot(ctx context.Context, slot models.TimeSlot) (bool, error) {
	logger := utils.GetLogger()

	busy, err := se.Backend.QueryBusy(ctx, models.WindowFor(slot, se.ResourceID))
	if err != nil {
		return false, NewUnavailableBackendError("availability query failed", err)
	}

	for _, interval := range busy {
		if slot.Overlaps(interval) {
			logger.Debug("slot occupied",
				zap.Time("start", slot.Start),
				zap.Time("busyStart", interval.Start),
				zap.Time("busyEnd", interval.End),
			)
			return false, nil
		}
	}
	return true, nil
}
