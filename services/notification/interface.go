// Package notification escalates appointment requests to a human
// follow-up channel over a webhook. Delivery is best-effort: failures are
// logged and never fed back into the conversation.
package notification

import (
	"context"

	"concierge/models"
)

// NotificationService defines the human-escalation capability.
type NotificationService interface {
	NotifyAppointmentRequest(ctx context.Context, details models.UserDetails) error
}
