package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"concierge/models"
	"concierge/utils"

	"go.uber.org/zap"
)

// WebhookNotifier posts appointment requests to a configured webhook URL.
type WebhookNotifier struct {
	URL        string
	HTTPClient *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type webhookPayload struct {
	Message     string             `json:"message"`
	Timestamp   string             `json:"timestamp"`
	UserDetails models.UserDetails `json:"userDetails"`
}

// NotifyAppointmentRequest delivers the structured request to the webhook.
// An empty URL disables escalation; the caller treats any returned error
// as log-only.
func (n *WebhookNotifier) NotifyAppointmentRequest(ctx context.Context, details models.UserDetails) error {
	logger := utils.GetLogger()

	if n.URL == "" {
		logger.Debug("escalation webhook not configured, skipping")
		return nil
	}

	payload := webhookPayload{
		Message:     "Request to make an appointment",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		UserDetails: details,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	logger.Info("escalation webhook delivered", zap.String("email", details.Email))
	return nil
}
