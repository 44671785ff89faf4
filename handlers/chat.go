package handlers

import (
	"context"
	"net/http"
	"time"

	"concierge/models"
	"concierge/services/conversation"
	"concierge/services/notification"
	"concierge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler serves the conversational booking endpoint.
type ChatHandler struct {
	Conversation conversation.ConversationService
	Notifier     notification.NotificationService
	Zone         *time.Location
}

func NewChatHandler(convSvc conversation.ConversationService, notifier notification.NotificationService, zone *time.Location) *ChatHandler {
	return &ChatHandler{
		Conversation: convSvc,
		Notifier:     notifier,
		Zone:         zone,
	}
}

// HandleChat accepts a free-text question, extracts and validates the
// structured appointment request, and hands the exchange to the
// conversation service.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	logger := getLogger(c)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	details, err := ExtractUserDetails(req.Question, h.Zone)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid appointment details", err.Error())
		return
	}
	logger.Info("chat request received",
		zap.String("name", details.Name),
		zap.String("email", details.Email),
		zap.Bool("hasSchedule", details.Requested != nil),
	)

	// Escalate to the human follow-up channel off the request path.
	if h.Notifier != nil && details.HasContact() {
		go func(d models.UserDetails) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.Notifier.NotifyAppointmentRequest(ctx, d); err != nil {
				utils.GetLogger().Warn("escalation webhook failed", zap.Error(err))
			}
		}(details)
	}

	answer, err := h.Conversation.Converse(c.Request.Context(), req.Question, details)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to process request", err.Error())
		return
	}
	c.JSON(http.StatusOK, models.ChatResponse{Response: answer})
}
