package conversation

import (
	"context"
	"errors"
	"time"

	"concierge/models"
)

// FallbackMessage is the single user-facing text for every run that ends
// without a completed answer. Internal failure detail never reaches the
// end user.
const FallbackMessage = "The assistant did not complete the request."

// ErrRunTimedOut reports that a run exhausted the polling budget without
// reaching a terminal state.
var ErrRunTimedOut = errors.New("assistant run timed out")

// AssistantBackend is the capability the orchestrator consumes from the
// assistant provider. The production implementation lives in the assistant
// package.
type AssistantBackend interface {
	CreateThread(ctx context.Context) (string, error)
	PostMessage(ctx context.Context, threadID, role, text string) error
	StartRun(ctx context.Context, threadID, assistantID string) (string, error)
	GetRun(ctx context.Context, threadID, runID string) (models.RunStatus, []models.ToolCall, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []models.ToolOutput) error
	ListMessages(ctx context.Context, threadID string) ([]models.ThreadMessage, error)
}

// ConversationService drives one conversational exchange to completion.
type ConversationService interface {
	Converse(ctx context.Context, question string, details models.UserDetails) (string, error)
}

// DefaultConversationService implements ConversationService against an
// AssistantBackend. Each exchange owns its run state; instances share
// nothing mutable, so concurrent requests do not block each other.
type DefaultConversationService struct {
	Backend     AssistantBackend
	Dispatcher  ToolDispatcher
	AssistantID string

	PollInterval time.Duration // delay between run status polls
	MaxPolls     int           // polling budget before ErrRunTimedOut
}

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 60
)

func (s *DefaultConversationService) pollInterval() time.Duration {
	if s.PollInterval > 0 {
		return s.PollInterval
	}
	return defaultPollInterval
}

func (s *DefaultConversationService) maxPolls() int {
	if s.MaxPolls > 0 {
		return s.MaxPolls
	}
	return defaultMaxPolls
}
