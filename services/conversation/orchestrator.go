package conversation

import (
	"context"
	"fmt"
	"time"

	"concierge/models"
	"concierge/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Converse runs one exchange end to end: thread, message, run, tool
// episodes, final answer. Every failure along the way is logged and
// converted into the fixed fallback message; callers never see internal
// error detail.
func (s *DefaultConversationService) Converse(ctx context.Context, question string, details models.UserDetails) (string, error) {
	logger := utils.GetLogger().With(zap.String("exchangeID", uuid.New().String()))

	answer, err := s.converse(ctx, logger, question, details)
	if err != nil {
		logger.Error("exchange did not complete", zap.Error(err))
		return FallbackMessage, nil
	}
	return answer, nil
}

func (s *DefaultConversationService) converse(ctx context.Context, logger *zap.Logger, question string, details models.UserDetails) (string, error) {
	threadID, err := s.Backend.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	logger = logger.With(zap.String("threadID", threadID))

	if err := s.Backend.PostMessage(ctx, threadID, "user", question); err != nil {
		return "", fmt.Errorf("failed to post message: %w", err)
	}

	runID, err := s.Backend.StartRun(ctx, threadID, s.AssistantID)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	logger.Debug("run started", zap.String("runID", runID))

	status, err := s.superviseRun(ctx, logger, threadID, runID, details)
	if err != nil {
		return "", err
	}
	if status != models.RunCompleted {
		logger.Warn("run ended without completing", zap.String("status", string(status)))
		return FallbackMessage, nil
	}

	return s.finalMessage(ctx, threadID, runID)
}

// superviseRun drives the run state machine by polling. Transitions:
// queued/in_progress keep polling; requires_action answers the pending
// tool calls in one batch and keeps polling; any terminal status ends the
// loop. The polling budget bounds the loop, surfacing ErrRunTimedOut
// instead of waiting forever.
func (s *DefaultConversationService) superviseRun(ctx context.Context, logger *zap.Logger, threadID, runID string, details models.UserDetails) (models.RunStatus, error) {
	interval := s.pollInterval()

	for poll := 0; poll < s.maxPolls(); poll++ {
		status, calls, err := s.Backend.GetRun(ctx, threadID, runID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch run status: %w", err)
		}

		switch status {
		case models.RunQueued, models.RunInProgress:
			// Still working; nothing to do until the next poll.
		case models.RunRequiresAction:
			// One episode per poll cycle. Tool calls are never cached
			// across episodes; each one is answered fresh.
			if err := s.answerToolCalls(ctx, logger, threadID, runID, calls, details); err != nil {
				return "", err
			}
		default:
			if status.Terminal() {
				return status, nil
			}
			logger.Warn("unexpected run status", zap.String("status", string(status)))
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}

	return "", ErrRunTimedOut
}

// answerToolCalls dispatches every pending tool call and submits the
// outputs as one batch. A partial batch would strand the run on the
// assistant side, so a missing call list is an error, not a no-op.
func (s *DefaultConversationService) answerToolCalls(ctx context.Context, logger *zap.Logger, threadID, runID string, calls []models.ToolCall, details models.UserDetails) error {
	if len(calls) == 0 {
		return fmt.Errorf("run %s requires action but reported no tool calls", runID)
	}

	outputs := make([]models.ToolOutput, 0, len(calls))
	for _, call := range calls {
		logger.Debug("dispatching tool call",
			zap.String("toolCallID", call.ID), zap.String("function", call.FunctionName))
		outputs = append(outputs, s.Dispatcher.Dispatch(ctx, call, details))
	}

	if err := s.Backend.SubmitToolOutputs(ctx, threadID, runID, outputs); err != nil {
		return fmt.Errorf("failed to submit tool outputs: %w", err)
	}
	return nil
}

// finalMessage extracts the most recent assistant-authored message for
// this run.
func (s *DefaultConversationService) finalMessage(ctx context.Context, threadID, runID string) (string, error) {
	messages, err := s.Backend.ListMessages(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("failed to list messages: %w", err)
	}
	for _, m := range messages {
		if m.RunID == runID && m.Role == "assistant" {
			return m.Text, nil
		}
	}
	return "", fmt.Errorf("no assistant message found for run %s", runID)
}
