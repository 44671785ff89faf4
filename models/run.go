package models

// RunStatus captures the assistant-side execution state of one run.
type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunRequiresAction RunStatus = "requires_action"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
	RunExpired        RunStatus = "expired"
	RunCancelled      RunStatus = "cancelled"
)

// Terminal reports whether the run can make no further progress.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunExpired, RunCancelled:
		return true
	}
	return false
}

// ToolCall is an assistant-issued request to invoke an external capability
// mid-run. It only exists while the run is in requires_action.
type ToolCall struct {
	ID           string `json:"id"`
	FunctionName string `json:"functionName"`
	Arguments    string `json:"arguments"`
}

// ToolOutput answers one ToolCall. Every pending call must be answered
// before the run may resume.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// ThreadMessage is one message on an assistant conversation thread.
type ThreadMessage struct {
	ID    string `json:"id"`
	RunID string `json:"runId"`
	Role  string `json:"role"`
	Text  string `json:"text"`
}
