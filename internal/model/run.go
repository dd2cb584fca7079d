package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// TokenUsage tracks extraction-backend token consumption across a run.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates usage from another TokenUsage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Total returns combined input and output tokens.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ItemFailure records a comment that could not be extracted.
type ItemFailure struct {
	CommentID string `json:"comment_id"`
	Reason    string `json:"reason"`
}

// RunSummary is the structured outcome of one pipeline invocation,
// consumed by the scheduler for logging and alerting.
type RunSummary struct {
	ThreadID        int64         `json:"thread_id"`
	ThreadTitle     string        `json:"thread_title,omitempty"`
	Fetched         int           `json:"fetched"`
	FilteredOut     int           `json:"filtered_out"`
	Extracted       int           `json:"extracted"`
	Failed          int           `json:"failed"`
	Persisted       int           `json:"persisted"`
	TokenUsage      TokenUsage    `json:"token_usage"`
	BudgetExhausted bool          `json:"budget_exhausted"`
	Failures        []ItemFailure `json:"failures,omitempty"`
	SnapshotPath    string        `json:"snapshot_path,omitempty"`
	DurationMS      int64         `json:"duration_ms"`
}

// Run represents one recorded pipeline invocation.
type Run struct {
	ID         string      `json:"id"`
	Status     RunStatus   `json:"status"`
	Summary    *RunSummary `json:"summary,omitempty"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}
