// Package domain holds the connector's types and ports
package domain

import "time"

// Token is an access token with its expiry instant
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Usable reports whether the token is still valid with margin to spare at now
func (t Token) Usable(now time.Time, margin time.Duration) bool {
	return t.Value != "" && now.Add(margin).Before(t.ExpiresAt)
}

// Event is one raw journal entry
type Event struct {
	ID   string
	Body []byte
}

// EventPage is a fetched journal page plus its continuation cursor
type EventPage struct {
	Events []Event
	Next   string
}

// Asset is one translatable file of a task, with its storage key already
// resolved for the task's source locale. ObjectKey is "" when the asset
// carries no matching normalized URL.
type Asset struct {
	Name      string
	ObjectKey string
}

// Outcome is the terminal state of one processed event
type Outcome int

const (
	// OutcomeCompleted means every asset was translated and completed
	OutcomeCompleted Outcome = iota

	// OutcomeIgnored means the event was not actionable
	OutcomeIgnored

	// OutcomeFailed means processing hit a permanent error and was skipped
	OutcomeFailed
)

// String implements fmt.Stringer
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "COMPLETED"
	case OutcomeIgnored:
		return "IGNORED"
	default:
		return "FAILED"
	}
}

// TaskResult is the terminal record of one event within a tick
type TaskResult struct {
	EventID string
	TaskID  string
	Kind    string
	Outcome Outcome
	Err     string
	Elapsed time.Duration
}

// TickReport summarizes one poll cycle
type TickReport struct {
	RunID          string
	Started        time.Time
	Duration       time.Duration
	Events         int
	Completed      int
	Ignored        int
	Failed         int
	CursorAdvanced bool
	Results        []TaskResult
}

// Status is the connector's observable state, served by the ops endpoint
type Status struct {
	Running        bool       `json:"running"`
	Cursor         string     `json:"cursor"`
	LastTick       TickReport `json:"last_tick"`
	TotalTicks     int64      `json:"total_ticks"`
	TotalEvents    int64      `json:"total_events"`
	TotalCompleted int64      `json:"total_completed"`
	TotalIgnored   int64      `json:"total_ignored"`
	TotalFailed    int64      `json:"total_failed"`
	TotalTickErrs  int64      `json:"total_tick_errors"`
}
