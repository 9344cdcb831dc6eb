package service

import (
	"sync"

	"gcsbridge/internal/services/connector/domain"
)

// statusTracker accumulates run counters for the ops surface
type statusTracker struct {
	mu sync.Mutex
	st domain.Status
}

func (t *statusTracker) setRunning(v bool) {
	t.mu.Lock()
	t.st.Running = v
	t.mu.Unlock()
}

func (t *statusTracker) setCursor(cursor string) {
	t.mu.Lock()
	t.st.Cursor = cursor
	t.mu.Unlock()
}

func (t *statusTracker) record(r domain.TickReport) {
	t.mu.Lock()
	t.st.LastTick = r
	t.st.TotalTicks++
	t.st.TotalEvents += int64(r.Events)
	t.st.TotalCompleted += int64(r.Completed)
	t.st.TotalIgnored += int64(r.Ignored)
	t.st.TotalFailed += int64(r.Failed)
	t.mu.Unlock()
}

func (t *statusTracker) tickErr() {
	t.mu.Lock()
	t.st.TotalTickErrs++
	t.mu.Unlock()
}

func (t *statusTracker) snapshot() domain.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}
