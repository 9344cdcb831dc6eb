package repo

import (
	"context"
	"time"

	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/store"
	"gcsbridge/internal/services/connector/domain"
)

// auditTable holds one row per terminal task outcome. Expected ClickHouse DDL:
//
//	CREATE TABLE gcs_task_audit (
//	    ts         DateTime64(3),
//	    run_id     String,
//	    event_id   String,
//	    task_id    String,
//	    kind       LowCardinality(String),
//	    outcome    LowCardinality(String),
//	    error      String,
//	    elapsed_ms Int64
//	) ENGINE = MergeTree ORDER BY (ts, run_id)
const auditTable = "gcs_task_audit"

var auditColumns = []string{"ts", "run_id", "event_id", "task_id", "kind", "outcome", "error", "elapsed_ms"}

// Audit writes terminal task outcomes to ClickHouse. Rows are telemetry
// only and never read back by the connector.
type Audit struct {
	ch  store.Clickhouse
	now func() time.Time
}

// NewAudit returns a ClickHouse audit sink
func NewAudit(ch store.Clickhouse) *Audit {
	return &Audit{ch: ch, now: time.Now}
}

// RecordTask implements domain.AuditPort
func (a *Audit) RecordTask(ctx context.Context, runID string, res domain.TaskResult) error {
	rows := [][]any{{
		a.now().UTC(),
		runID,
		res.EventID,
		res.TaskID,
		res.Kind,
		res.Outcome.String(),
		res.Err,
		res.Elapsed.Milliseconds(),
	}}
	if err := a.ch.Insert(ctx, auditTable, auditColumns, rows); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "audit insert failed")
	}
	return nil
}
