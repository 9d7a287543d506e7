// Package audit records every dashboard mutation.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"TmhnaDash/internal/logger"
)

type Entry struct {
	Action    string
	Role      string
	SessionID string
	Target    string
	Outcome   string
	Message   string
	Refreshed []string
	At        time.Time
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// LogRecorder writes entries to the audit log only.
type LogRecorder struct{}

func (LogRecorder) Record(_ context.Context, e Entry) error {
	fields := logrus.Fields{
		"action":    e.Action,
		"role":      e.Role,
		"session":   e.SessionID,
		"target":    e.Target,
		"outcome":   e.Outcome,
		"refreshed": e.Refreshed,
	}
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAuditFields(e.Message, fields)
		return nil
	}
	logger.WithFields(fields).Info(e.Message)
	return nil
}

const createTable = `CREATE TABLE IF NOT EXISTS dashboard_audit (
	id BIGSERIAL PRIMARY KEY,
	action TEXT NOT NULL,
	role TEXT NOT NULL,
	session_id TEXT NOT NULL,
	target TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	refreshed_panes TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SQLRecorder stores entries in Postgres and mirrors them to the audit log.
type SQLRecorder struct {
	db *sql.DB
}

func NewSQLRecorder(db *sql.DB) *SQLRecorder {
	return &SQLRecorder{db: db}
}

func (r *SQLRecorder) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create dashboard_audit: %w", err)
	}
	return nil
}

func (r *SQLRecorder) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_ = LogRecorder{}.Record(ctx, e)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dashboard_audit (action, role, session_id, target, outcome, message, refreshed_panes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.Action, e.Role, e.SessionID, e.Target, e.Outcome, e.Message, pq.Array(e.Refreshed), e.At)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (r *SQLRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT action, role, session_id, target, outcome, message, refreshed_panes, created_at
		   FROM dashboard_audit ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Action, &e.Role, &e.SessionID, &e.Target, &e.Outcome, &e.Message, pq.Array(&e.Refreshed), &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
