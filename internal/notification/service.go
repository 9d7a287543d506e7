package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"TmhnaDash/internal/config"
	"TmhnaDash/internal/logger"
)

// MappingRequest asks Corporate to add mappings blocking a brand's submission.
type MappingRequest struct {
	ID            string    `json:"id"`
	Brand         string    `json:"brand"`
	Role          string    `json:"role"`
	SessionID     string    `json:"session_id"`
	BlockingCount int       `json:"blocking_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type Notifier interface {
	NotifyMappingRequest(ctx context.Context, req MappingRequest) error
	PendingRequests(ctx context.Context, limit int) ([]MappingRequest, error)
}

const createTable = `CREATE TABLE IF NOT EXISTS mapping_requests (
	id UUID PRIMARY KEY,
	brand TEXT NOT NULL,
	requested_by_role TEXT NOT NULL,
	session_id TEXT NOT NULL,
	blocking_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NotificationService keeps recent mapping requests in memory and, when a
// DSN is configured, in Postgres.
type NotificationService struct {
	mu            sync.Mutex
	notifications []MappingRequest
	dsn           string
	pool          *pgxpool.Pool
}

func NewNotificationService(cfg map[string]interface{}) *NotificationService {
	dsn, _ := cfg["dsn"].(string)
	if dsn == "" {
		dsn = config.PostgresDSN()
	}
	return &NotificationService{
		notifications: make([]MappingRequest, 0),
		dsn:           dsn,
	}
}

// NewWithPool is used when the caller already owns a pool.
func NewWithPool(pool *pgxpool.Pool) *NotificationService {
	return &NotificationService{notifications: make([]MappingRequest, 0), pool: pool}
}

func (ns *NotificationService) Name() string { return "notification" }

func (ns *NotificationService) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if ns.pool == nil && ns.dsn != "" {
		pool, err := pgxpool.New(ctx, ns.dsn)
		if err != nil {
			return fmt.Errorf("notification pool: %w", err)
		}
		ns.pool = pool
	}
	if ns.pool == nil {
		logger.WithFields(logrus.Fields{"service": ns.Name()}).Info("notification store disabled; mapping requests are kept in memory")
		return nil
	}
	return ns.Migrate(ctx)
}

// Migrate creates the mapping_requests table.
func (ns *NotificationService) Migrate(ctx context.Context) error {
	if ns.pool == nil {
		return errors.New("notification store has no pool")
	}
	if _, err := ns.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create mapping_requests: %w", err)
	}
	return nil
}

func (ns *NotificationService) Stop() error {
	if ns.pool != nil {
		ns.pool.Close()
	}
	return nil
}

func (ns *NotificationService) NotifyMappingRequest(ctx context.Context, req MappingRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	if ns.pool != nil {
		_, err := ns.pool.Exec(ctx,
			`INSERT INTO mapping_requests (id, brand, requested_by_role, session_id, blocking_count, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			req.ID, req.Brand, req.Role, req.SessionID, req.BlockingCount, req.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert mapping request: %w", err)
		}
	}
	ns.AddNotification(req)
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("mapping request from %s for %s (%d blocking)", req.Role, req.Brand, req.BlockingCount))
	}
	return nil
}

// PendingRequests returns the newest requests first.
func (ns *NotificationService) PendingRequests(ctx context.Context, limit int) ([]MappingRequest, error) {
	if limit <= 0 {
		limit = config.MappingRequestsShown
	}
	if ns.pool == nil {
		return ns.recent(limit), nil
	}
	rows, err := ns.pool.Query(ctx,
		`SELECT id::text, brand, requested_by_role, session_id, blocking_count, created_at
		   FROM mapping_requests ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MappingRequest
	for rows.Next() {
		var r MappingRequest
		if err := rows.Scan(&r.ID, &r.Brand, &r.Role, &r.SessionID, &r.BlockingCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AddNotification keeps req in memory, dropping the oldest beyond
// config.MappingRequestsKept.
func (ns *NotificationService) AddNotification(req MappingRequest) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.notifications = append(ns.notifications, req)
	if over := len(ns.notifications) - config.MappingRequestsKept; over > 0 {
		ns.notifications = append(ns.notifications[:0:0], ns.notifications[over:]...)
	}
}

// recent returns up to limit in-memory requests, newest first.
func (ns *NotificationService) recent(limit int) []MappingRequest {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	n := len(ns.notifications)
	if limit > n || limit <= 0 {
		limit = n
	}
	out := make([]MappingRequest, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, ns.notifications[i])
	}
	return out
}

func (ns *NotificationService) Ping(ctx context.Context) error {
	if ns.pool == nil {
		return nil
	}
	return ns.pool.Ping(ctx)
}
