package audit

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"TmhnaDash/internal/config"
	"TmhnaDash/internal/logger"
)

// Service opens the audit database when DB_* variables are set and falls
// back to log-only recording otherwise.
type Service struct {
	dsn      string
	db       *sql.DB
	recorder Recorder
}

func NewAuditService(cfg map[string]interface{}) *Service {
	dsn, _ := cfg["dsn"].(string)
	if dsn == "" {
		dsn = config.PostgresDSN()
	}
	return &Service{dsn: dsn, recorder: LogRecorder{}}
}

func (s *Service) Name() string { return "audit" }

func (s *Service) Start() error {
	if s.dsn == "" {
		logger.WithFields(logrus.Fields{"service": s.Name()}).Info("audit database disabled; recording to log only")
		return nil
	}
	db, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}
	rec := NewSQLRecorder(db)
	if err := rec.Migrate(ctx); err != nil {
		db.Close()
		return err
	}
	s.db = db
	s.recorder = rec
	return nil
}

func (s *Service) Stop() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Service) Recorder() Recorder { return s.recorder }

// Record forwards to the recorder chosen at Start, so the service can be
// handed out before it starts.
func (s *Service) Record(ctx context.Context, e Entry) error {
	return s.recorder.Record(ctx, e)
}

func (s *Service) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}
