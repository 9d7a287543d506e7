package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"TmhnaDash/internal/logger"
	"TmhnaDash/internal/serviceiface"
)

// Service runs the workspace janitor and owns the optional Redis client.
type Service struct {
	manager  *Manager
	rdb      *redis.Client
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewSessionService(cfg map[string]interface{}) *Service {
	ttl := time.Duration(toInt(cfg["ttl_minutes"])) * time.Minute
	interval := time.Duration(toInt(cfg["cleanup_minutes"])) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	addr, _ := cfg["redis_addr"].(string)
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		addr = v
	}

	var store Store
	var rdb *redis.Client
	if addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		store = NewRedisStore(rdb)
	}
	return &Service{
		manager:  NewManager(ttl, store),
		rdb:      rdb,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Service) Name() string { return "session" }

func (s *Service) Manager() *Manager { return s.manager }

func (s *Service) Start() error {
	if s.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}
	s.wg.Add(1)
	go s.janitor()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Session service started")
	}
	return nil
}

func (s *Service) Stop() error {
	close(s.stopCh)
	s.wg.Wait()
	if s.rdb != nil {
		return s.rdb.Close()
	}
	return nil
}

func (s *Service) janitor() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if n := s.manager.CleanupExpiredSessions(); n > 0 {
				logger.WithFields(logrus.Fields{"removed": n}).Info("expired workspaces removed")
			}
		}
	}
}

var _ serviceiface.Service = (*Service)(nil)

func toInt(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		var parsed int
		if _, err := fmt.Sscanf(t, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return 0
}

// Ping checks Redis when the workspace store is Redis-backed.
func (s *Service) Ping(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}
