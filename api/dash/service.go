package dash

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"TmhnaDash/internal/config"
	"TmhnaDash/internal/logger"
	"TmhnaDash/internal/serviceiface"
)

// DashService serves the dashboard over HTTP.
type DashService struct {
	config map[string]interface{}
	server *Server
	http   *http.Server
}

func NewDashService(cfg map[string]interface{}, deps Deps) serviceiface.Service {
	return &DashService{config: cfg, server: NewServer(deps)}
}

func (s *DashService) Name() string {
	return "dash"
}

// Addr is the listen address: DASH_ADDR, then the addr config key.
func (s *DashService) Addr() string {
	if v := os.Getenv("DASH_ADDR"); v != "" {
		return v
	}
	if v, ok := s.config["addr"].(string); ok && v != "" {
		return v
	}
	return config.DefaultDashAddr
}

func (s *DashService) Server() *Server { return s.server }

func (s *DashService) Start() error {
	s.http = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError("dash", "Start", "listen", s.http.Addr, err)
		}
	}()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Dashboard started on " + s.http.Addr)
	}
	return nil
}

func (s *DashService) Stop() error {
	if s.server.events != nil {
		s.server.events.Stop()
	}
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
