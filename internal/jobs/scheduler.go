package jobs

import (
	"context"
	"fmt"
	"time"

	"TmhnaDash/api/role"
	"TmhnaDash/internal/config"
	"TmhnaDash/internal/logger"
	"TmhnaDash/internal/serviceiface"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService refreshes KPI snapshots on a schedule.
type CronService struct {
	config   map[string]interface{}
	src      KPISource
	store    *KPIStore
	schedule string
	timeZone string
	cron     *cron.Cron
}

func NewCronService(cfg map[string]interface{}, src KPISource, store *KPIStore) serviceiface.Service {
	s := &CronService{
		config:   cfg,
		src:      src,
		store:    store,
		schedule: config.DefaultKPISchedule,
		timeZone: config.DefaultTimeZone,
	}
	if cfg != nil {
		if v, ok := cfg["kpi_schedule"].(string); ok && v != "" {
			s.schedule = v
		}
		if v, ok := cfg["time_zone"].(string); ok && v != "" {
			s.timeZone = v
		}
	}
	s.schedule = config.Env("KPI_REFRESH_SCHEDULE", s.schedule)
	return s
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	if s.src == nil || s.store == nil {
		return fmt.Errorf("cron service: KPI source not wired")
	}

	c := cron.New(cron.WithLocation(config.Location(s.timeZone)))
	if _, err := c.AddFunc(s.schedule, s.RefreshKPIs); err != nil {
		return fmt.Errorf("invalid KPI schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c

	go s.RefreshKPIs()

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("KPI refresh scheduled: %s", s.schedule))
	}
	logger.WithFields(logrus.Fields{"service": s.Name(), "schedule": s.schedule}).Info("cron service started")
	return nil
}

// RefreshKPIs snapshots the home cards for every role.
func (s *CronService) RefreshKPIs() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	for _, r := range role.All() {
		snap := CollectKPIs(ctx, s.src, r, time.Now())
		for card, err := range snap.Errors {
			logger.WithFields(map[string]interface{}{"role": string(r), "card": card}).
				WithError(err).Warn("KPI refresh failed")
		}
		s.store.Put(snap)
	}
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	logger.WithFields(logrus.Fields{"service": s.Name()}).Info("cron service stopped")
	return nil
}
