package appmanager

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"TmhnaDash/api/backend"
	"TmhnaDash/api/dash"
	"TmhnaDash/internal/audit"
	"TmhnaDash/internal/config"
	"TmhnaDash/internal/dashboard"
	"TmhnaDash/internal/jobs"
	"TmhnaDash/internal/logger"
	"TmhnaDash/internal/metrics"
	"TmhnaDash/internal/notification"
	"TmhnaDash/internal/resource"
	"TmhnaDash/internal/serviceiface"
	"TmhnaDash/internal/session"
)

// Shared holds what more than one service needs. Services registered
// earlier in the sequence fill in the fields later ones read.
type Shared struct {
	Client   *backend.Client
	Metrics  *metrics.Collectors
	KPIs     *jobs.KPIStore
	Events   *dashboard.SSEServer
	Location *time.Location

	Sessions *session.Service
	Notifier *notification.NotificationService
	Audit    *audit.Service
}

// NewShared builds the backend client from BACKEND_URL and the common
// collectors.
func NewShared() (*Shared, error) {
	m := metrics.New()
	timeout := config.DefaultBackendTimeout
	if v := os.Getenv("BACKEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("BACKEND_TIMEOUT: %w", err)
		}
		timeout = d
	}
	client, err := backend.New(config.Env("BACKEND_URL", config.DefaultBackendURL), timeout, backend.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	return &Shared{
		Client:   client,
		Metrics:  m,
		KPIs:     jobs.NewKPIStore(),
		Events:   dashboard.NewSSEServer(25 * time.Second),
		Location: config.Location(os.Getenv("TZ_NAME")),
	}, nil
}

var serviceConstructors = map[string]func(map[string]interface{}, *Shared) serviceiface.Service{
	"logger": func(cfg map[string]interface{}, _ *Shared) serviceiface.Service {
		return logger.NewLoggerService(cfg)
	},
	"session": func(cfg map[string]interface{}, sh *Shared) serviceiface.Service {
		sh.Sessions = session.NewSessionService(cfg)
		return sh.Sessions
	},
	"notification": func(cfg map[string]interface{}, sh *Shared) serviceiface.Service {
		sh.Notifier = notification.NewNotificationService(cfg)
		return sh.Notifier
	},
	"audit": func(cfg map[string]interface{}, sh *Shared) serviceiface.Service {
		sh.Audit = audit.NewAuditService(cfg)
		return sh.Audit
	},
	"resourcemanager": func(cfg map[string]interface{}, sh *Shared) serviceiface.Service {
		return resource.NewResourceManagerService(cfg, sh.Metrics)
	},
	"cron": func(cfg map[string]interface{}, sh *Shared) serviceiface.Service {
		return jobs.NewCronService(cfg, sh.Client, sh.KPIs)
	},
	"dash": func(cfg map[string]interface{}, sh *Shared) serviceiface.Service {
		return dash.NewDashService(cfg, sh.DashDeps())
	},
}

// DashDeps assembles the dashboard's collaborators. A sequence without a
// session service still gets an in-memory workspace manager.
func (sh *Shared) DashDeps() dash.Deps {
	d := dash.Deps{
		Client:   sh.Client,
		Metrics:  sh.Metrics,
		Events:   sh.Events,
		KPIs:     sh.KPIs,
		Location: sh.Location,
	}
	if sh.Sessions != nil {
		d.Sessions = sh.Sessions.Manager()
	} else {
		d.Sessions = session.NewManager(0, nil)
	}
	if sh.Notifier != nil {
		d.Notifier = sh.Notifier
	}
	if sh.Audit != nil {
		d.Audit = sh.Audit
	}
	return d
}

// ------------------- MANAGER -------------------

type AppManager struct {
	services []serviceiface.Service
	shared   *Shared
	mu       sync.Mutex
}

func NewAppManager(shared *Shared) *AppManager {
	return &AppManager{
		services: make([]serviceiface.Service, 0),
		shared:   shared,
	}
}

func (am *AppManager) Shared() *Shared { return am.shared }

func (am *AppManager) RegisterService(s serviceiface.Service) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.services = append(am.services, s)
}

func (am *AppManager) StartAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	// First pass: start all except resourcemanager
	for _, service := range am.services {
		if service.Name() == "resourcemanager" {
			continue
		}
		logger.WithFields(logrus.Fields{"service": service.Name()}).Info("starting service")
		if err := service.Start(); err != nil {
			return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
		}
	}

	// Probes only make sense once their targets are running.
	for _, service := range am.services {
		if service.Name() == "resourcemanager" {
			logger.WithFields(logrus.Fields{"service": service.Name()}).Info("starting service")
			if err := service.Start(); err != nil {
				return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
			}
		}
	}
	return nil
}

// StopAll stops services in reverse start order and reports the first
// failure after trying every service.
func (am *AppManager) StopAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	var first error
	for i := len(am.services) - 1; i >= 0; i-- {
		svc := am.services[i]
		if err := svc.Stop(); err != nil && first == nil {
			first = fmt.Errorf("failed to stop service %s: %w", svc.Name(), err)
		}
	}
	return first
}

// ------------------- YAML CONFIG -------------------

type ServiceSequencer struct {
	Services []ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	Name       string                 `yaml:"name"`
	StartOrder int                    `yaml:"start_order"`
	Config     map[string]interface{} `yaml:"config"`
}

func LoadServiceSequence(path string) ([]ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseServiceSequence(data)
}

func ParseServiceSequence(data []byte) ([]ServiceConfig, error) {
	var seq ServiceSequencer
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, err
	}

	// sort by start_order
	sort.SliceStable(seq.Services, func(i, j int) bool {
		return seq.Services[i].StartOrder < seq.Services[j].StartOrder
	})

	for i := range seq.Services {
		if seq.Services[i].Config == nil {
			seq.Services[i].Config = map[string]interface{}{}
		}
	}
	return seq.Services, nil
}

// AutoRegisterServices builds every known service in sequence order.
// Unknown names are an error so a typo in services.yaml is not silently
// ignored.
func (am *AppManager) AutoRegisterServices(configs []ServiceConfig) error {
	for _, svc := range configs {
		constructor, ok := serviceConstructors[svc.Name]
		if !ok {
			return fmt.Errorf("unknown service %q in sequence", svc.Name)
		}
		am.RegisterService(constructor(svc.Config, am.shared))
	}

	if l, ok := am.GetServiceByName("logger").(*logger.LoggerService); ok {
		logger.SetGlobalLogger(l)
	}
	am.WireServices()
	return nil
}

// WireServices hands the resource manager every dependency it should
// probe.
func (am *AppManager) WireServices() {
	rm, ok := am.GetServiceByName("resourcemanager").(*resource.ResourceManager)
	if !ok {
		return
	}
	rm.AddResource("backend", am.shared.Client)
	if am.shared.Sessions != nil {
		rm.AddResource("session-store", am.shared.Sessions)
	}
	if am.shared.Audit != nil {
		rm.AddResource("audit-db", am.shared.Audit)
	}
	if am.shared.Notifier != nil {
		rm.AddResource("notification-db", am.shared.Notifier)
	}
}

func (am *AppManager) GetServiceByName(name string) serviceiface.Service {
	for _, svc := range am.services {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}
