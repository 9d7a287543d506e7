// Package resource holds the dependencies the dashboard cannot work
// without and probes them on a heartbeat.
package resource

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"TmhnaDash/internal/logger"
	"TmhnaDash/internal/metrics"
	"TmhnaDash/internal/serviceiface"
)

// Pinger is anything the heartbeat can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type ResourceManager struct {
	resources         map[string]Pinger
	healthy           map[string]bool
	mu                sync.RWMutex
	stopChan          chan struct{}
	stopOnce          sync.Once
	heartbeatInterval time.Duration
	probeTimeout      time.Duration
	metrics           *metrics.Collectors
}

func NewResourceManagerService(cfg map[string]interface{}, m *metrics.Collectors) *ResourceManager {
	interval := 30 * time.Second
	if val, ok := cfg["heartbeat_interval"]; ok {
		switch v := val.(type) {
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				interval = d
			}
		case int:
			interval = time.Duration(v) * time.Second
		case float64:
			interval = time.Duration(v) * time.Second
		}
	}
	return &ResourceManager{
		resources:         make(map[string]Pinger),
		healthy:           make(map[string]bool),
		stopChan:          make(chan struct{}),
		heartbeatInterval: interval,
		probeTimeout:      5 * time.Second,
		metrics:           m,
	}
}

var _ serviceiface.Service = (*ResourceManager)(nil)

func (rm *ResourceManager) Name() string { return "resourcemanager" }

func (rm *ResourceManager) Start() error {
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("ResourceManager started, probing %v every %s", rm.ListResources(), rm.heartbeatInterval))
	}
	rm.Check(context.Background())
	go rm.heartbeatLoop()
	return nil
}

func (rm *ResourceManager) Stop() error {
	rm.stopOnce.Do(func() { close(rm.stopChan) })
	return nil
}

func (rm *ResourceManager) heartbeatLoop() {
	ticker := time.NewTicker(rm.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stopChan:
			return
		case <-ticker.C:
			rm.Check(context.Background())
		}
	}
}

// Check probes every resource once and returns the ones that failed.
// State changes are logged; steady state is not.
func (rm *ResourceManager) Check(ctx context.Context) map[string]error {
	failed := map[string]error{}
	for _, name := range rm.ListResources() {
		p, ok := rm.GetResource(name)
		if !ok {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, rm.probeTimeout)
		err := p.Ping(pctx)
		cancel()

		up := err == nil
		rm.metrics.SetUp(name, up)
		rm.mu.Lock()
		was, seen := rm.healthy[name]
		rm.healthy[name] = up
		rm.mu.Unlock()

		if !up {
			failed[name] = err
		}
		if seen && was == up {
			continue
		}
		entry := logger.WithFields(logrus.Fields{"component": "resourcemanager", "resource": name})
		if up {
			entry.Info("resource reachable")
		} else {
			entry.WithError(err).Warn("resource unreachable")
		}
	}
	return failed
}

// Healthy reports the last probe result for name.
func (rm *ResourceManager) Healthy(name string) bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.healthy[name]
}

func (rm *ResourceManager) AddResource(key string, resource Pinger) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.resources[key] = resource
}

func (rm *ResourceManager) GetResource(key string) (Pinger, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	resource, exists := rm.resources[key]
	return resource, exists
}

func (rm *ResourceManager) RemoveResource(key string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.resources, key)
	delete(rm.healthy, key)
}

func (rm *ResourceManager) ListResources() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	keys := make([]string, 0, len(rm.resources))
	for key := range rm.resources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
