package resource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"TmhnaDash/internal/metrics"
)

func TestCheckRecordsProbeResults(t *testing.T) {
	m := metrics.New()
	rm := NewResourceManagerService(map[string]interface{}{"heartbeat_interval": "1m"}, m)
	rm.AddResource("backend", PingFunc(func(context.Context) error { return nil }))
	rm.AddResource("audit-db", PingFunc(func(context.Context) error { return errors.New("refused") }))

	failed := rm.Check(context.Background())

	assert.Len(t, failed, 1)
	assert.EqualError(t, failed["audit-db"], "refused")
	assert.True(t, rm.Healthy("backend"))
	assert.False(t, rm.Healthy("audit-db"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `tmhna_dependency_up{dependency="backend"} 1`)
	assert.Contains(t, rec.Body.String(), `tmhna_dependency_up{dependency="audit-db"} 0`)
}

func TestRemoveResourceForgetsHealth(t *testing.T) {
	rm := NewResourceManagerService(nil, nil)
	rm.AddResource("backend", PingFunc(func(context.Context) error { return nil }))
	rm.Check(context.Background())
	rm.RemoveResource("backend")

	assert.Empty(t, rm.ListResources())
	assert.False(t, rm.Healthy("backend"))
	assert.NoError(t, rm.Stop())
	assert.NoError(t, rm.Stop())
}
