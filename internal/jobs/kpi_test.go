package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

type fakeSource struct {
	records    int
	raw        model.RawVendors
	harmonized []model.HarmonizedVendor
	quality    model.DataQualityAnalytics
	qualityErr error
}

func (f fakeSource) RecordsCount(context.Context, role.Role) (int, error) { return f.records, nil }
func (f fakeSource) RawVendors(context.Context, role.Role) (model.RawVendors, error) {
	return f.raw, nil
}
func (f fakeSource) HarmonizedVendors(context.Context, role.Role) ([]model.HarmonizedVendor, error) {
	return f.harmonized, nil
}
func (f fakeSource) DataQualityAnalytics(context.Context, role.Role) (model.DataQualityAnalytics, error) {
	return f.quality, f.qualityErr
}

func TestCollectKPIsVendorCountFollowsRole(t *testing.T) {
	src := fakeSource{
		records:    42,
		raw:        model.RawVendors{"tmh": make([]model.VendorRecord, 3), "raymond": make([]model.VendorRecord, 5)},
		harmonized: make([]model.HarmonizedVendor, 6),
		quality:    model.DataQualityAnalytics{ReadinessPercent: 87.5},
	}
	now := time.Now()

	corp := CollectKPIs(context.Background(), src, role.CorporateReviewer, now)
	require.NotNil(t, corp.VendorCount)
	assert.Equal(t, 6, *corp.VendorCount)
	assert.Equal(t, 42, *corp.RecordCount)
	assert.Equal(t, 87.5, *corp.Readiness)

	liam := CollectKPIs(context.Background(), src, role.RaymondController, now)
	assert.Equal(t, 5, *liam.VendorCount)
	ethan := CollectKPIs(context.Background(), src, role.TMHController, now)
	assert.Equal(t, 3, *ethan.VendorCount)
}

func TestCollectKPIsKeepsOtherCardsOnFailure(t *testing.T) {
	src := fakeSource{records: 7, qualityErr: errors.New("boom")}
	snap := CollectKPIs(context.Background(), src, role.CorporateReviewer, time.Now())
	assert.Nil(t, snap.Readiness)
	assert.Equal(t, 7, *snap.RecordCount)
	assert.Contains(t, snap.Errors, "readiness")

	store := NewKPIStore()
	store.Put(snap)
	_, ok := store.Fresh(role.CorporateReviewer, time.Hour, time.Now())
	assert.False(t, ok, "partial snapshots are never served")
}

func TestKPIStoreFreshness(t *testing.T) {
	store := NewKPIStore()
	taken := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	store.Put(KPISnapshot{Role: role.CorporateReviewer, TakenAt: taken})

	_, ok := store.Fresh(role.CorporateReviewer, 10*time.Minute, taken.Add(5*time.Minute))
	assert.True(t, ok)
	_, ok = store.Fresh(role.CorporateReviewer, 10*time.Minute, taken.Add(11*time.Minute))
	assert.False(t, ok)
	_, ok = store.Fresh(role.TMHController, 10*time.Minute, taken)
	assert.False(t, ok)
}

func TestWeeklyProduction(t *testing.T) {
	loc := time.UTC
	// 2026-10-19 is a Monday.
	assert.Equal(t, 0, WeeklyProduction(time.Date(2026, 10, 19, 0, 3, 0, 0, loc)))
	assert.Equal(t, 15, WeeklyProduction(time.Date(2026, 10, 19, 1, 0, 0, 0, loc)))
	assert.Equal(t, 360, WeeklyProduction(time.Date(2026, 10, 20, 0, 0, 0, 0, loc)))
	assert.Equal(t, 1900, WeeklyProduction(time.Date(2026, 10, 25, 23, 0, 0, 0, loc)))
	assert.Equal(t, 100.0, WeeklyProductionPercent(1900))
	assert.InDelta(t, 50.0, WeeklyProductionPercent(950), 0.001)
}
