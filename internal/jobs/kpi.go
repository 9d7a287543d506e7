package jobs

import (
	"context"
	"sync"
	"time"

	"TmhnaDash/api/backend"
	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
	"TmhnaDash/internal/config"
)

// KPISource is the slice of the backend client the home cards need.
type KPISource interface {
	RecordsCount(ctx context.Context, r role.Role) (int, error)
	RawVendors(ctx context.Context, r role.Role) (model.RawVendors, error)
	HarmonizedVendors(ctx context.Context, r role.Role) ([]model.HarmonizedVendor, error)
	DataQualityAnalytics(ctx context.Context, r role.Role) (model.DataQualityAnalytics, error)
}

// KPISnapshot holds home card values for one role. A nil pointer means the
// value could not be loaded.
type KPISnapshot struct {
	Role        role.Role
	VendorCount *int
	RecordCount *int
	Readiness   *float64
	TakenAt     time.Time
	Errors      map[string]error
}

// CollectKPIs loads every card concurrently. The corporate role counts
// harmonized vendors; a brand role counts its own raw vendors.
func CollectKPIs(ctx context.Context, src KPISource, r role.Role, now time.Time) KPISnapshot {
	snap := KPISnapshot{Role: r, TakenAt: now, Errors: map[string]error{}}
	var (
		vendors, records int
		quality          model.DataQualityAnalytics
	)
	errs := backend.Gather(ctx,
		func(ctx context.Context) error {
			if brand, ok := r.Brand(); ok {
				raw, err := src.RawVendors(ctx, r)
				if err != nil {
					return err
				}
				vendors = len(raw[brand.String()])
				return nil
			}
			list, err := src.HarmonizedVendors(ctx, r)
			vendors = len(list)
			return err
		},
		func(ctx context.Context) error {
			var err error
			records, err = src.RecordsCount(ctx, r)
			return err
		},
		func(ctx context.Context) error {
			var err error
			quality, err = src.DataQualityAnalytics(ctx, r)
			return err
		},
	)
	if errs[0] == nil {
		snap.VendorCount = &vendors
	} else {
		snap.Errors["vendors"] = errs[0]
	}
	if errs[1] == nil {
		snap.RecordCount = &records
	} else {
		snap.Errors["records"] = errs[1]
	}
	if errs[2] == nil {
		snap.Readiness = &quality.ReadinessPercent
	} else {
		snap.Errors["readiness"] = errs[2]
	}
	return snap
}

// KPIStore keeps the latest snapshot per role.
type KPIStore struct {
	mu    sync.RWMutex
	snaps map[role.Role]KPISnapshot
}

func NewKPIStore() *KPIStore {
	return &KPIStore{snaps: make(map[role.Role]KPISnapshot)}
}

func (s *KPIStore) Put(snap KPISnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Role] = snap
}

// Fresh returns the stored snapshot for r when it is younger than maxAge
// and every card loaded.
func (s *KPIStore) Fresh(r role.Role, maxAge time.Duration, now time.Time) (KPISnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[r]
	if !ok || len(snap.Errors) > 0 || now.Sub(snap.TakenAt) > maxAge {
		return KPISnapshot{}, false
	}
	return snap, true
}

// WeeklyProduction counts one unit per interval since Monday 00:00 in
// now's location, capped at the weekly target.
func WeeklyProduction(now time.Time) int {
	days := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day()-days, 0, 0, 0, 0, now.Location())
	units := int(now.Sub(monday)/config.UnitInterval) * config.UnitsPerInterval
	if units > config.WeeklyProductionCap {
		return config.WeeklyProductionCap
	}
	return units
}

// WeeklyProductionPercent is the share of the weekly target, at most 100.
func WeeklyProductionPercent(units int) float64 {
	p := float64(units) / float64(config.WeeklyProductionCap) * 100
	if p > 100 {
		return 100
	}
	return p
}
