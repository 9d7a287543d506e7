package view

import (
	"TmhnaDash/api/chart"
	"TmhnaDash/api/constants"
	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
)

// RawVendors renders one brand's raw vendor list. The corporate role picks
// the brand with a toggle; brand roles only ever see their own.
func RawVendors(r role.Role, brand role.Brand, all, shown []model.VendorRecord, term string) Fragment {
	if len(all) == 0 {
		return Message(pane.RawVendors, constants.MsgNoVendorData)
	}
	data := map[string]any{
		"Brand":     brand,
		"Brands":    role.AllBrands(),
		"Toggle":    r.IsCorporate(),
		"Rows":      shown,
		"Term":      term,
		"NoResults": len(shown) == 0,
		"NoneFound": constants.MsgNoResults,
	}
	return render(pane.RawVendors, "raw-vendors", data)
}

type harmonizedView struct {
	model.HarmonizedVendor
	BadgeColor string
	BadgeBg    string
}

// badge colors a confidence pill: green at 90 and above, amber at 75.
func badge(c model.Confidence) (string, string) {
	switch {
	case c >= 90:
		return chart.Green, "#ecfdf5"
	case c >= 75:
		return chart.Amber, "#fffbeb"
	default:
		return chart.Red, "#fef2f2"
	}
}

// VendorStats are the counters above the unified vendor table.
type VendorStats struct {
	TotalRaw          int
	Harmonized        int
	DuplicatesRemoved int
	CrossMatches      int
}

func NewVendorStats(raw model.RawVendors, unified []model.HarmonizedVendor) VendorStats {
	s := VendorStats{TotalRaw: raw.Count(), Harmonized: len(unified)}
	if d := s.TotalRaw - s.Harmonized; d > 0 {
		s.DuplicatesRemoved = d
	}
	for _, v := range unified {
		if v.Harmonized() {
			s.CrossMatches++
		}
	}
	return s
}

// UnifiedVendors renders harmonized vendors with a confidence badge and the
// merge form.
func UnifiedVendors(all, shown []model.HarmonizedVendor, stats VendorStats, term string) Fragment {
	if len(all) == 0 {
		return Message(pane.UnifiedVendors, constants.MsgNoVendorData)
	}
	rows := make([]harmonizedView, len(shown))
	for i, v := range shown {
		color, bg := badge(v.Confidence)
		rows[i] = harmonizedView{HarmonizedVendor: v, BadgeColor: color, BadgeBg: bg}
	}
	return render(pane.UnifiedVendors, "unified-vendors", map[string]any{
		"Rows":      rows,
		"Stats":     stats,
		"Term":      term,
		"NoResults": len(shown) == 0,
		"NoneFound": constants.MsgNoResults,
	})
}
