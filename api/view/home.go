package view

import (
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
)

// HomeCards are the values behind the home KPI cards. Nil values render
// as a dash.
type HomeCards struct {
	VendorCount     *int
	RecordCount     *int
	Readiness       *float64
	Units           int
	UnitsPercent    float64
	UnitsTarget     int
	VendorCardTitle string
	ReadinessNote   string
}

func Home(r role.Role, cards HomeCards) Fragment {
	if cards.VendorCardTitle == "" {
		cards.VendorCardTitle = "Harmonized Vendors"
		if brand, ok := r.Brand(); ok {
			cards.VendorCardTitle = brand.Display() + " Vendors"
		}
	}
	if cards.Readiness != nil {
		cards.ReadinessNote = ReadinessStatus(*cards.Readiness)
	}
	return render(pane.KPIs, "home", cards)
}
