// Package pane defines the dashboard pages, which panes each role may see,
// and which pane load is current.
package pane

import "TmhnaDash/api/role"

type Visibility func(role.Role) bool

var (
	Everyone   Visibility = func(role.Role) bool { return true }
	Corporate  Visibility = func(r role.Role) bool { return r.IsCorporate() }
	Controller Visibility = func(r role.Role) bool { _, ok := r.Brand(); return ok }
	Privileged Visibility = func(r role.Role) bool { return r.Privileged() }
)

type Pane struct {
	ID      string
	Title   string
	Visible Visibility
}

type Page struct {
	Name  string
	Title string
	// Tabbed pages show one pane at a time; the others load every visible
	// pane as a section.
	Tabbed bool
	Panes  []Pane
}

// Pane ids.
const (
	KPIs                = "kpis"
	BrandApproved       = "brand-approved"
	CorporateUnified    = "corporate-unified"
	Submissions         = "submissions"
	RawData             = "raw-data"
	Preview             = "preview"
	DataQuality         = "data-quality"
	Variances           = "variances"
	History             = "history"
	VendorHarmonization = "vendor-harmonization"
	MappingImpact       = "mapping-impact"
	VendorCoverage      = "vendor-coverage"
	AccountMappings     = "account-mappings"
	CostCenterMappings  = "cost-center-mappings"
	VendorRules         = "vendor-rules"
	MappingRequests     = "mapping-requests"
	RawVendors          = "raw-vendors"
	UnifiedVendors      = "unified-vendors"
)

var (
	Home = Page{Name: "home", Title: "Home", Panes: []Pane{
		{ID: KPIs, Title: "Overview", Visible: Everyone},
	}}
	Financial = Page{Name: "financial", Title: "Financial Integration", Tabbed: true, Panes: []Pane{
		{ID: BrandApproved, Title: "Brand Approved", Visible: Corporate},
		{ID: CorporateUnified, Title: "Unified View", Visible: Corporate},
		{ID: Submissions, Title: "Submissions", Visible: Corporate},
		{ID: RawData, Title: "Raw Data", Visible: Controller},
		{ID: Preview, Title: "Preview & Submit", Visible: Controller},
		{ID: DataQuality, Title: "Data Quality", Visible: Everyone},
		{ID: Variances, Title: "Variances", Visible: Everyone},
		{ID: History, Title: "History", Visible: Everyone},
	}}
	Analytics = Page{Name: "analytics", Title: "Analytics", Panes: []Pane{
		{ID: DataQuality, Title: "Data Quality", Visible: Everyone},
		{ID: Variances, Title: "Variances", Visible: Everyone},
		{ID: Submissions, Title: "Submissions", Visible: Everyone},
		{ID: VendorHarmonization, Title: "Vendor Harmonization", Visible: Everyone},
		{ID: MappingImpact, Title: "Mapping Impact", Visible: Privileged},
		{ID: VendorCoverage, Title: "Mapping Coverage", Visible: Privileged},
	}}
	Mappings = Page{Name: "mappings", Title: "Mapping Governance", Tabbed: true, Panes: []Pane{
		{ID: AccountMappings, Title: "Account Mappings", Visible: Privileged},
		{ID: CostCenterMappings, Title: "Cost Center Mappings", Visible: Privileged},
		{ID: VendorRules, Title: "Vendor Rules", Visible: Privileged},
		{ID: MappingRequests, Title: "Mapping Requests", Visible: Privileged},
	}}
	Vendors = Page{Name: "vendors", Title: "Vendors", Tabbed: true, Panes: []Pane{
		{ID: RawVendors, Title: "Raw Vendors", Visible: Everyone},
		{ID: UnifiedVendors, Title: "Unified Vendors", Visible: Privileged},
	}}
)

var pages = []Page{Home, Financial, Analytics, Mappings, Vendors}

func Pages() []Page { return pages }

func Lookup(name string) (Page, bool) {
	for _, p := range pages {
		if p.Name == name {
			return p, true
		}
	}
	return Page{}, false
}

// Visible lists the panes r may see, in page order.
func (p Page) Visible(r role.Role) []Pane {
	var out []Pane
	for _, pn := range p.Panes {
		if pn.Visible(r) {
			out = append(out, pn)
		}
	}
	return out
}

func (p Page) Allows(r role.Role, id string) bool {
	for _, pn := range p.Panes {
		if pn.ID == id {
			return pn.Visible(r)
		}
	}
	return false
}

// Resolve returns the requested pane when r may see it, otherwise the first
// visible pane. ok is false when r sees nothing on this page.
func (p Page) Resolve(r role.Role, requested string) (Pane, bool) {
	visible := p.Visible(r)
	if len(visible) == 0 {
		return Pane{}, false
	}
	for _, pn := range visible {
		if pn.ID == requested {
			return pn, true
		}
	}
	return visible[0], true
}
