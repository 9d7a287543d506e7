package pane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TmhnaDash/api/role"
)

func ids(ps []Pane) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestFinancialPanesByRole(t *testing.T) {
	assert.Equal(t,
		[]string{BrandApproved, CorporateUnified, Submissions, DataQuality, Variances, History},
		ids(Financial.Visible(role.CorporateReviewer)))
	assert.Equal(t,
		[]string{RawData, Preview, DataQuality, Variances, History},
		ids(Financial.Visible(role.TMHController)))
}

func TestPrivilegedPanesHiddenFromControllers(t *testing.T) {
	for _, r := range []role.Role{role.RaymondController, role.TMHController} {
		assert.False(t, Analytics.Allows(r, MappingImpact))
		assert.False(t, Analytics.Allows(r, VendorCoverage))
		assert.False(t, Vendors.Allows(r, UnifiedVendors))
		assert.Empty(t, Mappings.Visible(r))
	}
	assert.True(t, Analytics.Allows(role.CorporateReviewer, MappingImpact))
	assert.Equal(t,
		[]string{AccountMappings, CostCenterMappings, VendorRules, MappingRequests},
		ids(Mappings.Visible(role.CorporateReviewer)))
}

func TestResolveFallsBack(t *testing.T) {
	p, ok := Financial.Resolve(role.RaymondController, BrandApproved)
	require.True(t, ok)
	assert.Equal(t, RawData, p.ID)

	p, ok = Financial.Resolve(role.RaymondController, History)
	require.True(t, ok)
	assert.Equal(t, History, p.ID)

	_, ok = Mappings.Resolve(role.TMHController, AccountMappings)
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("vendors")
	require.True(t, ok)
	assert.Equal(t, "Vendors", p.Title)
	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestTrackerDiscardsSupersededLoad(t *testing.T) {
	tr := NewTracker()
	first := tr.Activate("financial", RawData)
	second := tr.Activate("financial", Variances)

	assert.False(t, tr.Current(first), "switching tabs makes the old load stale")
	assert.True(t, tr.Current(second))

	again := tr.Activate("financial", Variances)
	assert.False(t, tr.Current(second), "reloading the same pane supersedes the earlier load")
	assert.True(t, tr.Current(again))
	assert.Equal(t, Variances, tr.Active("financial"))
}

func TestTrackerPagesAreIndependent(t *testing.T) {
	tr := NewTracker()
	fin := tr.Activate("financial", History)
	ven := tr.Activate("vendors", RawVendors)
	assert.True(t, tr.Current(fin))
	assert.True(t, tr.Current(ven))
}

func TestRefreshKeepsActivePane(t *testing.T) {
	tr := NewTracker()
	tr.Activate("financial", Preview)
	bg := tr.Refresh("financial", History)
	assert.True(t, tr.Current(bg), "a refresh writes into the hidden container")
	assert.Equal(t, Preview, tr.Active("financial"))

	tr.Refresh("financial", History)
	assert.False(t, tr.Current(bg))

	sec := tr.Refresh("analytics", DataQuality)
	assert.True(t, tr.Current(sec), "untabbed pages have no active pane")
}

func TestInvalidate(t *testing.T) {
	tr := NewTracker()
	tk := tr.Activate("financial", Preview)
	tr.Invalidate()
	assert.False(t, tr.Current(tk))
}
