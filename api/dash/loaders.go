package dash

import (
	"context"
	"slices"
	"strings"

	"TmhnaDash/api/backend"
	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/api/view"
	"TmhnaDash/internal/config"
	"TmhnaDash/internal/jobs"
	"TmhnaDash/internal/session"
)

// loadRequest is one pane load on behalf of a workspace.
type loadRequest struct {
	sess  *session.Session
	role  role.Role
	brand role.Brand
}

// loaded is a rendered pane plus the cache write that goes with it. apply
// runs only while the load's ticket is current.
type loaded struct {
	frag  view.Fragment
	apply func(*session.Session)
}

type loader func(ctx context.Context, lr loadRequest) loaded

func show(f view.Fragment) loaded { return loaded{frag: f} }

// loaders maps page/pane to its loader. Panes with the same id render
// differently on different pages.
func (s *Server) loaders() map[string]loader {
	return map[string]loader{
		key(pane.Home, pane.KPIs): s.loadKPIs,

		key(pane.Financial, pane.BrandApproved):    s.loadBrandApproved,
		key(pane.Financial, pane.CorporateUnified): s.loadCorporateUnified,
		key(pane.Financial, pane.Submissions):      s.loadSubmissions,
		key(pane.Financial, pane.RawData):          s.loadRawData,
		key(pane.Financial, pane.Preview):          s.loadPreview,
		key(pane.Financial, pane.DataQuality):      s.loadDataQuality,
		key(pane.Financial, pane.Variances):        s.loadVariances,
		key(pane.Financial, pane.History):          s.loadHistory,

		key(pane.Analytics, pane.DataQuality):         s.loadQualitySummary,
		key(pane.Analytics, pane.Variances):           s.loadVarianceSummary,
		key(pane.Analytics, pane.Submissions):         s.loadSubmissionSummary,
		key(pane.Analytics, pane.VendorHarmonization): s.loadVendorHarmonization,
		key(pane.Analytics, pane.MappingImpact):       s.loadMappingImpact,
		key(pane.Analytics, pane.VendorCoverage):      s.loadMappingCoverage,

		key(pane.Mappings, pane.AccountMappings):    s.loadAccountMappings,
		key(pane.Mappings, pane.CostCenterMappings): s.loadCostCenterMappings,
		key(pane.Mappings, pane.VendorRules):        s.loadVendorRules,
		key(pane.Mappings, pane.MappingRequests):    s.loadMappingRequests,

		key(pane.Vendors, pane.RawVendors):     s.loadRawVendors,
		key(pane.Vendors, pane.UnifiedVendors): s.loadUnifiedVendors,
	}
}

func key(p pane.Page, id string) string { return p.Name + "/" + id }

// RenderPane runs the pane's loader for the workspace role. ok is false
// when a newer load of the pane superseded this one; nothing is written
// to the workspace then.
func (s *Server) RenderPane(ctx context.Context, sess *session.Session, page pane.Page, paneID string, tk pane.Ticket) (view.Fragment, bool) {
	return s.renderPane(ctx, sess, page, paneID, tk, "")
}

func (s *Server) renderPane(ctx context.Context, sess *session.Session, page pane.Page, paneID string, tk pane.Ticket, brand role.Brand) (view.Fragment, bool) {
	r := sess.CurrentRole()
	if !page.Allows(r, paneID) {
		return view.Fragment{}, false
	}
	load, ok := s.load[key(page, paneID)]
	if !ok {
		return view.Fragment{}, false
	}
	out := load(ctx, loadRequest{sess: sess, role: r, brand: scopedBrand(r, brand)})
	if !sess.Commit(tk, out.apply) {
		s.metrics.ObserveStale()
		return view.Fragment{}, false
	}
	return out.frag, true
}

// scopedBrand pins controllers to their own brand. The corporate role may
// pick one and defaults to the first.
func scopedBrand(r role.Role, requested role.Brand) role.Brand {
	if own, ok := r.Brand(); ok {
		return own
	}
	if requested != "" {
		return requested
	}
	return role.AllBrands()[0]
}

func (s *Server) loadKPIs(ctx context.Context, lr loadRequest) loaded {
	now := s.now().In(s.loc)
	snap, ok := s.kpis.Fresh(lr.role, 2*config.KPIInterval, now)
	if !ok {
		snap = jobs.CollectKPIs(ctx, s.client, lr.role, now)
		if len(snap.Errors) == 0 {
			s.kpis.Put(snap)
		}
	}
	units := jobs.WeeklyProduction(now)
	return show(view.Home(lr.role, view.HomeCards{
		VendorCount:  snap.VendorCount,
		RecordCount:  snap.RecordCount,
		Readiness:    snap.Readiness,
		Units:        units,
		UnitsPercent: jobs.WeeklyProductionPercent(units),
		UnitsTarget:  config.WeeklyProductionCap,
	}))
}

// loadBrandApproved fetches every brand the role sees at once so a brand
// toggle or download after this load needs no further request.
func (s *Server) loadBrandApproved(ctx context.Context, lr loadRequest) loaded {
	brands := lr.role.Brands()
	if !slices.Contains(brands, lr.brand) {
		brands = append(brands, lr.brand)
	}
	warm := make(map[role.Brand][]model.ApprovedRow, len(brands))
	var err error
	for _, res := range s.client.BrandApprovedAll(ctx, lr.role, brands) {
		switch {
		case res.Err == nil:
			warm[res.Brand] = res.Value
		case res.Brand == lr.brand:
			err = res.Err
		}
	}
	apply := func(sess *session.Session) {
		for b, rows := range warm {
			sess.SetApproved(b, rows)
		}
	}
	if err != nil {
		return loaded{frag: view.LoadError(pane.BrandApproved, "brand approved data", err), apply: apply}
	}
	rows := warm[lr.brand]
	return loaded{frag: view.BrandApproved(lr.brand, rows, rows), apply: apply}
}

func (s *Server) loadCorporateUnified(ctx context.Context, lr loadRequest) loaded {
	rows, err := s.client.CorporateUnified(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.CorporateUnified, "unified view", err))
	}
	return loaded{
		frag:  view.CorporateUnified(rows, rows, ""),
		apply: func(sess *session.Session) { sess.SetUnified(rows) },
	}
}

func (s *Server) loadSubmissions(ctx context.Context, lr loadRequest) loaded {
	subs, err := s.client.Submissions(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.Submissions, "submissions", err))
	}
	return show(view.Submissions(subs))
}

// submissionContext loads the brand's submissions and the accounts already
// submitted in them.
func (s *Server) submissionContext(ctx context.Context, r role.Role, brand role.Brand) ([]model.Submission, map[string]bool, error) {
	subs, err := s.client.Submissions(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	subs = brandSubmissions(brand, subs)
	return subs, s.client.SubmittedAccounts(ctx, r, brand, subs), nil
}

func brandSubmissions(brand role.Brand, subs []model.Submission) []model.Submission {
	out := make([]model.Submission, 0, len(subs))
	for _, sub := range subs {
		if strings.EqualFold(sub.Brand, brand.String()) {
			out = append(out, sub)
		}
	}
	return out
}

func (s *Server) loadRawData(ctx context.Context, lr loadRequest) loaded {
	var (
		rows      []model.RawRow
		subs      []model.Submission
		submitted map[string]bool
	)
	errs := backend.Gather(ctx,
		func(ctx context.Context) error {
			var err error
			rows, err = s.client.RawRows(ctx, lr.role)
			return err
		},
		func(ctx context.Context) error {
			var err error
			subs, submitted, err = s.submissionContext(ctx, lr.role, lr.brand)
			return err
		},
	)
	if errs[0] != nil {
		return show(view.LoadError(pane.RawData, "raw data", errs[0]))
	}
	rows = brandRows(lr.brand, rows)
	// Without submissions nothing is highlighted; the rows still show.
	fresh := view.NewFreshness(lr.brand, subs, submitted)
	return loaded{
		frag: view.RawData(lr.role, rows, rows, fresh, ""),
		apply: func(sess *session.Session) {
			sess.SetRawRows(rows)
			sess.SetSubmissionContext(subs, submitted)
		},
	}
}

func brandRows(brand role.Brand, rows []model.RawRow) []model.RawRow {
	out := make([]model.RawRow, 0, len(rows))
	for _, row := range rows {
		if row.Brand == "" || strings.EqualFold(row.Brand, brand.String()) {
			out = append(out, row)
		}
	}
	return out
}

func (s *Server) loadPreview(ctx context.Context, lr loadRequest) loaded {
	var (
		preview   model.Preview
		subs      []model.Submission
		submitted map[string]bool
	)
	errs := backend.Gather(ctx,
		func(ctx context.Context) error {
			var err error
			preview, err = s.client.Preview(ctx, lr.role, lr.brand)
			return err
		},
		func(ctx context.Context) error {
			var err error
			subs, submitted, err = s.submissionContext(ctx, lr.role, lr.brand)
			return err
		},
	)
	if errs[0] != nil {
		return show(view.LoadError(pane.Preview, "preview", errs[0]))
	}
	return show(view.Preview(view.PreviewInput{
		Brand:      lr.brand,
		Preview:    preview,
		Submitted:  submitted,
		Fresh:      view.NewFreshness(lr.brand, subs, submitted),
		NoticeSent: lr.sess.NoticeSent(lr.brand),
	}))
}

func (s *Server) loadDataQuality(ctx context.Context, lr loadRequest) loaded {
	results := s.client.DataQualityAll(ctx, lr.role, lr.role.Brands())
	reports := make([]model.QualityReport, 0, len(results))
	var firstErr error
	for _, res := range results {
		if res.Err != nil {
			if firstErr == nil {
				firstErr = res.Err
			}
			continue
		}
		reports = append(reports, res.Value)
	}
	if len(reports) == 0 && firstErr != nil {
		return show(view.LoadError(pane.DataQuality, "data quality", firstErr))
	}
	return show(view.DataQuality(lr.role, reports))
}

func (s *Server) loadVariances(ctx context.Context, lr loadRequest) loaded {
	vs, err := s.client.Variances(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.Variances, "variances", err))
	}
	return show(view.Variances(lr.role, vs))
}

func (s *Server) loadHistory(ctx context.Context, lr loadRequest) loaded {
	subs, err := s.client.Submissions(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.History, "submission history", err))
	}
	if brand, ok := lr.role.Brand(); ok {
		subs = brandSubmissions(brand, subs)
	}
	return show(view.History(subs))
}

func (s *Server) loadQualitySummary(ctx context.Context, lr loadRequest) loaded {
	dq, err := s.client.DataQualityAnalytics(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.DataQuality, "data quality analytics", err))
	}
	return show(view.DataQualitySummary(dq))
}

func (s *Server) loadVarianceSummary(ctx context.Context, lr loadRequest) loaded {
	va, err := s.client.VarianceAnalytics(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.Variances, "variance analytics", err))
	}
	return show(view.VarianceSummary(va))
}

func (s *Server) loadSubmissionSummary(ctx context.Context, lr loadRequest) loaded {
	sa, err := s.client.SubmissionAnalytics(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.Submissions, "submission analytics", err))
	}
	return show(view.SubmissionSummary(sa))
}

func (s *Server) loadVendorHarmonization(ctx context.Context, lr loadRequest) loaded {
	vh, err := s.client.VendorHarmonization(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.VendorHarmonization, "vendor harmonization", err))
	}
	return show(view.VendorHarmonizationSummary(vh))
}

func (s *Server) loadMappingImpact(ctx context.Context, lr loadRequest) loaded {
	mi, err := s.client.MappingImpact(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.MappingImpact, "mapping impact", err))
	}
	return show(view.MappingImpactSummary(mi))
}

func (s *Server) loadMappingCoverage(ctx context.Context, lr loadRequest) loaded {
	dq, err := s.client.DataQualityAnalytics(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.VendorCoverage, "mapping coverage", err))
	}
	return show(view.MappingCoverage(dq))
}

func (s *Server) loadAccountMappings(ctx context.Context, lr loadRequest) loaded {
	ms, err := s.client.AccountMappings(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.AccountMappings, "account mappings", err))
	}
	return show(view.AccountMappings(ms, false))
}

func (s *Server) loadCostCenterMappings(ctx context.Context, lr loadRequest) loaded {
	ms, err := s.client.CostCenterMappings(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.CostCenterMappings, "cost center mappings", err))
	}
	return show(view.CostCenterMappings(ms, false))
}

func (s *Server) loadVendorRules(ctx context.Context, lr loadRequest) loaded {
	rules, err := s.client.VendorRules(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.VendorRules, "vendor rules", err))
	}
	return show(view.VendorRules(rules))
}

func (s *Server) loadMappingRequests(ctx context.Context, lr loadRequest) loaded {
	if s.notifier == nil {
		return show(view.MappingRequests(nil))
	}
	reqs, err := s.notifier.PendingRequests(ctx, config.MappingRequestsShown)
	if err != nil {
		return show(view.LoadError(pane.MappingRequests, "mapping requests", err))
	}
	return show(view.MappingRequests(reqs))
}

func (s *Server) loadRawVendors(ctx context.Context, lr loadRequest) loaded {
	raw, err := s.client.RawVendors(ctx, lr.role)
	if err != nil {
		return show(view.LoadError(pane.RawVendors, "raw vendors", err))
	}
	recs := raw.Flatten([]string{lr.brand.String()})
	return loaded{
		frag:  view.RawVendors(lr.role, lr.brand, recs, recs, ""),
		apply: func(sess *session.Session) { sess.SetRawVendors(raw) },
	}
}

func (s *Server) loadUnifiedVendors(ctx context.Context, lr loadRequest) loaded {
	var (
		unified []model.HarmonizedVendor
		raw     model.RawVendors
	)
	errs := backend.Gather(ctx,
		func(ctx context.Context) error {
			var err error
			unified, err = s.client.HarmonizedVendors(ctx, lr.role)
			return err
		},
		func(ctx context.Context) error {
			var err error
			raw, err = s.client.RawVendors(ctx, lr.role)
			return err
		},
	)
	if errs[0] != nil {
		return show(view.LoadError(pane.UnifiedVendors, "harmonized vendors", errs[0]))
	}
	stats := view.NewVendorStats(raw, unified)
	return loaded{
		frag: view.UnifiedVendors(unified, unified, stats, ""),
		apply: func(sess *session.Session) {
			sess.SetHarmonized(unified)
			if raw != nil {
				sess.SetRawVendors(raw)
			}
		},
	}
}
