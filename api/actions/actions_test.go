package actions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TmhnaDash/api/backend"
	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/api/view"
	"TmhnaDash/internal/audit"
	"TmhnaDash/internal/notification"
	"TmhnaDash/internal/session"
)

type fakeBackend struct {
	mu        sync.Mutex
	posts     map[string]int
	bodies    map[string]json.RawMessage
	variances []model.Variance
	ack       map[string]any
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodPost {
		var body json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.posts[r.URL.Path]++
		f.bodies[r.URL.Path] = body
		f.mu.Unlock()
		ack := f.ack
		if ack == nil {
			ack = map[string]any{"ok": true}
		}
		_ = json.NewEncoder(w).Encode(ack)
		return
	}
	switch r.URL.Path {
	case "/api/financial/variances":
		_ = json.NewEncoder(w).Encode(map[string]any{"data": f.variances})
	default:
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}
}

func (f *fakeBackend) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts[path]
}

type recordingRenderer struct {
	mu       sync.Mutex
	rendered []string
}

func (r *recordingRenderer) RenderPane(_ context.Context, s *session.Session, page pane.Page, id string, tk pane.Ticket) (view.Fragment, bool) {
	r.mu.Lock()
	r.rendered = append(r.rendered, id)
	r.mu.Unlock()
	if !s.Panes.Current(tk) {
		return view.Fragment{}, false
	}
	return view.Message(id, "fresh "+id), true
}

type memNotifier struct {
	reqs  []notification.MappingRequest
	calls int
	// fail makes the next that many sends return an error.
	fail int
}

func (m *memNotifier) NotifyMappingRequest(_ context.Context, req notification.MappingRequest) error {
	m.calls++
	if m.fail > 0 {
		m.fail--
		return errors.New("db down")
	}
	m.reqs = append(m.reqs, req)
	return nil
}

func (m *memNotifier) PendingRequests(context.Context, int) ([]notification.MappingRequest, error) {
	return m.reqs, nil
}

type memAudit struct {
	entries []audit.Entry
}

func (m *memAudit) Record(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

type stubEvents struct {
	got [][]string
}

func (s *stubEvents) NotifyStale(ids []string, _ string, panes []string) int {
	s.got = append(s.got, panes)
	return len(ids)
}

type harness struct {
	backend  *fakeBackend
	renderer *recordingRenderer
	notifier *memNotifier
	audit    *memAudit
	events   *stubEvents
	sessions *session.Manager
	svc      *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fb := &fakeBackend{posts: map[string]int{}, bodies: map[string]json.RawMessage{}}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	client, err := backend.New(srv.URL, 5*time.Second)
	require.NoError(t, err)

	h := &harness{
		backend:  fb,
		renderer: &recordingRenderer{},
		notifier: &memNotifier{},
		audit:    &memAudit{},
		events:   &stubEvents{},
		sessions: session.NewManager(time.Hour, nil),
	}
	h.svc = New(client, h.renderer, Deps{
		Notifier: h.notifier,
		Audit:    h.audit,
		Events:   h.events,
		Sessions: h.sessions,
	})
	return h
}

func (h *harness) request(r role.Role, page pane.Page, confirm bool) Request {
	s := h.sessions.CreateSession(context.Background(), r)
	return Request{Session: s, Role: r, Page: page, Confirm: confirm}
}

func TestSubmitBlockedByPreflightSendsNothing(t *testing.T) {
	h := newHarness(t)
	h.backend.variances = []model.Variance{
		{VarianceType: "UNMAPPED_ACCOUNT", Brand: "tmh"},
		{VarianceType: "UNMAPPED_COST_CENTER", Brand: "tmh"},
		{VarianceType: "UNMAPPED_ACCOUNT", Brand: "raymond"},
	}
	res := h.svc.Submit(context.Background(), h.request(role.TMHController, pane.Financial, true), role.TMH)

	assert.Contains(t, res.Error, "Cannot submit: 2 unmapped")
	assert.Zero(t, h.backend.count("/api/financial/submit/tmh"))
}

func TestSubmitWithoutConfirmPrompts(t *testing.T) {
	h := newHarness(t)
	res := h.svc.Submit(context.Background(), h.request(role.TMHController, pane.Financial, false), role.TMH)

	assert.Equal(t, "Submit TMH financial data to corporate?", res.Prompt)
	assert.Zero(t, h.backend.count("/api/financial/submit/tmh"))
}

func TestSubmitRefreshesAffectedPanesImmediately(t *testing.T) {
	h := newHarness(t)
	h.backend.ack = map[string]any{"success": true, "record_count": 4}
	res := h.svc.Submit(context.Background(), h.request(role.RaymondController, pane.Financial, true), role.Raymond)

	require.Empty(t, res.Error)
	assert.Equal(t, 1, h.backend.count("/api/financial/submit/raymond"))
	assert.Contains(t, res.Message, "4 records")
	var targets []string
	for _, f := range res.Fragments {
		targets = append(targets, f.Target)
	}
	assert.ElementsMatch(t, []string{"pane-preview", "pane-history", "pane-variances"}, targets)
	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, "ok", h.audit.entries[0].Outcome)
}

func TestSubmitOtherBrandRejected(t *testing.T) {
	h := newHarness(t)
	res := h.svc.Submit(context.Background(), h.request(role.TMHController, pane.Financial, true), role.Raymond)
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, h.backend.count("/api/financial/submit/raymond"))
}

func TestBackendErrorSurfacesVerbatim(t *testing.T) {
	h := newHarness(t)
	h.backend.ack = map[string]any{"error": "Submission already pending for TMH"}
	res := h.svc.Submit(context.Background(), h.request(role.TMHController, pane.Financial, true), role.TMH)

	assert.Equal(t, "Submission already pending for TMH", res.Error)
	assert.Empty(t, res.Fragments)
	assert.Equal(t, "error", h.audit.entries[0].Outcome)
}

func TestApproveOnlyForCorporate(t *testing.T) {
	h := newHarness(t)
	res := h.svc.SetStatus(context.Background(), h.request(role.TMHController, pane.Financial, true), "abc", "APPROVED")
	assert.Equal(t, ErrForbidden.Error(), res.Error)

	res = h.svc.SetStatus(context.Background(), h.request(role.CorporateReviewer, pane.Financial, true), "abc", "approved")
	require.Empty(t, res.Error)
	assert.JSONEq(t, `{"status":"APPROVED"}`, string(h.backend.bodies["/api/financial/submission/abc/status"]))
	var targets []string
	for _, f := range res.Fragments {
		targets = append(targets, f.Target)
	}
	assert.ElementsMatch(t, []string{"pane-submissions", "pane-brand-approved", "pane-corporate-unified", "pane-variances"}, targets)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	res := h.svc.SetStatus(context.Background(), h.request(role.CorporateReviewer, pane.Financial, true), "abc", "DRAFT")
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, h.backend.count("/api/financial/submission/abc/status"))
}

func TestSaveMappingsDropsBlankRows(t *testing.T) {
	h := newHarness(t)
	rows := []model.AccountMapping{
		{SourceAccountName: " Freight ", UnifiedAccountNumber: "U400", UnifiedAccountName: "Freight"},
		{SourceAccountName: "Rent", UnifiedAccountNumber: "", UnifiedAccountName: "Rent"},
	}
	res := h.svc.SaveAccountMappings(context.Background(), h.request(role.CorporateReviewer, pane.Mappings, true), rows)
	require.Empty(t, res.Error)
	assert.JSONEq(t,
		`{"mappings":[{"source_account_name":"Freight","unified_account_number":"U400","unified_account_name":"Freight"}]}`,
		string(h.backend.bodies["/api/mappings/financial/accounts"]))
	require.Len(t, res.Fragments, 1)
	assert.Equal(t, "pane-account-mappings", res.Fragments[0].Target)
}

func TestSaveMappingsNothingValidSendsNothing(t *testing.T) {
	h := newHarness(t)
	rows := []model.CostCenterMapping{{SourceCostCenter: "CC1"}}
	res := h.svc.SaveCostCenterMappings(context.Background(), h.request(role.CorporateReviewer, pane.Mappings, true), rows)
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, h.backend.count("/api/mappings/financial/cost-centers"))
}

func TestVendorRulesRange(t *testing.T) {
	h := newHarness(t)
	res := h.svc.SaveVendorRules(context.Background(), h.request(role.CorporateReviewer, pane.Mappings, true),
		model.VendorRules{ConfidenceThreshold: 120, NameWeight: 0.5, AddressWeight: 1.5})
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, "lte", res.Fields["VendorRules.ConfidenceThreshold"])
	assert.Equal(t, "lte", res.Fields["VendorRules.AddressWeight"])
	assert.Zero(t, h.backend.count("/api/mappings/vendor"))
}

func TestRequestMappingsOncePerBrand(t *testing.T) {
	h := newHarness(t)
	h.sessions.CreateSession(context.Background(), role.CorporateReviewer)
	req := h.request(role.TMHController, pane.Financial, false)

	first := h.svc.RequestMappings(context.Background(), req, role.TMH, 3)
	require.Empty(t, first.Error)
	assert.Contains(t, first.Message, "Mapping request sent")
	second := h.svc.RequestMappings(context.Background(), req, role.TMH, 3)
	assert.Contains(t, second.Message, "already sent")

	require.Len(t, h.notifier.reqs, 1)
	assert.Equal(t, 3, h.notifier.reqs[0].BlockingCount)
	assert.True(t, req.Session.NoticeSent(role.TMH))
	require.Len(t, h.events.got, 1)
	assert.Contains(t, h.events.got[0], pane.MappingRequests, "corporate queues reload")
}

func TestRequestMappingsRetryAfterFailedSend(t *testing.T) {
	h := newHarness(t)
	h.notifier.fail = 1
	req := h.request(role.TMHController, pane.Financial, false)

	first := h.svc.RequestMappings(context.Background(), req, role.TMH, 2)
	assert.Equal(t, "db down", first.Error)
	assert.False(t, req.Session.NoticeSent(role.TMH))

	retry := h.svc.RequestMappings(context.Background(), req, role.TMH, 2)
	require.Empty(t, retry.Error)
	assert.Contains(t, retry.Message, "Mapping request sent")
	assert.Equal(t, 2, h.notifier.calls)
	require.Len(t, h.notifier.reqs, 1)
	assert.True(t, req.Session.NoticeSent(role.TMH))
}

func TestMergeNeedsTwoVendors(t *testing.T) {
	h := newHarness(t)
	req := h.request(role.CorporateReviewer, pane.Vendors, true)
	res := h.svc.MergeVendors(context.Background(), req, model.MergeRequest{VendorIDs: []string{"v1"}, UnifiedName: "Acme"})
	assert.NotEmpty(t, res.Error)

	res = h.svc.MergeVendors(context.Background(), req, model.MergeRequest{VendorIDs: []string{"v1", "v2"}, UnifiedName: "Acme"})
	require.Empty(t, res.Error)
	assert.Equal(t, 1, h.backend.count("/api/vendors/merge"))
	assert.Len(t, res.Fragments, 2)
}

func TestResetBroadcastsToOtherWorkspaces(t *testing.T) {
	h := newHarness(t)
	h.sessions.CreateSession(context.Background(), role.TMHController)
	res := h.svc.ResetState(context.Background(), h.request(role.CorporateReviewer, pane.Financial, true))
	require.Empty(t, res.Error)

	require.Len(t, h.events.got, 1)
	assert.Contains(t, h.events.got[0], pane.Preview)
	for _, f := range res.Fragments {
		assert.NotEqual(t, "pane-preview", f.Target, "controller panes are not rendered for corporate")
	}
}
