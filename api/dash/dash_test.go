package dash

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TmhnaDash/api/backend"
	"TmhnaDash/api/constants"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/internal/dashboard"
	"TmhnaDash/internal/jobs"
	"TmhnaDash/internal/metrics"
	"TmhnaDash/internal/notification"
	"TmhnaDash/internal/session"
)

// countingBackend answers every GET with an empty list unless a body is
// registered for the path, and counts requests per path.
type countingBackend struct {
	mu     sync.Mutex
	hits   map[string]int
	bodies map[string]any
}

func newCountingBackend() *countingBackend {
	return &countingBackend{hits: map[string]int{}, bodies: map[string]any{}}
}

func (b *countingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path]++
	body, ok := b.bodies[r.URL.Path]
	b.mu.Unlock()
	if !ok {
		body = map[string]any{"data": []any{}}
	}
	if s, isText := body.(string); isText {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, s)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (b *countingBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *countingBackend) set(path string, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bodies[path] = body
}

type fixture struct {
	backend  *countingBackend
	server   *Server
	sessions *session.Manager
	http     *httptest.Server
	client   *http.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fb := newCountingBackend()
	api := httptest.NewServer(fb)
	t.Cleanup(api.Close)
	client, err := backend.New(api.URL, 5*time.Second)
	require.NoError(t, err)

	sessions := session.NewManager(time.Hour, nil)
	srv := NewServer(Deps{
		Client:   client,
		Sessions: sessions,
		Metrics:  metrics.New(),
		KPIs:     jobs.NewKPIStore(),
		Location: time.UTC,
	})
	web := httptest.NewServer(srv.Router())
	t.Cleanup(web.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &fixture{
		backend:  fb,
		server:   srv,
		sessions: sessions,
		http:     web,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// as switches the fixture's browser to r.
func (f *fixture) as(t *testing.T, r role.Role) {
	t.Helper()
	u, err := url.Parse(f.http.URL)
	require.NoError(t, err)
	f.client.Jar.SetCookies(u, []*http.Cookie{{Name: role.CookieName, Value: r.String()}})
	resp, err := f.client.PostForm(f.http.URL+"/role", url.Values{"role": {r.String()}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

// workspace returns the session behind the fixture's browser cookie.
func (f *fixture) workspace(t *testing.T) *session.Session {
	t.Helper()
	u, err := url.Parse(f.http.URL)
	require.NoError(t, err)
	for _, c := range f.client.Jar.Cookies(u) {
		if c.Name == constants.SessionCookie {
			sess, ok := f.sessions.GetSession(context.Background(), c.Value)
			require.True(t, ok)
			return sess
		}
	}
	t.Fatal("no workspace cookie")
	return nil
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.Get(f.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestPrivilegedPanesNeverRequestedForController(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.TMHController)

	resp, body := f.get(t, "/analytics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	assert.Zero(t, doc.Find(`section[data-pane="mapping-impact"]`).Length())
	assert.Zero(t, doc.Find(`section[data-pane="vendor-coverage"]`).Length())
	assert.Zero(t, f.backend.count("/api/analytics/mapping-impact"))

	resp, _ = f.get(t, "/fragment/mappings/account-mappings")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, f.backend.count("/api/mappings/financial/accounts"))
}

func TestPageWithoutVisiblePaneRedirectsHome(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.RaymondController)

	resp, _ := f.get(t, "/mappings")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestHiddenPaneQueryFallsBackToFirstVisible(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.TMHController)

	resp, body := f.get(t, "/financial?pane=submissions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "raw-data", doc.Find("section.pane.active").AttrOr("data-pane", ""))
	assert.Zero(t, doc.Find(`[data-tab="submissions"]`).Length())
}

func TestPageReopensLastTab(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.TMHController)

	resp, _ := f.get(t, "/fragment/financial/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := f.get(t, "/financial")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "history", doc.Find("section.pane.active").AttrOr("data-pane", ""))
}

func TestMappingRequestsPane(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.CorporateReviewer)

	resp, body := f.get(t, "/fragment/mappings/mapping-requests")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, constants.MsgNoMappingRequests)

	notices := notification.NewWithPool(nil)
	require.NoError(t, notices.NotifyMappingRequest(context.Background(), notification.MappingRequest{Brand: "tmh", Role: "ethan", BlockingCount: 4}))
	f.server.notifier = notices

	_, body = f.get(t, "/fragment/mappings/mapping-requests")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("tbody tr").Length())
	assert.Equal(t, "4", doc.Find("tbody tr td").Eq(2).Text())

	f.as(t, role.TMHController)
	resp, _ = f.get(t, "/fragment/mappings/mapping-requests")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHealthzReportsStreams(t *testing.T) {
	f := newFixture(t)
	events := dashboard.NewSSEServer(time.Hour)
	t.Cleanup(events.Stop)
	f.server.events = events

	resp, body := f.get(t, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"streams":0`)
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateSession(context.Background(), role.CorporateReviewer)

	old := sess.Panes.Activate(pane.Financial.Name, pane.CorporateUnified)
	sess.Panes.Activate(pane.Financial.Name, pane.Submissions)

	_, ok := f.server.RenderPane(context.Background(), sess, pane.Financial, pane.CorporateUnified, old)
	assert.False(t, ok)
	_, cached := sess.Unified()
	assert.False(t, cached, "a superseded load must not write the workspace")
}

func TestSearchFiltersCacheWithoutRefetch(t *testing.T) {
	f := newFixture(t)
	f.backend.set("/api/financial/raw", map[string]any{"data": []map[string]any{
		{"brand": "tmh", "source_account_number": "4000", "source_account_name": "Freight", "source_cost_center": "CC1", "amount": 10},
		{"brand": "tmh", "source_account_number": "5000", "source_account_name": "Rent", "source_cost_center": "CC2", "amount": 20},
	}})
	f.as(t, role.TMHController)

	resp, _ := f.get(t, "/fragment/financial/raw-data")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, f.backend.count("/api/financial/raw"))

	resp, body := f.get(t, "/search/financial/raw-data?q=freight")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, f.backend.count("/api/financial/raw"))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("tbody tr").Length())
	assert.Contains(t, doc.Find("tbody").Text(), "Freight")
	assert.Equal(t, "freight", doc.Find("[data-search]").AttrOr("value", ""))
}

func TestSearchShowsLoadErrorWhenCacheCannotFill(t *testing.T) {
	f := newFixture(t)
	f.backend.set("/api/financial/raw", map[string]any{"error": "boom"})
	f.backend.set("/api/financial/corporate-unified", map[string]any{"error": "boom"})

	f.as(t, role.TMHController)
	resp, body := f.get(t, "/search/financial/raw-data?q=x")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, constants.MsgUnauthorized)
	assert.NotContains(t, body, constants.MsgNoRawData)

	f.as(t, role.CorporateReviewer)
	_, body = f.get(t, "/search/financial/corporate-unified?q=x")
	assert.Contains(t, body, constants.MsgUnauthorized)
	assert.NotContains(t, body, constants.MsgNoUnified)
}

func TestExportWithEmptyCache(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.CorporateReviewer)

	resp, body := f.get(t, "/export/all/corporate-unified.csv")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, constants.MsgNoDownloadData)
}

func TestBrandApprovedExportFetchesWhenNotLoaded(t *testing.T) {
	f := newFixture(t)
	f.backend.set("/api/financial/brand-approved/raymond", map[string]any{"data": []map[string]any{
		{"unified_account": "U100", "unified_cost_center": "UCC1", "amount": "800.25"},
	}})
	f.as(t, role.CorporateReviewer)

	resp, body := f.get(t, "/export/raymond/brand-approved.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Unified Account,Unified Cost Center,Amount\nU100,UCC1,800.25", body)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "raymond_approved_data_")
	assert.Equal(t, 1, f.backend.count("/api/financial/brand-approved/raymond"))
}

func TestBrandApprovedLoadWarmsEveryBrand(t *testing.T) {
	f := newFixture(t)
	f.backend.set("/api/financial/brand-approved/tmh", map[string]any{"data": []map[string]any{
		{"unified_account": "U100", "unified_cost_center": "UCC1", "amount": "10"},
	}})
	f.backend.set("/api/financial/brand-approved/raymond", map[string]any{"data": []map[string]any{
		{"unified_account": "U200", "unified_cost_center": "UCC2", "amount": "20"},
		{"unified_account": "U201", "unified_cost_center": "UCC2", "amount": "5"},
	}})
	f.as(t, role.CorporateReviewer)

	resp, body := f.get(t, "/fragment/financial/brand-approved?brand=raymond")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "U200")
	assert.Equal(t, 1, f.backend.count("/api/financial/brand-approved/tmh"))
	assert.Equal(t, 1, f.backend.count("/api/financial/brand-approved/raymond"))

	sess := f.workspace(t)
	tmh, ok := sess.Approved(role.TMH)
	require.True(t, ok)
	assert.Len(t, tmh, 1)
	raymond, ok := sess.Approved(role.Raymond)
	require.True(t, ok)
	assert.Len(t, raymond, 2)

	resp, body = f.get(t, "/search/financial/brand-approved?brand=tmh&q=u100")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "U100")
	resp, _ = f.get(t, "/export/tmh/brand-approved.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, f.backend.count("/api/financial/brand-approved/tmh"), "toggle and download read the warmed cache")
}

func TestCorporateExportNeedsBrand(t *testing.T) {
	f := newFixture(t)
	_, err := f.server.Export(context.Background(), role.CorporateReviewer, ResourceBrandApproved, "", "csv")
	assert.ErrorIs(t, err, ErrBrandRequired)
	assert.Zero(t, f.backend.count("/api/financial/brand-approved/"))

	f.backend.set("/api/financial/brand-approved/tmh", map[string]any{"data": []map[string]any{
		{"unified_account": "U1", "unified_cost_center": "C1", "amount": "1"},
	}})
	d, err := f.server.Export(context.Background(), role.CorporateReviewer, ResourceBrandApproved, role.TMH, "csv")
	require.NoError(t, err)
	assert.Contains(t, d.Filename, "tmh_approved_data_")

	f.as(t, role.CorporateReviewer)
	resp, _ := f.get(t, "/export/all/brand-approved.csv")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestControllerCannotExportOtherBrand(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.TMHController)

	resp, _ := f.get(t, "/export/raymond/raw-data.csv")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestVendorCSVIsProxied(t *testing.T) {
	f := newFixture(t)
	f.backend.set("/api/vendors/raw/csv", "Vendor_Name,Address\nAcme,1 Main St")
	f.as(t, role.RaymondController)

	resp, body := f.get(t, "/export/raymond/raw-vendors.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Vendor_Name,Address\nAcme,1 Main St", body)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "raw_vendors_raymond.csv")
}

func TestSubmitWithoutConfirmOnlyPrompts(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.TMHController)

	resp, err := f.client.PostForm(f.http.URL+"/actions/submit/tmh", url.Values{})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Submit TMH financial data to corporate?", out["prompt"])
	assert.Zero(t, f.backend.count("/api/financial/submit/tmh"))
}

func TestRoleSwitchKeepsWorkspace(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.CorporateReviewer)
	require.Equal(t, 1, f.sessions.Count())

	f.as(t, role.TMHController)
	assert.Equal(t, 1, f.sessions.Count())

	resp, body := f.get(t, "/financial")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "ethan", doc.Find(`select[name="role"] option[selected]`).AttrOr("value", ""))
	assert.Zero(t, doc.Find(".reset-form").Length())
}

func TestImportFillsTableWithoutSaving(t *testing.T) {
	f := newFixture(t)
	f.as(t, role.CorporateReviewer)

	var body strings.Builder
	body.WriteString("--b\r\nContent-Disposition: form-data; name=\"file\"; filename=\"accounts.csv\"\r\nContent-Type: text/csv\r\n\r\n")
	body.WriteString("source,unified number,unified name\nFreight,U400,Freight Out\n")
	body.WriteString("\r\n--b--\r\n")
	resp, err := f.client.Post(f.http.URL+"/mappings/accounts/import", "multipart/form-data; boundary=b", strings.NewReader(body.String()))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Fragments []struct {
			Target string `json:"target"`
			HTML   string `json:"html"`
		} `json:"fragments"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Fragments, 1)
	assert.Equal(t, "pane-account-mappings", out.Fragments[0].Target)
	assert.Contains(t, out.Fragments[0].HTML, "U400")
	assert.Zero(t, f.backend.count("/api/mappings/financial/accounts"))
}
