package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("/api", time.Second)
	assert.Error(t, err)
}

func TestRawRowsForwardsRole(t *testing.T) {
	var gotRole string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = r.Header.Get(RoleHeader)
		writeJSON(w, map[string]any{"data": []map[string]any{
			{"source_account_number": "1000", "source_account_name": "Cash", "source_cost_center": "CC1", "amount": 12.5},
			{"source_account_number": "2000", "source_account_name": "AP", "source_cost_center": "CC2", "amount": "-4"},
		}})
	}))
	rows, err := c.RawRows(context.Background(), role.TMHController)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ethan", gotRole)
	assert.Equal(t, model.Amount("12.5"), rows[0].Amount)
	assert.Equal(t, model.Amount("-4"), rows[1].Amount)
}

func TestErrorFieldIsAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, map[string]any{"error": "Unauthorized"})
	}))
	_, err := c.Variances(context.Background(), role.RaymondController)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Unauthorized", Message(err))
}

func TestErrorFieldWithDataIsStillAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []any{}, "error": "disk full"})
	}))
	_, err := c.Submissions(context.Background(), role.CorporateReviewer)
	assert.True(t, IsUnauthorized(err))
}

func TestMalformedBodyIsFetchError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	_, err := c.CorporateUnified(context.Background(), role.CorporateReviewer)
	require.Error(t, err)
	var fe *FetchError
	assert.ErrorAs(t, err, &fe)
	assert.False(t, IsUnauthorized(err))
}

func TestMissingDataIsEmptySlice(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{})
	}))
	rows, err := c.Submissions(context.Background(), role.CorporateReviewer)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMutationNotAcceptedSurfacesMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, map[string]any{"ok": false, "error": "No data to submit"})
	}))
	_, err := c.Submit(context.Background(), role.TMHController, role.TMH)
	require.Error(t, err)
	assert.Equal(t, "No data to submit", Message(err))
}

func TestUpdateSubmissionStatusBody(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/financial/submission/abc%2F1/status", r.URL.EscapedPath())
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, map[string]any{"ok": true})
	}))
	_, err := c.UpdateSubmissionStatus(context.Background(), role.CorporateReviewer, "abc/1", model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", body["status"])
}

func TestVendorRulesSuccessStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": "success", "message": "Vendor rules updated successfully"})
	}))
	_, err := c.SaveVendorRules(context.Background(), role.CorporateReviewer, model.DefaultVendorRules())
	assert.NoError(t, err)
}

func TestBrandApprovedAllIsIndependentOfCompletionOrder(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/financial/brand-approved/tmh":
			<-release
			writeJSON(w, map[string]any{"data": []map[string]any{{"unified_account": "T1", "amount": "1"}}})
		case "/api/financial/brand-approved/raymond":
			writeJSON(w, map[string]any{"data": []map[string]any{{"unified_account": "R1", "amount": "2"}, {"unified_account": "R2", "amount": "3"}}})
			close(release)
		}
	}))
	got := c.BrandApprovedAll(context.Background(), role.CorporateReviewer, role.AllBrands())
	require.Len(t, got, 2)
	assert.Equal(t, role.TMH, got[0].Brand)
	require.NoError(t, got[0].Err)
	assert.Len(t, got[0].Value, 1)
	assert.Equal(t, role.Raymond, got[1].Brand)
	require.NoError(t, got[1].Err)
	assert.Len(t, got[1].Value, 2)
}

func TestGatherKeepsSiblingsRunning(t *testing.T) {
	var mu sync.Mutex
	ran := 0
	errs := Gather(context.Background(),
		func(context.Context) error { return assert.AnError },
		func(context.Context) error { mu.Lock(); ran++; mu.Unlock(); return nil },
		func(context.Context) error { mu.Lock(); ran++; mu.Unlock(); return nil },
	)
	assert.ErrorIs(t, errs[0], assert.AnError)
	assert.NoError(t, errs[1])
	assert.Equal(t, 2, ran)
}

func TestRawVendorsCSVPassthrough(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "raymond", r.URL.Query().Get("brand"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Vendor_Name,Address\nAcme,Main St"))
	}))
	b, err := c.RawVendorsCSV(context.Background(), role.RaymondController, role.Raymond)
	require.NoError(t, err)
	assert.Equal(t, "Vendor_Name,Address\nAcme,Main St", string(b))
}
