package dash

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"TmhnaDash/api"
	"TmhnaDash/api/backend"
	"TmhnaDash/api/constants"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/api/search"
	"TmhnaDash/api/view"
	"TmhnaDash/internal/session"
)

// workspace returns the request's session and role. The middleware always
// attaches one.
func workspace(r *http.Request) (*session.Session, role.Role) {
	sess := api.GetSessionFromCtx(r.Context())
	return sess, role.FromContext(r.Context())
}

// requestedBrand reads ?brand=; unknown values are ignored.
func requestedBrand(r *http.Request) role.Brand {
	b, err := role.ParseBrand(r.URL.Query().Get("brand"))
	if err != nil {
		return ""
	}
	return b
}

// handlePage renders the page shell. The active pane of a tabbed page, or
// every pane of an untabbed one, is rendered in place; the rest load when
// their tab is shown. Without ?pane= a tabbed page reopens the tab the
// workspace last showed.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["page"]
	if name == "" {
		name = pane.Home.Name
	}
	page, ok := pane.Lookup(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess, rl := workspace(r)
	requested := r.URL.Query().Get("pane")
	if requested == "" {
		requested = sess.Panes.Active(page.Name)
	}
	active, ok := page.Resolve(rl, requested)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := view.NewPageData(rl, page, active.ID)
	var ids []string
	if page.Tabbed {
		ids = []string{active.ID}
	} else {
		for _, p := range page.Visible(rl) {
			ids = append(ids, p.ID)
		}
	}
	for _, f := range s.renderAll(r.Context(), sess, page, ids, active.ID) {
		data.Fill(f)
	}

	var buf bytes.Buffer
	if err := view.RenderPage(&buf, data); err != nil {
		api.LogError("render page %s: %v", page.Name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	api.RespondWithHTML(w, http.StatusOK, buf.String())
}

// renderAll loads ids concurrently. The active pane takes an Activate
// ticket so a later tab switch supersedes it.
func (s *Server) renderAll(ctx context.Context, sess *session.Session, page pane.Page, ids []string, active string) []view.Fragment {
	frags := make([]view.Fragment, len(ids))
	ok := make([]bool, len(ids))
	tasks := make([]func(context.Context) error, len(ids))
	for i, id := range ids {
		var tk pane.Ticket
		if page.Tabbed && id == active {
			tk = sess.Panes.Activate(page.Name, id)
		} else {
			tk = sess.Panes.Refresh(page.Name, id)
		}
		tasks[i] = func(ctx context.Context) error {
			frags[i], ok[i] = s.RenderPane(ctx, sess, page, id, tk)
			return nil
		}
	}
	backend.Gather(ctx, tasks...)
	out := make([]view.Fragment, 0, len(ids))
	for i := range ids {
		if ok[i] {
			out = append(out, frags[i])
		}
	}
	return out
}

// pageAndPane resolves the route's page and pane for the workspace role.
// A pane the role may not see is never loaded.
func pageAndPane(w http.ResponseWriter, r *http.Request, rl role.Role) (pane.Page, string, bool) {
	vars := mux.Vars(r)
	page, ok := pane.Lookup(vars["page"])
	if !ok {
		http.NotFound(w, r)
		return pane.Page{}, "", false
	}
	id := vars["pane"]
	if !page.Allows(rl, id) {
		http.Error(w, constants.ErrForbiddenForRole, http.StatusForbidden)
		return pane.Page{}, "", false
	}
	return page, id, true
}

// handleFragment loads one pane. 204 means a newer load superseded this
// one and the browser keeps what it has.
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	sess, rl := workspace(r)
	page, id, ok := pageAndPane(w, r, rl)
	if !ok {
		return
	}
	var tk pane.Ticket
	if page.Tabbed {
		tk = sess.Panes.Activate(page.Name, id)
	} else {
		tk = sess.Panes.Refresh(page.Name, id)
	}
	f, current := s.renderPane(r.Context(), sess, page, id, tk, requestedBrand(r))
	if !current {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	api.RespondWithHTML(w, http.StatusOK, string(f.HTML))
}

// handleSearch filters the workspace cache and re-renders the pane. An
// empty cache is filled by a normal load first; when that load fails its
// error fragment is returned as is.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, rl := workspace(r)
	page, id, ok := pageAndPane(w, r, rl)
	if !ok {
		return
	}
	term := r.URL.Query().Get("q")
	brand := scopedBrand(rl, requestedBrand(r))
	if !s.cached(sess, id, brand) {
		tk := sess.Panes.Refresh(page.Name, id)
		loadedFrag, current := s.renderPane(r.Context(), sess, page, id, tk, brand)
		if !current {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if !s.cached(sess, id, brand) {
			api.RespondWithHTML(w, http.StatusOK, string(loadedFrag.HTML))
			return
		}
	}

	var f view.Fragment
	switch id {
	case pane.RawData:
		all, _ := sess.RawRows()
		subs, submitted := sess.SubmissionContext()
		fresh := view.NewFreshness(brand, subs, submitted)
		f = view.RawData(rl, all, search.Filter(term, all, search.RawRowFields), fresh, term)
	case pane.CorporateUnified:
		all, _ := sess.Unified()
		f = view.CorporateUnified(all, search.Filter(term, all, search.UnifiedRowFields), term)
	case pane.BrandApproved:
		all, _ := sess.Approved(brand)
		f = view.BrandApproved(brand, all, search.Filter(term, all, search.ApprovedRowFields))
	case pane.RawVendors:
		raw, _ := sess.RawVendors()
		all := raw.Flatten([]string{brand.String()})
		f = view.RawVendors(rl, brand, all, search.Filter(term, all, search.VendorFields), term)
	case pane.UnifiedVendors:
		all, _ := sess.Harmonized()
		raw, _ := sess.RawVendors()
		stats := view.NewVendorStats(raw, all)
		f = view.UnifiedVendors(all, search.Filter(term, all, search.HarmonizedVendorFields), stats, term)
	default:
		http.Error(w, constants.ErrUnknownPane, http.StatusNotFound)
		return
	}
	api.RespondWithHTML(w, http.StatusOK, string(f.HTML))
}

// cached reports whether the pane's rows are in the workspace.
func (s *Server) cached(sess *session.Session, id string, brand role.Brand) bool {
	var ok bool
	switch id {
	case pane.RawData:
		_, ok = sess.RawRows()
	case pane.CorporateUnified:
		_, ok = sess.Unified()
	case pane.BrandApproved:
		_, ok = sess.Approved(brand)
	case pane.RawVendors:
		_, ok = sess.RawVendors()
	case pane.UnifiedVendors:
		_, ok = sess.Harmonized()
	default:
		ok = true
	}
	return ok
}

// handleSubmissionRows renders the detail rows under the submissions list.
func (s *Server) handleSubmissionRows(w http.ResponseWriter, r *http.Request) {
	_, rl := workspace(r)
	if !pane.Financial.Allows(rl, pane.Submissions) {
		http.Error(w, constants.ErrForbiddenForRole, http.StatusForbidden)
		return
	}
	id := strings.TrimSpace(mux.Vars(r)["id"])
	rows, err := s.client.SubmissionRows(r.Context(), rl, id)
	var f view.Fragment
	if err != nil {
		f = view.LoadError(pane.Submissions, "submission rows", err)
	} else {
		f = view.SubmissionRows(id, rows)
	}
	api.RespondWithHTML(w, http.StatusOK, string(f.HTML))
}

// handleSetRole switches the workspace persona and reloads the page the
// switch was made from, or home when that page has nothing for the role.
func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
		return
	}
	sess, _ := workspace(r)
	next := role.Parse(r.PostFormValue("role"))
	s.sessions.SetRole(r.Context(), sess, next)
	api.SetWorkspaceCookies(w, sess, s.sessions.TTL())
	api.LogInfo("workspace %s switched role to %s", sess.ID, next)

	target := "/"
	if page, ok := refererPage(r); ok && len(page.Visible(next)) > 0 {
		target = "/" + page.Name
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// refererPage names the dashboard page a form was posted from.
func refererPage(r *http.Request) (pane.Page, bool) {
	if p := r.PostFormValue("page"); p != "" {
		return pane.Lookup(p)
	}
	ref := r.Referer()
	if ref == "" {
		return pane.Page{}, false
	}
	if i := strings.Index(ref, "://"); i >= 0 {
		ref = ref[i+3:]
		if j := strings.Index(ref, "/"); j >= 0 {
			ref = ref[j:]
		} else {
			ref = "/"
		}
	}
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	name := strings.Trim(ref, "/")
	if name == "" {
		name = pane.Home.Name
	}
	return pane.Lookup(name)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	sess, _ := workspace(r)
	s.events.HandleSSE(w, r, sess.ID)
}
