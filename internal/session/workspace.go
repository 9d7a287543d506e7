package session

import (
	"sort"
	"sync"
	"time"

	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
)

// Session is one browser's workspace: the active role, the rows last
// fetched for display, and the mapping-request flags. Cached slices are
// always replaced wholesale.
type Session struct {
	ID        string
	Role      role.Role
	CreatedAt time.Time
	ExpiresAt time.Time
	Panes     *pane.Tracker

	// commitMu orders pane commits against role switches.
	commitMu   sync.Mutex
	mu         sync.Mutex
	rawRows    []model.RawRow
	rawOK      bool
	unified    []model.UnifiedRow
	unifiedOK  bool
	approved   map[role.Brand][]model.ApprovedRow
	rawVendors model.RawVendors
	harmonized []model.HarmonizedVendor
	harmOK     bool
	notices    map[role.Brand]bool
	subs       []model.Submission
	submitted  map[string]bool
}

// Commit runs apply when tk is still current and reports whether it did.
// A role switch cannot land between the check and the write.
func (s *Session) Commit(tk pane.Ticket, apply func(*Session)) bool {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if !s.Panes.Current(tk) {
		return false
	}
	if apply != nil {
		apply(s)
	}
	return true
}

// CurrentRole is the role under the workspace lock.
func (s *Session) CurrentRole() role.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Role
}

func (s *Session) SetRawRows(rows []model.RawRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawRows, s.rawOK = rows, true
}

func (s *Session) RawRows() ([]model.RawRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawRows, s.rawOK
}

func (s *Session) SetUnified(rows []model.UnifiedRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unified, s.unifiedOK = rows, true
}

func (s *Session) Unified() ([]model.UnifiedRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unified, s.unifiedOK
}

func (s *Session) SetApproved(brand role.Brand, rows []model.ApprovedRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approved[brand] = rows
}

func (s *Session) Approved(brand role.Brand) ([]model.ApprovedRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.approved[brand]
	return rows, ok
}

func (s *Session) SetRawVendors(v model.RawVendors) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawVendors = v
}

func (s *Session) RawVendors() (model.RawVendors, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawVendors, s.rawVendors != nil
}

func (s *Session) SetHarmonized(v []model.HarmonizedVendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.harmonized, s.harmOK = v, true
}

func (s *Session) Harmonized() ([]model.HarmonizedVendor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.harmonized, s.harmOK
}

// SetSubmissionContext keeps the submissions and already-submitted accounts
// the raw rows were highlighted against, so a search can reuse them.
func (s *Session) SetSubmissionContext(subs []model.Submission, submitted map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs, s.submitted = subs, submitted
}

func (s *Session) SubmissionContext() ([]model.Submission, map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs, s.submitted
}

// NoticeSent reports whether the mapping request for brand went out.
func (s *Session) NoticeSent(brand role.Brand) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notices[brand]
}

func (s *Session) ClearCaches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawRows, s.rawOK = nil, false
	s.unified, s.unifiedOK = nil, false
	s.approved = make(map[role.Brand][]model.ApprovedRow)
	s.rawVendors = nil
	s.harmonized, s.harmOK = nil, false
	s.subs, s.submitted = nil, nil
}

func (s *Session) state() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{Role: s.Role.String()}
	for b, sent := range s.notices {
		if sent {
			st.Notices = append(st.Notices, b.String())
		}
	}
	sort.Strings(st.Notices)
	return st
}
