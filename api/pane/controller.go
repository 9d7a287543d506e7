package pane

import "sync"

// Ticket identifies one pane load. It stays current until the same pane is
// loaded again; a ticket from Activate also goes stale once the page
// activates another pane.
type Ticket struct {
	Page  string
	Pane  string
	Gen   uint64
	bound bool
}

// Tracker holds the active pane per page and a generation counter per pane
// for one workspace.
type Tracker struct {
	mu     sync.Mutex
	active map[string]string
	gens   map[string]uint64
}

func NewTracker() *Tracker {
	return &Tracker{
		active: make(map[string]string),
		gens:   make(map[string]uint64),
	}
}

func key(page, pane string) string { return page + "/" + pane }

// Activate makes pane the active one on page and starts a new load of it.
func (t *Tracker) Activate(page, pane string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[page] = pane
	k := key(page, pane)
	t.gens[k]++
	return Ticket{Page: page, Pane: pane, Gen: t.gens[k], bound: true}
}

// Refresh starts a new load of pane without changing which pane is active.
// Used for sections of untabbed pages and post-mutation refetches, which
// write into hidden containers too.
func (t *Tracker) Refresh(page, pane string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key(page, pane)
	t.gens[k]++
	return Ticket{Page: page, Pane: pane, Gen: t.gens[k]}
}

// Current reports whether a load's result may still be written.
func (t *Tracker) Current(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if active, ok := t.active[tk.Page]; tk.bound && ok && active != tk.Pane {
		return false
	}
	return t.gens[key(tk.Page, tk.Pane)] == tk.Gen
}

// Active is the pane page last activated, or "" before any.
func (t *Tracker) Active(page string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active[page]
}

// Invalidate makes every outstanding load stale, e.g. after a role switch.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.gens {
		t.gens[k]++
	}
}
