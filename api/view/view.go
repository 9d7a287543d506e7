// Package view renders dashboard panes into HTML fragments. Renderers are
// pure: they take the active role and already-fetched data and never call
// the backend.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"TmhnaDash/api/backend"
	"TmhnaDash/api/chart"
	"TmhnaDash/api/constants"
	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
	"TmhnaDash/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("view").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

//go:embed static
var staticFS embed.FS

// Static serves the stylesheet under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

var funcs = template.FuncMap{
	"chart":   chart.Render,
	"brand":   brandDisplay,
	"upper":   strings.ToUpper,
	"shortID": shortID,
	"when":    formatTimestamp,
	"pct":     func(f float64) string { return fmt.Sprintf("%.1f", f) },
	"join":    strings.Join,
	"total":   func(d decimal.Decimal) string { return d.StringFixed(2) },
	"paneID":  Target,
	"or":      orDefault,
	"dict":    dict,
}

// Fragment is rendered markup for one pane container.
type Fragment struct {
	Target string        `json:"target"`
	HTML   template.HTML `json:"html"`
}

// Target is the container id of a pane.
func Target(paneID string) string {
	return "pane-" + paneID
}

func render(paneID, name string, data any) Fragment {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.WithFields(map[string]interface{}{"template": name, "pane": paneID}).WithError(err).Error("render failed")
		return Message(paneID, fmt.Sprintf(constants.FormatErrorLoading, paneTitle(paneID)))
	}
	return Fragment{Target: Target(paneID), HTML: template.HTML(buf.String())}
}

// Message renders a single muted line into a pane.
func Message(paneID, msg string) Fragment {
	return render(paneID, "message", msg)
}

// LoadError renders a failed load. Backend-reported errors read as
// Unauthorized; transport and decode failures name the resource.
func LoadError(paneID, resource string, err error) Fragment {
	if backend.IsUnauthorized(err) {
		return Message(paneID, constants.MsgUnauthorized)
	}
	return Message(paneID, fmt.Sprintf(constants.FormatErrorLoading, resource))
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd argument count")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

func orDefault(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func paneTitle(id string) string {
	return strings.ReplaceAll(id, "-", " ")
}

func brandDisplay(s string) string {
	if b, err := role.ParseBrand(s); err == nil {
		return b.Display()
	}
	return s
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func formatTimestamp(s string) string {
	t := model.ParseTimestamp(s)
	if t.IsZero() {
		return s
	}
	return t.Format(constants.DateTimeFormat)
}

// Freshness decides which rows were loaded since the brand last submitted.
type Freshness struct {
	since     time.Time
	submitted map[string]bool
}

// NewFreshness takes the brand's latest submission time from subs. Without
// a prior submission no row is highlighted.
func NewFreshness(brand role.Brand, subs []model.Submission, submitted map[string]bool) Freshness {
	var since time.Time
	for _, s := range subs {
		if !strings.EqualFold(s.Brand, brand.String()) {
			continue
		}
		if t := s.Time(); t.After(since) {
			since = t
		}
	}
	return Freshness{since: since, submitted: submitted}
}

// IsNew reports whether a row is highlighted. It never affects what can be
// submitted.
func (f Freshness) IsNew(account, loadedAt string) bool {
	if f.since.IsZero() || f.submitted[account] {
		return false
	}
	t := model.ParseTimestamp(loadedAt)
	return !t.IsZero() && t.After(f.since)
}
