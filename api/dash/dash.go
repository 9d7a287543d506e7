// Package dash is the dashboard's HTTP surface: the page shell, pane
// fragments, search, downloads and the mutation endpoints.
package dash

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"TmhnaDash/api"
	"TmhnaDash/api/actions"
	"TmhnaDash/api/backend"
	"TmhnaDash/api/view"
	"TmhnaDash/internal/audit"
	"TmhnaDash/internal/dashboard"
	"TmhnaDash/internal/jobs"
	"TmhnaDash/internal/metrics"
	"TmhnaDash/internal/notification"
	"TmhnaDash/internal/session"
)

// Deps are the collaborators a Server is built from. Client and Sessions
// are required.
type Deps struct {
	Client   *backend.Client
	Sessions *session.Manager
	Notifier notification.Notifier
	Audit    audit.Recorder
	Metrics  *metrics.Collectors
	Events   *dashboard.SSEServer
	KPIs     *jobs.KPIStore
	Location *time.Location
}

type Server struct {
	client   *backend.Client
	sessions *session.Manager
	notifier notification.Notifier
	actions  *actions.Service
	events   *dashboard.SSEServer
	kpis     *jobs.KPIStore
	metrics  *metrics.Collectors
	loc      *time.Location
	now      func() time.Time
	load     map[string]loader
}

func NewServer(d Deps) *Server {
	s := &Server{
		client:   d.Client,
		sessions: d.Sessions,
		notifier: d.Notifier,
		events:   d.Events,
		kpis:     d.KPIs,
		metrics:  d.Metrics,
		loc:      d.Location,
		now:      time.Now,
	}
	if s.kpis == nil {
		s.kpis = jobs.NewKPIStore()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	s.load = s.loaders()

	deps := actions.Deps{
		Notifier: d.Notifier,
		Audit:    d.Audit,
		Metrics:  d.Metrics,
		Sessions: d.Sessions,
	}
	if d.Events != nil {
		deps.Events = d.Events
	}
	s.actions = actions.New(d.Client, s, deps)
	return s
}

// Router wires every route. Workspace routes resolve the session cookie
// first; /metrics and /static do not.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(api.Recoverer, api.RequestLogger)

	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	router.PathPrefix("/static/").Handler(view.Static()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"success": true, "sessions": s.sessions.Count()}
		if s.events != nil {
			body["streams"] = len(s.events.Connected())
		}
		api.RespondWithPayload(w, http.StatusOK, body)
	}).Methods(http.MethodGet)

	ws := router.NewRoute().Subrouter()
	ws.Use(api.WorkspaceMiddleware(s.sessions))

	ws.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	ws.HandleFunc("/role", s.handleSetRole).Methods(http.MethodPost)

	ws.HandleFunc("/fragment/{page}/{pane}", s.handleFragment).Methods(http.MethodGet)
	ws.HandleFunc("/search/{page}/{pane}", s.handleSearch).Methods(http.MethodGet)
	ws.HandleFunc("/submissions/{id}/rows", s.handleSubmissionRows).Methods(http.MethodGet)
	ws.HandleFunc("/export/{brand}/{file}", s.handleExport).Methods(http.MethodGet)

	ws.HandleFunc("/actions/submit/{brand}", s.handleSubmit).Methods(http.MethodPost)
	ws.HandleFunc("/actions/request-mappings/{brand}", s.handleRequestMappings).Methods(http.MethodPost)
	ws.HandleFunc("/actions/submissions/{id}/status", s.handleSetStatus).Methods(http.MethodPost)
	ws.HandleFunc("/actions/mappings/accounts", s.handleSaveAccounts).Methods(http.MethodPost)
	ws.HandleFunc("/actions/mappings/cost-centers", s.handleSaveCostCenters).Methods(http.MethodPost)
	ws.HandleFunc("/actions/mappings/vendor-rules", s.handleSaveVendorRules).Methods(http.MethodPost)
	ws.HandleFunc("/actions/vendors/merge", s.handleMerge).Methods(http.MethodPost)
	ws.HandleFunc("/actions/reset", s.handleReset).Methods(http.MethodPost)
	ws.HandleFunc("/mappings/accounts/import", s.handleImportAccounts).Methods(http.MethodPost)
	ws.HandleFunc("/mappings/cost-centers/import", s.handleImportCostCenters).Methods(http.MethodPost)

	ws.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	ws.HandleFunc("/{page}", s.handlePage).Methods(http.MethodGet)
	return router
}
