package dash

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"TmhnaDash/api"
	"TmhnaDash/api/actions"
	"TmhnaDash/api/constants"
	"TmhnaDash/api/mapping"
	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/api/view"
)

// actionRequest parses the form and builds the request an action runs
// under. The posting page decides which affected panes are re-rendered.
func actionRequest(w http.ResponseWriter, r *http.Request, fallback pane.Page) (actions.Request, bool) {
	if err := r.ParseForm(); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
		return actions.Request{}, false
	}
	sess, rl := workspace(r)
	page, ok := refererPage(r)
	if !ok {
		page = fallback
	}
	confirm, _ := strconv.ParseBool(r.PostFormValue("confirm"))
	return actions.Request{Session: sess, Role: rl, Page: page, Confirm: confirm}, true
}

// respond writes an action result. Refused actions answer 422 with the
// same body shape so the page can show the message.
func respond(w http.ResponseWriter, res actions.Result) {
	status := http.StatusOK
	if res.Error != "" {
		status = http.StatusUnprocessableEntity
		if res.Error == actions.ErrForbidden.Error() || res.Error == constants.ErrBrandOutOfScope {
			status = http.StatusForbidden
		}
	}
	api.RespondWithPayload(w, status, res)
}

func brandVar(w http.ResponseWriter, r *http.Request) (role.Brand, bool) {
	b, err := role.ParseBrand(mux.Vars(r)["brand"])
	if err != nil {
		api.RespondWithError(w, http.StatusNotFound, constants.ErrUnknownBrand)
		return "", false
	}
	return b, true
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	brand, ok := brandVar(w, r)
	if !ok {
		return
	}
	req, ok := actionRequest(w, r, pane.Financial)
	if !ok {
		return
	}
	respond(w, s.actions.Submit(r.Context(), req, brand))
}

func (s *Server) handleRequestMappings(w http.ResponseWriter, r *http.Request) {
	brand, ok := brandVar(w, r)
	if !ok {
		return
	}
	req, ok := actionRequest(w, r, pane.Financial)
	if !ok {
		return
	}
	count, _ := strconv.Atoi(r.PostFormValue("variance_count"))
	respond(w, s.actions.RequestMappings(r.Context(), req, brand, count))
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := actionRequest(w, r, pane.Financial)
	if !ok {
		return
	}
	respond(w, s.actions.SetStatus(r.Context(), req, mux.Vars(r)["id"], r.PostFormValue("status")))
}

// column returns the i-th value of a repeated form field.
func column(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func longest(cols ...[]string) int {
	n := 0
	for _, c := range cols {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}

func (s *Server) handleSaveAccounts(w http.ResponseWriter, r *http.Request) {
	req, ok := actionRequest(w, r, pane.Mappings)
	if !ok {
		return
	}
	src := r.PostForm["source_account_name"]
	num := r.PostForm["unified_account_number"]
	name := r.PostForm["unified_account_name"]
	rows := make([]model.AccountMapping, longest(src, num, name))
	for i := range rows {
		rows[i] = model.AccountMapping{
			SourceAccountName:    column(src, i),
			UnifiedAccountNumber: column(num, i),
			UnifiedAccountName:   column(name, i),
		}
	}
	respond(w, s.actions.SaveAccountMappings(r.Context(), req, rows))
}

func (s *Server) handleSaveCostCenters(w http.ResponseWriter, r *http.Request) {
	req, ok := actionRequest(w, r, pane.Mappings)
	if !ok {
		return
	}
	src := r.PostForm["source_cost_center"]
	code := r.PostForm["unified_cost_center"]
	name := r.PostForm["unified_cost_center_name"]
	rows := make([]model.CostCenterMapping, longest(src, code, name))
	for i := range rows {
		rows[i] = model.CostCenterMapping{
			SourceCostCenter:      column(src, i),
			UnifiedCostCenter:     column(code, i),
			UnifiedCostCenterName: column(name, i),
		}
	}
	respond(w, s.actions.SaveCostCenterMappings(r.Context(), req, rows))
}

func (s *Server) handleSaveVendorRules(w http.ResponseWriter, r *http.Request) {
	req, ok := actionRequest(w, r, pane.Mappings)
	if !ok {
		return
	}
	rules := model.DefaultVendorRules()
	var bad []string
	if v := r.PostFormValue("confidence_threshold"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			bad = append(bad, "confidence_threshold")
		}
		rules.ConfidenceThreshold = n
	}
	for field, dst := range map[string]*float64{"name_weight": &rules.NameWeight, "address_weight": &rules.AddressWeight} {
		v := r.PostFormValue(field)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			bad = append(bad, field)
		}
		*dst = f
	}
	if len(bad) > 0 {
		res := actions.Result{Error: constants.ErrVendorRulesRange, Fields: map[string]string{}}
		for _, f := range bad {
			res.Fields[f] = "number"
		}
		respond(w, res)
		return
	}
	respond(w, s.actions.SaveVendorRules(r.Context(), req, rules))
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	req, ok := actionRequest(w, r, pane.Vendors)
	if !ok {
		return
	}
	var ids []string
	for _, v := range r.PostForm["vendor_ids"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	respond(w, s.actions.MergeVendors(r.Context(), req, model.MergeRequest{
		VendorIDs:      ids,
		UnifiedName:    r.PostFormValue("unified_name"),
		UnifiedAddress: r.PostFormValue("unified_address"),
		UnifiedPhone:   r.PostFormValue("unified_phone"),
	}))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	req, ok := actionRequest(w, r, pane.Financial)
	if !ok {
		return
	}
	respond(w, s.actions.ResetState(r.Context(), req))
}

// readUpload returns the parsed rows of the posted mapping file.
func readUpload(w http.ResponseWriter, r *http.Request) ([][]string, bool) {
	_, rl := workspace(r)
	if !rl.Privileged() {
		respond(w, actions.Result{Error: actions.ErrForbidden.Error()})
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, mapping.MaxUpload)
	if err := r.ParseMultipartForm(mapping.MaxUpload); err != nil {
		respond(w, actions.Result{Error: constants.ErrInvalidRequestBody})
		return nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respond(w, actions.Result{Error: constants.ErrInvalidRequestBody})
		return nil, false
	}
	defer file.Close()
	rows, err := mapping.ReadRows(header.Filename, file)
	if err != nil {
		api.LogError("read mapping upload %s: %v", header.Filename, err)
		respond(w, actions.Result{Error: err.Error()})
		return nil, false
	}
	return rows, true
}

// Imports fill the editable table; nothing is saved until the user saves.
func (s *Server) handleImportAccounts(w http.ResponseWriter, r *http.Request) {
	rows, ok := readUpload(w, r)
	if !ok {
		return
	}
	ms, err := mapping.AccountMappings(rows)
	if err != nil {
		respond(w, actions.Result{Error: err.Error()})
		return
	}
	api.LogInfo("imported %d account mapping rows", len(ms))
	respond(w, actions.Result{Fragments: []view.Fragment{view.AccountMappings(ms, true)}})
}

func (s *Server) handleImportCostCenters(w http.ResponseWriter, r *http.Request) {
	rows, ok := readUpload(w, r)
	if !ok {
		return
	}
	ms, err := mapping.CostCenterMappings(rows)
	if err != nil {
		respond(w, actions.Result{Error: err.Error()})
		return
	}
	api.LogInfo("imported %d cost center mapping rows", len(ms))
	respond(w, actions.Result{Fragments: []view.Fragment{view.CostCenterMappings(ms, true)}})
}
