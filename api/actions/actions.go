// Package actions runs dashboard mutations: pre-flight, confirmation, the
// backend POST and an immediate re-render of every pane the mutation can
// have changed.
package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"TmhnaDash/api/backend"
	"TmhnaDash/api/constants"
	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/api/variance"
	"TmhnaDash/api/view"
	"TmhnaDash/internal/audit"
	"TmhnaDash/internal/logger"
	"TmhnaDash/internal/metrics"
	"TmhnaDash/internal/notification"
	"TmhnaDash/internal/session"
)

// Action names, also used as metric and audit labels.
const (
	ActSubmit          = "submit"
	ActApprove         = "approve"
	ActReject          = "reject"
	ActSaveAccounts    = "save_account_mappings"
	ActSaveCostCenters = "save_cost_center_mappings"
	ActSaveVendorRules = "save_vendor_rules"
	ActRequestMappings = "request_mappings"
	ActMergeVendors    = "merge_vendors"
	ActResetState      = "reset_state"
)

// Panes each action can change.
var (
	submitPanes      = []string{pane.Preview, pane.History, pane.Variances}
	reviewPanes      = []string{pane.Submissions, pane.BrandApproved, pane.CorporateUnified, pane.Variances}
	accountPanes     = []string{pane.AccountMappings, pane.Variances, pane.DataQuality}
	costCenterPanes  = []string{pane.CostCenterMappings, pane.Variances, pane.DataQuality}
	vendorRulesPanes = []string{pane.VendorRules, pane.UnifiedVendors}
	mergePanes       = []string{pane.UnifiedVendors, pane.RawVendors}
	requestPanes     = []string{pane.Preview, pane.MappingRequests}
)

// PaneRenderer loads and renders one pane. ok is false when a newer load
// of the same pane superseded this one.
type PaneRenderer interface {
	RenderPane(ctx context.Context, s *session.Session, page pane.Page, paneID string, tk pane.Ticket) (f view.Fragment, ok bool)
}

// Broadcaster delivers stale-pane hints to other workspaces.
type Broadcaster interface {
	NotifyStale(sessionIDs []string, page string, panes []string) int
}

type Request struct {
	Session *session.Session
	Role    role.Role
	// Page is the page the action was posted from; only its panes are
	// re-rendered into the response.
	Page    pane.Page
	Confirm bool
}

// Result is the JSON answer of every action endpoint. A Prompt means
// nothing was sent and the user must confirm.
type Result struct {
	Prompt    string            `json:"prompt,omitempty"`
	Message   string            `json:"message,omitempty"`
	Error     string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Fragments []view.Fragment   `json:"fragments,omitempty"`
}

type Deps struct {
	Notifier notification.Notifier
	Audit    audit.Recorder
	Metrics  *metrics.Collectors
	Events   Broadcaster
	Sessions *session.Manager
}

type Service struct {
	client   *backend.Client
	panes    PaneRenderer
	validate *validator.Validate
	deps     Deps
}

func New(client *backend.Client, panes PaneRenderer, deps Deps) *Service {
	if deps.Audit == nil {
		deps.Audit = audit.LogRecorder{}
	}
	return &Service{
		client:   client,
		panes:    panes,
		validate: validator.New(),
		deps:     deps,
	}
}

// ErrForbidden is returned for an action outside the role's scope.
var ErrForbidden = errors.New(constants.ErrForbiddenForRole)

func prompt(msg string) Result { return Result{Prompt: msg} }

func failed(msg string) Result { return Result{Error: msg} }

// finish records the outcome and, on success, re-renders the affected panes
// and hints other workspaces.
func (s *Service) finish(ctx context.Context, action string, req Request, target string, err error, msg string, affected []string) Result {
	s.deps.Metrics.ObserveMutation(action, err)

	entry := audit.Entry{
		Action:  action,
		Role:    req.Role.String(),
		Target:  target,
		Outcome: "ok",
		Message: msg,
		At:      time.Now(),
	}
	if req.Session != nil {
		entry.SessionID = req.Session.ID
	}
	if err != nil {
		entry.Outcome = "error"
		entry.Message = backend.Message(err)
		s.record(ctx, entry)
		logger.WithFields(map[string]interface{}{"action": action, "target": target}).WithError(err).Warn("mutation failed")
		return failed(backend.Message(err))
	}

	res := Result{Message: msg}
	res.Fragments = s.refresh(ctx, req, affected)
	entry.Refreshed = affected
	s.record(ctx, entry)
	s.broadcast(req, affected)
	return res
}

func (s *Service) record(ctx context.Context, e audit.Entry) {
	if err := s.deps.Audit.Record(ctx, e); err != nil {
		logger.LogError("actions", "record", "audit write", e.Action, err)
	}
}

// refresh re-renders the affected panes that the posting page shows to
// req.Role. Loads run concurrently; one failing pane renders its own
// error without affecting the others.
func (s *Service) refresh(ctx context.Context, req Request, affected []string) []view.Fragment {
	if s.panes == nil || req.Session == nil {
		return nil
	}
	var ids []string
	for _, id := range affected {
		if req.Page.Allows(req.Role, id) {
			ids = append(ids, id)
		}
	}
	frags := make([]view.Fragment, len(ids))
	ok := make([]bool, len(ids))
	tasks := make([]func(context.Context) error, len(ids))
	for i, id := range ids {
		tk := req.Session.Panes.Refresh(req.Page.Name, id)
		tasks[i] = func(ctx context.Context) error {
			frags[i], ok[i] = s.panes.RenderPane(ctx, req.Session, req.Page, id, tk)
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

func (s *Service) broadcast(req Request, affected []string) {
	if s.deps.Events == nil || s.deps.Sessions == nil || req.Session == nil {
		return
	}
	others := s.deps.Sessions.Others(req.Session.ID)
	if len(others) == 0 {
		return
	}
	if n := s.deps.Events.NotifyStale(others, req.Page.Name, affected); n > 0 {
		s.deps.Metrics.ObserveStale()
	}
}

// ownBrand checks that req.Role is the controller of brand.
func ownBrand(r role.Role, brand role.Brand) error {
	own, ok := r.Brand()
	if !ok || own != brand {
		return errors.New(constants.ErrBrandOutOfScope)
	}
	return nil
}

// Submit sends the brand's preview to corporate. Blocking variances found
// in a fresh load stop it before any request.
func (s *Service) Submit(ctx context.Context, req Request, brand role.Brand) Result {
	if err := ownBrand(req.Role, brand); err != nil {
		return failed(err.Error())
	}
	vs, err := s.client.Variances(ctx, req.Role)
	if err != nil {
		logger.WithFields(map[string]interface{}{"brand": brand.String()}).WithError(err).Warn("submit pre-flight skipped")
	} else if n := variance.BlockingFor(brand, vs); n > 0 {
		res := failed(fmt.Sprintf(constants.FormatBlockingPreflight, n))
		res.Fragments = s.refresh(ctx, req, []string{pane.Preview})
		return res
	}
	if !req.Confirm {
		return prompt(fmt.Sprintf(constants.FormatConfirmSubmit, brand.Upper()))
	}
	ack, err := s.client.Submit(ctx, req.Role, brand)
	msg := fmt.Sprintf(constants.FormatSubmitted, brand.Upper())
	if err == nil && ack.RecordCount > 0 {
		msg = fmt.Sprintf("Successfully submitted %d records to corporate.", ack.RecordCount)
	}
	return s.finish(ctx, ActSubmit, req, brand.String(), err, msg, submitPanes)
}

type statusChange struct {
	Status string `validate:"oneof=APPROVED REJECTED"`
}

// SetStatus approves or rejects a submission. The transition itself is
// decided by the backend.
func (s *Service) SetStatus(ctx context.Context, req Request, id, status string) Result {
	if !req.Role.IsCorporate() {
		return failed(ErrForbidden.Error())
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if err := s.validate.Struct(statusChange{Status: status}); err != nil || strings.TrimSpace(id) == "" {
		return failed(constants.ErrInvalidStatus)
	}
	action := ActApprove
	verb := "approved"
	if status == model.StatusRejected {
		action, verb = ActReject, "rejected"
	}
	if !req.Confirm {
		return prompt(fmt.Sprintf(constants.FormatConfirmStatus, shortID(id), verb))
	}
	_, err := s.client.UpdateSubmissionStatus(ctx, req.Role, id, status)
	return s.finish(ctx, action, req, id, err, fmt.Sprintf(constants.FormatStatusUpdated, verb), reviewPanes)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// SaveAccountMappings replaces the account table with the complete rows.
func (s *Service) SaveAccountMappings(ctx context.Context, req Request, rows []model.AccountMapping) Result {
	if !req.Role.Privileged() {
		return failed(ErrForbidden.Error())
	}
	var keep []model.AccountMapping
	for _, m := range rows {
		if m.Complete() {
			keep = append(keep, m.Trimmed())
		}
	}
	if len(keep) == 0 {
		return failed(constants.ErrNoValidMappings)
	}
	if err := s.validate.Var(keep, "dive"); err != nil {
		return s.invalid(err, constants.ErrNoValidMappings)
	}
	if !req.Confirm {
		return prompt(constants.MsgConfirmSaveAccounts)
	}
	_, err := s.client.SaveAccountMappings(ctx, req.Role, keep)
	return s.finish(ctx, ActSaveAccounts, req, fmt.Sprintf("%d rows", len(keep)), err, constants.MsgMappingsSaved, accountPanes)
}

func (s *Service) SaveCostCenterMappings(ctx context.Context, req Request, rows []model.CostCenterMapping) Result {
	if !req.Role.Privileged() {
		return failed(ErrForbidden.Error())
	}
	var keep []model.CostCenterMapping
	for _, m := range rows {
		if m.Complete() {
			keep = append(keep, m.Trimmed())
		}
	}
	if len(keep) == 0 {
		return failed(constants.ErrNoValidMappings)
	}
	if err := s.validate.Var(keep, "dive"); err != nil {
		return s.invalid(err, constants.ErrNoValidMappings)
	}
	if !req.Confirm {
		return prompt(constants.MsgConfirmSaveCostCenters)
	}
	_, err := s.client.SaveCostCenterMappings(ctx, req.Role, keep)
	return s.finish(ctx, ActSaveCostCenters, req, fmt.Sprintf("%d rows", len(keep)), err, constants.MsgMappingsSaved, costCenterPanes)
}

func (s *Service) SaveVendorRules(ctx context.Context, req Request, rules model.VendorRules) Result {
	if !req.Role.Privileged() {
		return failed(ErrForbidden.Error())
	}
	if err := s.validate.Struct(rules); err != nil {
		return s.invalid(err, constants.ErrVendorRulesRange)
	}
	if !req.Confirm {
		return prompt(constants.MsgConfirmVendorRules)
	}
	_, err := s.client.SaveVendorRules(ctx, req.Role, rules)
	return s.finish(ctx, ActSaveVendorRules, req, "", err, constants.MsgVendorRulesSaved, vendorRulesPanes)
}

// RequestMappings records that the brand controller asked corporate for
// missing mappings. It is sent at most once per brand per workspace and
// needs no confirmation since no backend state changes.
func (s *Service) RequestMappings(ctx context.Context, req Request, brand role.Brand, blocking int) Result {
	if err := ownBrand(req.Role, brand); err != nil {
		return failed(err.Error())
	}
	if s.deps.Sessions != nil && req.Session != nil && !s.deps.Sessions.MarkNotice(ctx, req.Session, brand) {
		return Result{Message: fmt.Sprintf(constants.FormatMappingRequestRepeat, brand.Upper())}
	}
	var err error
	if s.deps.Notifier != nil {
		nr := notification.MappingRequest{
			Brand:         brand.String(),
			Role:          req.Role.String(),
			BlockingCount: blocking,
		}
		if req.Session != nil {
			nr.SessionID = req.Session.ID
		}
		err = s.deps.Notifier.NotifyMappingRequest(ctx, nr)
	}
	if err != nil && s.deps.Sessions != nil && req.Session != nil {
		s.deps.Sessions.ClearNotice(ctx, req.Session, brand)
	}
	return s.finish(ctx, ActRequestMappings, req, brand.String(), err, fmt.Sprintf(constants.FormatMappingRequestSent, brand.Upper()), requestPanes)
}

func (s *Service) MergeVendors(ctx context.Context, req Request, mr model.MergeRequest) Result {
	if !req.Role.Privileged() {
		return failed(ErrForbidden.Error())
	}
	mr.UnifiedName = strings.TrimSpace(mr.UnifiedName)
	if len(mr.VendorIDs) < 2 {
		return failed(constants.ErrMergeNeedsTwo)
	}
	if mr.UnifiedName == "" {
		return failed(constants.ErrUnifiedNameNeeded)
	}
	if err := s.validate.Struct(mr); err != nil {
		return s.invalid(err, constants.ErrMergeNeedsTwo)
	}
	if !req.Confirm {
		return prompt(fmt.Sprintf(constants.FormatConfirmMerge, len(mr.VendorIDs), mr.UnifiedName))
	}
	_, err := s.client.MergeVendors(ctx, req.Role, mr)
	return s.finish(ctx, ActMergeVendors, req, mr.UnifiedName, err, constants.MsgVendorsMerged, mergePanes)
}

// ResetState clears the backend's submission history. Corporate only.
func (s *Service) ResetState(ctx context.Context, req Request) Result {
	if !req.Role.IsCorporate() {
		return failed(ErrForbidden.Error())
	}
	if !req.Confirm {
		return prompt(constants.MsgConfirmReset)
	}
	_, err := s.client.ResetState(ctx, req.Role)
	var affected []string
	for _, p := range pane.Financial.Panes {
		affected = append(affected, p.ID)
	}
	return s.finish(ctx, ActResetState, req, "", err, constants.MsgStateReset, affected)
}

// invalid maps validator errors to field → tag pairs.
func (s *Service) invalid(err error, msg string) Result {
	res := failed(msg)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		res.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			res.Fields[fe.Namespace()] = fe.Tag()
		}
	}
	return res
}
