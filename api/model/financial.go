// Package model holds the transient copies of backend-owned entities.
package model

import (
	"strings"
	"time"
)

// Submission status values. Transitions are owned by the backend.
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

// StatusOrder is the fixed display order for status breakdowns.
var StatusOrder = []string{StatusSubmitted, StatusApproved, StatusRejected, StatusDraft}

type RawRow struct {
	Brand               string `json:"brand"`
	SourceAccountNumber string `json:"source_account_number"`
	SourceAccountName   string `json:"source_account_name"`
	SourceCostCenter    string `json:"source_cost_center"`
	Amount              Amount `json:"amount"`
	LoadedAt            string `json:"loaded_at,omitempty"`
}

type PreviewRecord struct {
	SourceAccount         string `json:"source_account"`
	SourceAccountName     string `json:"source_account_name"`
	UnifiedAccount        string `json:"unified_account"`
	UnifiedAccountName    string `json:"unified_account_name"`
	UnifiedCostCenter     string `json:"unified_cost_center"`
	UnifiedCostCenterName string `json:"unified_cost_center_name"`
	Amount                Amount `json:"amount"`
	LoadedAt              string `json:"loaded_at,omitempty"`
}

type Preview struct {
	Brand                 string          `json:"brand"`
	Records               []PreviewRecord `json:"records"`
	RecordCount           int             `json:"record_count"`
	VarianceCount         int             `json:"variance_count"`
	BlockingVarianceCount int             `json:"blocking_variance_count"`
	CanSubmit             bool            `json:"can_submit"`
}

type Variance struct {
	VarianceType        string `json:"variance_type"`
	Brand               string `json:"brand"`
	UnifiedAccount      string `json:"unified_account,omitempty"`
	UnifiedCostCenter   string `json:"unified_cost_center,omitempty"`
	SourceAccountNumber string `json:"source_account_number,omitempty"`
	SourceAccountName   string `json:"source_account_name,omitempty"`
	SourceCostCenter    string `json:"source_cost_center,omitempty"`
	Message             string `json:"message"`
}

type QualityIssue struct {
	Type                string `json:"type"`
	Brand               string `json:"brand"`
	SourceAccountNumber string `json:"source_account_number,omitempty"`
	SourceAccountName   string `json:"source_account_name,omitempty"`
	SourceCostCenter    string `json:"source_cost_center,omitempty"`
	Message             string `json:"message"`
}

// QualityReport lists the data-quality issues for one brand.
type QualityReport struct {
	Brand      string         `json:"brand"`
	IssueCount int            `json:"issue_count"`
	Issues     []QualityIssue `json:"issues"`
}

type Submission struct {
	SubmissionID string `json:"submission_id"`
	Brand        string `json:"brand"`
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
}

// Time parses the backend timestamp; the zero time is returned when it
// cannot be parsed.
func (s Submission) Time() time.Time {
	return ParseTimestamp(s.Timestamp)
}

type SubmissionRow struct {
	SubmissionID      string `json:"submission_id,omitempty"`
	Brand             string `json:"brand,omitempty"`
	SourceAccount     string `json:"source_account"`
	UnifiedAccount    string `json:"unified_account"`
	UnifiedCostCenter string `json:"unified_cost_center"`
	Amount            Amount `json:"amount"`
}

type ApprovedRow struct {
	SourceAccount     string `json:"source_account"`
	UnifiedAccount    string `json:"unified_account"`
	UnifiedCostCenter string `json:"unified_cost_center"`
	Amount            Amount `json:"amount"`
}

type UnifiedRow struct {
	UnifiedAccount        string   `json:"unified_account"`
	UnifiedAccountName    string   `json:"unified_account_name,omitempty"`
	UnifiedCostCenter     string   `json:"unified_cost_center"`
	UnifiedCostCenterName string   `json:"unified_cost_center_name,omitempty"`
	Amount                Amount   `json:"amount"`
	ContributingBrands    []string `json:"contributing_brands"`
}

// MutationResult is the acknowledgment body of every financial POST.
type MutationResult struct {
	OK           bool   `json:"ok"`
	Success      bool   `json:"success"`
	Status       string `json:"status,omitempty"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
	SubmissionID string `json:"submission_id,omitempty"`
	RecordCount  int    `json:"record_count,omitempty"`
}

// Accepted reports whether the backend acknowledged the mutation.
func (m MutationResult) Accepted() bool {
	return m.Error == "" && (m.OK || m.Success || m.Status == "success")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the ISO variants the backend emits.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
