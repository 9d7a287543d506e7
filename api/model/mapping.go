package model

import "strings"

type AccountMapping struct {
	SourceAccountName    string `json:"source_account_name" validate:"required"`
	UnifiedAccountNumber string `json:"unified_account_number" validate:"required"`
	UnifiedAccountName   string `json:"unified_account_name" validate:"required"`
}

// Complete reports whether every field is non-blank.
func (m AccountMapping) Complete() bool {
	return strings.TrimSpace(m.SourceAccountName) != "" &&
		strings.TrimSpace(m.UnifiedAccountNumber) != "" &&
		strings.TrimSpace(m.UnifiedAccountName) != ""
}

func (m AccountMapping) Trimmed() AccountMapping {
	return AccountMapping{
		SourceAccountName:    strings.TrimSpace(m.SourceAccountName),
		UnifiedAccountNumber: strings.TrimSpace(m.UnifiedAccountNumber),
		UnifiedAccountName:   strings.TrimSpace(m.UnifiedAccountName),
	}
}

type CostCenterMapping struct {
	SourceCostCenter      string `json:"source_cost_center" validate:"required"`
	UnifiedCostCenter     string `json:"unified_cost_center" validate:"required"`
	UnifiedCostCenterName string `json:"unified_cost_center_name" validate:"required"`
}

func (m CostCenterMapping) Complete() bool {
	return strings.TrimSpace(m.SourceCostCenter) != "" &&
		strings.TrimSpace(m.UnifiedCostCenter) != "" &&
		strings.TrimSpace(m.UnifiedCostCenterName) != ""
}

func (m CostCenterMapping) Trimmed() CostCenterMapping {
	return CostCenterMapping{
		SourceCostCenter:      strings.TrimSpace(m.SourceCostCenter),
		UnifiedCostCenter:     strings.TrimSpace(m.UnifiedCostCenter),
		UnifiedCostCenterName: strings.TrimSpace(m.UnifiedCostCenterName),
	}
}

// VendorRules are the matching parameters used by the backend harmonizer.
type VendorRules struct {
	ConfidenceThreshold int     `json:"confidence_threshold" validate:"gte=0,lte=100"`
	NameWeight          float64 `json:"name_weight" validate:"gte=0,lte=1"`
	AddressWeight       float64 `json:"address_weight" validate:"gte=0,lte=1"`
}

func DefaultVendorRules() VendorRules {
	return VendorRules{ConfidenceThreshold: 85, NameWeight: 0.7, AddressWeight: 0.3}
}
