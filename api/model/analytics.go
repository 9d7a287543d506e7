package model

type DataQualityAnalytics struct {
	TotalRawRows     int     `json:"total_raw_rows"`
	FullyMappedRows  int     `json:"fully_mapped_rows"`
	UnmappedRows     int     `json:"unmapped_rows"`
	ReadinessPercent float64 `json:"readiness_percent"`
}

// Coverage is the share of raw rows that are fully mapped.
func (d DataQualityAnalytics) Coverage() float64 {
	if d.TotalRawRows <= 0 {
		return 0
	}
	return float64(d.FullyMappedRows) / float64(d.TotalRawRows) * 100
}

type VarianceAnalytics struct {
	TotalVariances int            `json:"total_variances"`
	ByType         map[string]int `json:"by_type"`
	ByBrand        map[string]int `json:"by_brand"`
}

type SubmissionAnalytics struct {
	TotalSubmissions int            `json:"total_submissions"`
	ByStatus         map[string]int `json:"by_status"`
	ByBrand          map[string]int `json:"by_brand"`
	// AvgTimeToApprove is in hours; nil when no submission was approved.
	AvgTimeToApprove *float64 `json:"avg_time_to_approve"`
}

type MappingImpact struct {
	TotalAccountMappings    int `json:"total_account_mappings"`
	TotalCostCenterMappings int `json:"total_cost_center_mappings"`
	CurrentVariances        int `json:"current_variances"`
	TotalSourceAccounts     int `json:"total_source_accounts"`
}

type VendorConfidenceScore struct {
	VendorName      string     `json:"vendor_name"`
	ConfidenceScore Confidence `json:"confidence_score"`
	IsHarmonized    bool       `json:"is_harmonized"`
}

type VendorHarmonizationAnalytics struct {
	HarmonizedCount        int                     `json:"harmonized_count"`
	UnmatchedCount         int                     `json:"unmatched_count"`
	VendorConfidenceScores []VendorConfidenceScore `json:"vendor_confidence_scores"`
}
