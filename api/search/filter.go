// Package search filters already-fetched rows in memory.
package search

import (
	"strings"

	"TmhnaDash/api/model"
)

// Filter keeps rows where any field contains term, case-insensitively. A
// blank term returns rows itself.
func Filter[T any](term string, rows []T, fields func(T) []string) []T {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		for _, f := range fields(row) {
			if strings.Contains(strings.ToLower(f), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func RawRowFields(r model.RawRow) []string {
	return []string{r.SourceAccountNumber, r.SourceAccountName, r.SourceCostCenter, r.Amount.String()}
}

// UnifiedRowFields joins contributing brands with spaces so "tmh raymond"
// style terms match.
func UnifiedRowFields(r model.UnifiedRow) []string {
	return []string{
		r.UnifiedAccount,
		r.UnifiedAccountName,
		r.UnifiedCostCenter,
		r.UnifiedCostCenterName,
		r.Amount.String(),
		strings.Join(r.ContributingBrands, " "),
	}
}

func ApprovedRowFields(r model.ApprovedRow) []string {
	return []string{r.SourceAccount, r.UnifiedAccount, r.UnifiedCostCenter, r.Amount.String()}
}

func VendorFields(v model.VendorRecord) []string {
	return []string{v.VendorName, v.Address, v.Phone, v.SourceBrand}
}

// HarmonizedVendorFields covers every scalar field; source_brands is a list
// and is not matched.
func HarmonizedVendorFields(v model.HarmonizedVendor) []string {
	return []string{
		v.UnifiedVendorID,
		v.UnifiedName,
		v.TMHSourceName,
		v.RaymondSourceName,
		v.UnifiedAddress,
		v.UnifiedPhone,
		v.Confidence.String(),
	}
}
