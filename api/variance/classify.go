// Package variance classifies backend variance types. Both the submit guard
// and every variance display filter go through these functions.
package variance

import (
	"strings"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

const (
	UnmappedAccount    = "UNMAPPED_ACCOUNT"
	UnmappedCostCenter = "UNMAPPED_COST_CENTER"
	AmountMismatch     = "AMOUNT_MISMATCH"
	CountMismatch      = "COUNT_MISMATCH"
)

type Class int

const (
	NonBlocking Class = iota
	Blocking
)

// Classify maps a variance type to its class. Unknown types are non-blocking.
func Classify(varianceType string) Class {
	switch strings.ToUpper(strings.TrimSpace(varianceType)) {
	case UnmappedAccount, UnmappedCostCenter:
		return Blocking
	}
	return NonBlocking
}

func IsBlocking(varianceType string) bool { return Classify(varianceType) == Blocking }

// IsCrossBrand reports types only meaningful when comparing brands.
func IsCrossBrand(varianceType string) bool {
	switch strings.ToUpper(strings.TrimSpace(varianceType)) {
	case AmountMismatch, CountMismatch:
		return true
	}
	return false
}

// CountBlocking counts the variances that would block a submission.
func CountBlocking(vs []model.Variance) int {
	n := 0
	for _, v := range vs {
		if IsBlocking(v.VarianceType) {
			n++
		}
	}
	return n
}

// VisibleTo drops what a role may not see: brand controllers never see
// cross-brand types, nor variances of another brand.
func VisibleTo(r role.Role, vs []model.Variance) []model.Variance {
	brand, scoped := r.Brand()
	if !scoped {
		return vs
	}
	out := make([]model.Variance, 0, len(vs))
	for _, v := range vs {
		if IsCrossBrand(v.VarianceType) {
			continue
		}
		if v.Brand != "" && !strings.EqualFold(v.Brand, brand.String()) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// BlockingFor counts the blocking variances that gate a submission for brand.
func BlockingFor(brand role.Brand, vs []model.Variance) int {
	n := 0
	for _, v := range vs {
		if !IsBlocking(v.VarianceType) {
			continue
		}
		if v.Brand != "" && !strings.EqualFold(v.Brand, brand.String()) {
			continue
		}
		n++
	}
	return n
}
