package export

import (
	"fmt"
	"time"

	"TmhnaDash/api/constants"
	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

var RawRowColumns = []Column[model.RawRow]{
	{Header: "Account Number", Value: func(r model.RawRow) any { return r.SourceAccountNumber }},
	{Header: "Account Name", Value: func(r model.RawRow) any { return r.SourceAccountName }},
	{Header: "Cost Center", Value: func(r model.RawRow) any { return r.SourceCostCenter }},
	{Header: "Amount", Value: func(r model.RawRow) any { return r.Amount }},
}

var UnifiedRowColumns = []Column[model.UnifiedRow]{
	{Header: "Unified Account", Value: func(r model.UnifiedRow) any { return r.UnifiedAccount }},
	{Header: "Unified Cost Center", Value: func(r model.UnifiedRow) any { return r.UnifiedCostCenter }},
	{Header: "Total Amount", Value: func(r model.UnifiedRow) any { return r.Amount }},
	{Header: "Contributing Brands", Value: func(r model.UnifiedRow) any { return r.ContributingBrands }},
}

var ApprovedRowColumns = []Column[model.ApprovedRow]{
	{Header: "Unified Account", Value: func(r model.ApprovedRow) any { return r.UnifiedAccount }},
	{Header: "Unified Cost Center", Value: func(r model.ApprovedRow) any { return r.UnifiedCostCenter }},
	{Header: "Amount", Value: func(r model.ApprovedRow) any { return r.Amount }},
}

// Kind names a downloadable resource.
type Kind string

const (
	KindRawData       Kind = "raw_data"
	KindApprovedData  Kind = "approved_data"
	KindUnifiedView   Kind = "corporate_unified_view"
	KindRawVendors    Kind = "raw_vendors"
	KindUnifiedVendor Kind = "unified_vendors"
)

// Filename builds the download name. Dates are UTC calendar dates.
func Filename(kind Kind, brand role.Brand, at time.Time, ext string) string {
	date := at.UTC().Format(constants.DateFormat)
	switch kind {
	case KindUnifiedView:
		return fmt.Sprintf("corporate_unified_view_%s.%s", date, ext)
	case KindRawVendors:
		if brand == "" {
			return "raw_vendors." + ext
		}
		return fmt.Sprintf("raw_vendors_%s.%s", brand, ext)
	case KindUnifiedVendor:
		return "unified_vendors." + ext
	default:
		return fmt.Sprintf("%s_%s_%s.%s", brand, kind, date, ext)
	}
}
