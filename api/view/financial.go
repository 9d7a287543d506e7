package view

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"TmhnaDash/api/constants"
	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/api/variance"
)

type rawRowView struct {
	model.RawRow
	New bool
}

// RawData renders the brand's raw rows. all is the unfiltered cache and
// shown the rows left after search.
func RawData(r role.Role, all, shown []model.RawRow, fresh Freshness, term string) Fragment {
	if len(all) == 0 {
		return Message(pane.RawData, constants.MsgNoRawData)
	}
	rows := make([]rawRowView, len(shown))
	for i, row := range shown {
		rows[i] = rawRowView{RawRow: row, New: fresh.IsNew(row.SourceAccountNumber, row.LoadedAt)}
	}
	brand, _ := r.Brand()
	return render(pane.RawData, "raw-data", map[string]any{
		"Rows":      rows,
		"Brand":     brand,
		"Term":      term,
		"NoResults": len(shown) == 0,
		"NoneFound": constants.MsgNoResults,
	})
}

type previewRowView struct {
	model.PreviewRecord
	New bool
}

// PreviewInput is everything the preview pane depends on.
type PreviewInput struct {
	Brand      role.Brand
	Preview    model.Preview
	Submitted  map[string]bool
	Fresh      Freshness
	NoticeSent bool
}

// Preview renders the submit area. Blocking variances replace the rows with
// the request-mappings control.
func Preview(in PreviewInput) Fragment {
	p := in.Preview
	if p.BlockingVarianceCount > 0 {
		return render(pane.Preview, "preview-blocked", map[string]any{
			"Message":    fmt.Sprintf(constants.FormatBlockingSubmit, p.BlockingVarianceCount),
			"Brand":      in.Brand,
			"Count":      p.BlockingVarianceCount,
			"NoticeSent": in.NoticeSent,
		})
	}

	var rows []previewRowView
	for _, rec := range p.Records {
		if in.Submitted[rec.SourceAccount] {
			continue
		}
		rows = append(rows, previewRowView{PreviewRecord: rec, New: in.Fresh.IsNew(rec.SourceAccount, rec.LoadedAt)})
	}
	if len(rows) == 0 {
		if len(in.Submitted) > 0 {
			return Message(pane.Preview, constants.MsgNoPreviewRecords)
		}
		return Message(pane.Preview, constants.MsgNoSubmittableRows)
	}
	return render(pane.Preview, "preview", map[string]any{
		"Rows":          rows,
		"Brand":         in.Brand,
		"VarianceCount": p.VarianceCount,
		"NoticeSent":    in.NoticeSent,
	})
}

// DataQuality lists issues across the given reports. The brand is shown
// only to the corporate role.
func DataQuality(r role.Role, reports []model.QualityReport) Fragment {
	var issues []model.QualityIssue
	for _, rep := range reports {
		issues = append(issues, rep.Issues...)
	}
	if len(issues) == 0 {
		return Message(pane.DataQuality, constants.MsgNoQualityIssues)
	}
	return render(pane.DataQuality, "data-quality", map[string]any{
		"Issues":    issues,
		"ShowBrand": r.IsCorporate(),
	})
}

type varianceRowView struct {
	model.Variance
	Blocking bool
}

// Variances renders the variance table for r. Brand roles see their own
// brand without cross-brand types.
func Variances(r role.Role, vs []model.Variance) Fragment {
	if len(vs) == 0 {
		return Message(pane.Variances, constants.MsgNoVariances)
	}
	if !r.IsCorporate() {
		vs = variance.VisibleTo(r, vs)
		if len(vs) == 0 {
			return Message(pane.Variances, constants.MsgNoBrandVariances)
		}
	}
	rows := make([]varianceRowView, len(vs))
	for i, v := range vs {
		rows[i] = varianceRowView{Variance: v, Blocking: variance.IsBlocking(v.VarianceType)}
	}
	blocking := variance.CountBlocking(vs)
	return render(pane.Variances, "variances", map[string]any{
		"Rows":          rows,
		"Corporate":     r.IsCorporate(),
		"Blocking":      blocking,
		"Informational": len(vs) - blocking,
	})
}

// History lists submissions as returned by the backend.
func History(subs []model.Submission) Fragment {
	if len(subs) == 0 {
		return Message(pane.History, constants.MsgNoHistory)
	}
	return render(pane.History, "history", subs)
}

// Submissions renders the corporate review queue, newest first.
func Submissions(subs []model.Submission) Fragment {
	if len(subs) == 0 {
		return Message(pane.Submissions, constants.MsgNoSubmissions)
	}
	sorted := make([]model.Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time().After(sorted[j].Time())
	})
	return render(pane.Submissions, "submissions", sorted)
}

// SubmissionRows renders the detail of one submission.
func SubmissionRows(id string, rows []model.SubmissionRow) Fragment {
	if len(rows) == 0 {
		return Message(pane.Submissions, constants.MsgNoSubmissionRows)
	}
	amounts := make([]model.Amount, len(rows))
	for i, row := range rows {
		amounts[i] = row.Amount
	}
	f := render(pane.Submissions, "submission-rows", map[string]any{
		"ID":    id,
		"Rows":  rows,
		"Total": model.SumAmounts(amounts),
	})
	f.Target = "submission-detail"
	return f
}

// BrandApproved renders one brand's approved rows with a total footer.
func BrandApproved(brand role.Brand, all, shown []model.ApprovedRow) Fragment {
	if len(all) == 0 {
		return Message(pane.BrandApproved, fmt.Sprintf(constants.FormatNoBrandApproved, brand.Upper()))
	}
	if len(shown) == 0 {
		return Message(pane.BrandApproved, constants.MsgNoResults)
	}
	return render(pane.BrandApproved, "brand-approved", map[string]any{
		"Brand":  brand,
		"Brands": role.AllBrands(),
		"Rows":   shown,
		"Total":  approvedTotal(shown),
	})
}

// CorporateUnified renders the cross-brand unified rows.
func CorporateUnified(all, shown []model.UnifiedRow, term string) Fragment {
	if len(all) == 0 {
		return Message(pane.CorporateUnified, constants.MsgNoUnified)
	}
	amounts := make([]model.Amount, len(shown))
	for i, row := range shown {
		amounts[i] = row.Amount
	}
	return render(pane.CorporateUnified, "corporate-unified", map[string]any{
		"Rows":      shown,
		"Total":     model.SumAmounts(amounts),
		"Term":      term,
		"NoResults": len(shown) == 0,
		"NoneFound": constants.MsgNoResults,
	})
}

func approvedTotal(rows []model.ApprovedRow) decimal.Decimal {
	amounts := make([]model.Amount, len(rows))
	for i, row := range rows {
		amounts[i] = row.Amount
	}
	return model.SumAmounts(amounts)
}
