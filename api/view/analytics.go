package view

import (
	"strconv"

	"TmhnaDash/api/chart"
	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
)

// Readiness bands for the data quality card.
const (
	readinessExcellent = 90
	readinessGood      = 70
)

type readinessBand struct {
	Color  string
	Status string
}

func bandFor(percent float64) readinessBand {
	switch {
	case percent >= readinessExcellent:
		return readinessBand{Color: chart.Green, Status: "✓ Excellent"}
	case percent >= readinessGood:
		return readinessBand{Color: chart.Amber, Status: "⚠ Good"}
	default:
		return readinessBand{Color: chart.Red, Status: "✗ Needs Attention"}
	}
}

// ReadinessStatus is the label shown under the readiness percentage.
func ReadinessStatus(percent float64) string {
	return bandFor(percent).Status
}

func DataQualitySummary(dq model.DataQualityAnalytics) Fragment {
	return render(pane.DataQuality, "analytics-data-quality", map[string]any{
		"Data":  dq,
		"Band":  bandFor(dq.ReadinessPercent),
		"Chart": chart.Readiness(dq),
	})
}

func VarianceSummary(va model.VarianceAnalytics) Fragment {
	return render(pane.Variances, "analytics-variances", map[string]any{
		"Data":    va,
		"ByType":  model.SortedCounts(va.ByType),
		"ByBrand": model.SortedCounts(va.ByBrand),
		"Chart":   chart.VarianceByType(va),
	})
}

func SubmissionSummary(sa model.SubmissionAnalytics) Fragment {
	avg := ""
	if sa.AvgTimeToApprove != nil {
		avg = strconv.FormatFloat(*sa.AvgTimeToApprove, 'f', -1, 64)
	}
	return render(pane.Submissions, "analytics-submissions", map[string]any{
		"Data":     sa,
		"ByStatus": model.StatusCounts(sa.ByStatus),
		"ByBrand":  model.SortedCounts(sa.ByBrand),
		"AvgHours": avg,
		"Chart":    chart.SubmissionStatus(sa),
	})
}

func MappingImpactSummary(mi model.MappingImpact) Fragment {
	return render(pane.MappingImpact, "analytics-mapping-impact", mi)
}

// MappingCoverage draws the mapped share of raw rows.
func MappingCoverage(dq model.DataQualityAnalytics) Fragment {
	return render(pane.VendorCoverage, "analytics-coverage", chart.Coverage(dq))
}

func VendorHarmonizationSummary(vh model.VendorHarmonizationAnalytics) Fragment {
	return render(pane.VendorHarmonization, "analytics-vendor-harmonization", map[string]any{
		"Data":       vh,
		"Split":      chart.Harmonization(vh),
		"Confidence": chart.Confidence(vh),
	})
}
