package chart

import (
	"fmt"

	"TmhnaDash/api/constants"
	"TmhnaDash/api/model"
)

var statusColors = map[string]string{
	model.StatusDraft:     Slate,
	model.StatusSubmitted: Blue,
	model.StatusApproved:  Green,
	model.StatusRejected:  Red,
}

// Readiness is the mapped vs unmapped doughnut.
func Readiness(dq model.DataQualityAnalytics) Spec {
	if dq.TotalRawRows <= 0 {
		return Spec{Kind: Doughnut}
	}
	return Spec{
		Kind: Doughnut,
		Points: []Point{
			{Label: "Fully Mapped", Value: float64(dq.FullyMappedRows), Color: Green},
			{Label: "Unmapped", Value: float64(dq.UnmappedRows), Color: Red},
		},
	}
}

func VarianceByType(va model.VarianceAnalytics) Spec {
	s := Spec{Kind: Bar, Empty: "No variances"}
	for _, c := range model.SortedCounts(va.ByType) {
		s.Points = append(s.Points, Point{Label: c.Key, Value: float64(c.Count), Color: Blue})
	}
	return s
}

func SubmissionStatus(sa model.SubmissionAnalytics) Spec {
	s := Spec{Kind: Bar, Empty: "No submissions"}
	for _, c := range model.StatusCounts(sa.ByStatus) {
		s.Points = append(s.Points, Point{Label: c.Key, Value: float64(c.Count), Color: statusColors[c.Key]})
	}
	return s
}

func Harmonization(vh model.VendorHarmonizationAnalytics) Spec {
	return Spec{
		Kind:  Bar,
		Empty: constants.MsgNoVendorData,
		Points: []Point{
			{Label: "Harmonized Vendors", Value: float64(vh.HarmonizedCount), Color: Green},
			{Label: "Unmatched Vendors", Value: float64(vh.UnmatchedCount), Color: Amber},
		},
	}
}

// Confidence ranks the first vendors of the backend's confidence list.
func Confidence(vh model.VendorHarmonizationAnalytics) Spec {
	s := Spec{
		Kind:        HorizontalBar,
		SeriesLabel: "Confidence Score (%)",
		Percent:     true,
		TopN:        DefaultTopN,
		Empty:       constants.MsgNoVendorData,
	}
	for _, v := range vh.VendorConfidenceScores {
		name := v.VendorName
		if name == "" {
			name = "Unknown"
		}
		color := Amber
		if v.IsHarmonized {
			color = Green
		}
		s.Points = append(s.Points, Point{Label: name, Value: float64(v.ConfidenceScore), Color: color})
	}
	return s
}

// Coverage is the mapped vs unmapped horizontal bar titled with the mapped share.
func Coverage(dq model.DataQualityAnalytics) Spec {
	if dq.TotalRawRows <= 0 {
		return Spec{Kind: HorizontalBar}
	}
	return Spec{
		Kind:  HorizontalBar,
		Title: fmt.Sprintf("%.1f%% Coverage", dq.Coverage()),
		Points: []Point{
			{Label: "Mapped", Value: float64(dq.FullyMappedRows), Color: Green},
			{Label: "Unmapped", Value: float64(dq.UnmappedRows), Color: Red},
		},
	}
}
