// Package chart turns datasets into Chart.js configurations. Drawing is
// done in the browser; a dataset without data renders a text empty state.
package chart

import (
	"bytes"
	"html/template"
	"unicode/utf8"

	"TmhnaDash/api/constants"
)

type Kind string

const (
	Doughnut      Kind = "doughnut"
	Bar           Kind = "bar"
	HorizontalBar Kind = "horizontalBar"
)

const (
	// DefaultTopN bounds ranked horizontal bars.
	DefaultTopN = 8
	labelBudget = 20
	labelKeep   = 17
	percentMax  = 100
)

// Palette used across the dashboard.
const (
	Green = "#10B981"
	Red   = "#EF4444"
	Amber = "#F59E0B"
	Blue  = "#3b82f6"
	Slate = "#94a3b8"
)

type Point struct {
	Label string
	Value float64
	Color string
}

type Spec struct {
	Kind        Kind
	Title       string
	SeriesLabel string
	Points      []Point
	// Percent draws a 0–100 value axis with "%" ticks.
	Percent bool
	// TopN keeps the first N points of a horizontal bar; 0 means DefaultTopN.
	TopN  int
	Empty string
}

// IsEmpty reports whether the spec has no points, or only zero values.
func (s Spec) IsEmpty() bool {
	for _, p := range s.Points {
		if p.Value != 0 {
			return false
		}
	}
	return true
}

// Truncate shortens labels longer than 20 characters to 17 plus "...".
func Truncate(label string) string {
	if utf8.RuneCountInString(label) <= labelBudget {
		return label
	}
	r := []rune(label)
	return string(r[:labelKeep]) + "..."
}

func (s Spec) points() []Point {
	if s.Kind != HorizontalBar {
		return s.Points
	}
	n := s.TopN
	if n <= 0 {
		n = DefaultTopN
	}
	pts := s.Points
	if len(pts) > n {
		pts = pts[:n]
	}
	out := make([]Point, len(pts))
	for i, p := range pts {
		p.Label = Truncate(p.Label)
		out[i] = p
	}
	return out
}

// Config builds the Chart.js configuration object.
func Config(s Spec) map[string]any {
	pts := s.points()
	labels := make([]string, len(pts))
	data := make([]float64, len(pts))
	colors := make([]string, len(pts))
	for i, p := range pts {
		labels[i] = p.Label
		data[i] = p.Value
		colors[i] = p.Color
		if colors[i] == "" {
			colors[i] = Blue
		}
	}
	seriesLabel := s.SeriesLabel
	if seriesLabel == "" {
		seriesLabel = "Count"
	}
	dataset := map[string]any{
		"label":           seriesLabel,
		"data":            data,
		"backgroundColor": colors,
	}
	plugins := map[string]any{"legend": map[string]any{"display": s.Kind == Doughnut}}
	if s.Title != "" {
		plugins["title"] = map[string]any{"display": true, "text": s.Title}
	}
	options := map[string]any{
		"responsive":          true,
		"maintainAspectRatio": true,
		"plugins":             plugins,
	}
	chartType := string(s.Kind)
	switch s.Kind {
	case Doughnut:
		dataset["borderWidth"] = 0
		options["cutout"] = "65%"
	case Bar:
		dataset["borderRadius"] = 4
		options["scales"] = map[string]any{
			"y": map[string]any{"beginAtZero": true},
			"x": map[string]any{"grid": map[string]any{"display": false}},
		}
	case HorizontalBar:
		chartType = string(Bar)
		dataset["borderRadius"] = 6
		options["indexAxis"] = "y"
		x := map[string]any{"beginAtZero": true}
		if s.Percent {
			x["max"] = percentMax
			x["ticks"] = map[string]any{"precision": 0}
		}
		options["scales"] = map[string]any{
			"x": x,
			"y": map[string]any{"grid": map[string]any{"display": false}},
		}
	}
	cfg := map[string]any{
		"type":    chartType,
		"data":    map[string]any{"labels": labels, "datasets": []any{dataset}},
		"options": options,
	}
	if s.Percent {
		// The browser adds the "%" tick callback for charts carrying this flag.
		cfg["percentAxis"] = true
	}
	return cfg
}

var chartTmpl = template.Must(template.New("chart").Parse(
	`{{if .Empty}}<p class="text-muted" style="text-align: center;">{{.Empty}}</p>` +
		`{{else}}<div class="chart-container"><canvas id="{{.ID}}"></canvas>` +
		`<script type="application/json" data-chart-for="{{.ID}}">{{.Config}}</script></div>{{end}}`))

// Render returns the markup for one chart container.
func Render(canvasID string, s Spec) template.HTML {
	data := struct {
		ID     string
		Empty  string
		Config map[string]any
	}{ID: canvasID}
	if s.IsEmpty() {
		data.Empty = s.Empty
		if data.Empty == "" {
			data.Empty = constants.MsgNoChartData
		}
	} else {
		data.Config = Config(s)
	}
	var buf bytes.Buffer
	if err := chartTmpl.Execute(&buf, data); err != nil {
		return template.HTML(`<p class="text-muted">` + template.HTMLEscapeString(err.Error()) + `</p>`)
	}
	return template.HTML(buf.String())
}
