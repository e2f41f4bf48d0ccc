// Package charts turns decoded time series into per-category chart series. The
// functions are pure and never fail: empty input gives an empty result.
package charts

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
)

// Palette is cycled by selection index.
var Palette = []string{
	"#6366f1",
	"#f59e0b",
	"#10b981",
	"#ef4444",
	"#8b5cf6",
	"#06b6d4",
	"#f97316",
	"#ec4899",
	"#84cc16",
	"#14b8a6",
}

const bandAlpha = 0.15

type DisplayOptions struct {
	ShowConfidenceInterval bool `json:"showConfidenceInterval"`
	ShowBaseModel          bool `json:"showBaseModel"`
	ShowDeltaPlot          bool `json:"showDeltaPlot"`
}

// DefaultDisplayOptions shows the absolute full model with its interval.
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{ShowConfidenceInterval: true}
}

// Point is one sample; a nil Y is a gap in the line.
type Point struct {
	X float64  `json:"x"`
	Y *float64 `json:"y"`
}

type Series struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// Band is a confidence interval drawn as the area between two lines.
type Band struct {
	Upper Series `json:"upper"`
	Lower Series `json:"lower"`
	// FillColor is the category colour at low opacity.
	FillColor string `json:"fillColor"`
}

// CategorySeries holds everything drawn for one category. Nil members are not
// drawn.
type CategorySeries struct {
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Band     *Band   `json:"band,omitempty"`
	Main     *Series `json:"main,omitempty"`
	Base     *Series `json:"base,omitempty"`
}

type timed interface {
	Time() float64
}

// FilterByTimeRange keeps rows whose time lies in window, bounds included.
func FilterByTimeRange[T timed](rows []T, window models.TimeRange) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if window.Contains(row.Time()) {
			out = append(out, row)
		}
	}
	return out
}

// labels names the series of one category.
type labels struct {
	upper, lower, main, base string
}

func categoryLabels(category string) labels {
	return labels{
		upper: category + " (Upper CI)",
		lower: category + " (Lower CI)",
		main:  category,
		base:  category + " (Base)",
	}
}

var transfusionLabels = labels{
	upper: "Upper CI",
	lower: "Lower CI",
	main:  "Full Model",
	base:  "Base Model",
}

// fields picks the value columns for the current mode. In delta mode a missing
// bound falls back to the delta itself, giving a zero-width band.
type fields struct {
	main, lower, upper, base func(models.Prediction) *float64
}

func fieldsFor(opts DisplayOptions) fields {
	if opts.ShowDeltaPlot {
		return fields{
			main:  func(p models.Prediction) *float64 { return p.DeltaFull },
			lower: func(p models.Prediction) *float64 { return orDelta(p.DeltaLower, p) },
			upper: func(p models.Prediction) *float64 { return orDelta(p.DeltaUpper, p) },
			base:  func(p models.Prediction) *float64 { return p.DeltaBase },
		}
	}
	return fields{
		main:  func(p models.Prediction) *float64 { return p.PredValFull },
		lower: func(p models.Prediction) *float64 { return p.LowerFull },
		upper: func(p models.Prediction) *float64 { return p.UpperFull },
		base:  func(p models.Prediction) *float64 { return p.PredValBase },
	}
}

func orDelta(bound *float64, p models.Prediction) *float64 {
	if bound != nil {
		return bound
	}
	return p.DeltaFull
}

func buildSeries(label string, preds []models.Prediction, value func(models.Prediction) *float64) (Series, bool) {
	s := Series{Label: label, Points: make([]Point, len(preds))}
	present := false
	for i, p := range preds {
		v := value(p)
		s.Points[i] = Point{X: p.TimeFromTransfusion, Y: v}
		if v != nil {
			present = true
		}
	}
	return s, present
}

func hasBothBounds(preds []models.Prediction, f fields) bool {
	for _, p := range preds {
		if f.lower(p) != nil && f.upper(p) != nil {
			return true
		}
	}
	return false
}

// prepareCategory builds the series of one category from its in-window rows.
// It reports false when nothing would be drawn.
func prepareCategory(category string, color string, l labels, preds []models.Prediction, opts DisplayOptions) (CategorySeries, bool) {
	if len(preds) == 0 {
		return CategorySeries{}, false
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].TimeFromTransfusion < preds[j].TimeFromTransfusion
	})

	f := fieldsFor(opts)
	out := CategorySeries{Category: category, Color: color}

	if opts.ShowConfidenceInterval && hasBothBounds(preds, f) {
		upper, _ := buildSeries(l.upper, preds, f.upper)
		lower, _ := buildSeries(l.lower, preds, f.lower)
		out.Band = &Band{Upper: upper, Lower: lower, FillColor: hexToRGBA(color, bandAlpha)}
	}
	if main, ok := buildSeries(l.main, preds, f.main); ok {
		out.Main = &main
	}
	if opts.ShowBaseModel {
		if base, ok := buildSeries(l.base, preds, f.base); ok {
			out.Base = &base
		}
	}

	if out.Band == nil && out.Main == nil && out.Base == nil {
		return CategorySeries{}, false
	}
	return out, true
}

// PrepareVisualization builds one CategorySeries per selected category, in
// selection order. Rows of unselected categories are ignored and selected
// categories without rows in window are skipped.
func PrepareVisualization(rows []models.VisualizationDataRow, selected []string, window models.TimeRange, opts DisplayOptions) []CategorySeries {
	groups := make(map[string][]models.Prediction)
	for _, row := range FilterByTimeRange(rows, window) {
		groups[row.CompValue] = append(groups[row.CompValue], row.Prediction)
	}

	out := make([]CategorySeries, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for i, category := range selected {
		if seen[category] {
			continue
		}
		seen[category] = true
		cs, ok := prepareCategory(category, ColorAt(i), categoryLabels(category), groups[category], opts)
		if ok {
			out = append(out, cs)
		}
	}
	return out
}

// PrepareTransfusion is PrepareVisualization for the whole cohort: at most one
// series set, drawn in the first palette colour.
func PrepareTransfusion(rows []models.TransfusionDataRow, window models.TimeRange, opts DisplayOptions) []CategorySeries {
	filtered := FilterByTimeRange(rows, window)
	preds := make([]models.Prediction, len(filtered))
	for i, row := range filtered {
		preds[i] = row.Prediction
	}

	out := make([]CategorySeries, 0, 1)
	if cs, ok := prepareCategory("", ColorAt(0), transfusionLabels, preds, opts); ok {
		out = append(out, cs)
	}
	return out
}

func ColorAt(index int) string {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// hexToRGBA converts "#rrggbb" to a CSS rgba() string. Anything else is
// returned unchanged.
func hexToRGBA(hex string, alpha float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return hex
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", v>>16&0xff, v>>8&0xff, v&0xff, strconv.FormatFloat(alpha, 'f', -1, 64))
}
