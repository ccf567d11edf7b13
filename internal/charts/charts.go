package charts

import (
	"errors"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"chandana/internal/domain"
	"chandana/internal/pipeline"
)

const (
	defaultWidth  = 800
	defaultHeight = 400
	barSpacing    = 6
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// Ratio axis limits for the HPOS scatter.
const (
	ratioAxisMin = 0.1
	ratioAxisMax = 0.9
)

var (
	primary = drawing.ColorFromHex("4F46E5")
	amber   = drawing.ColorFromHex("F97316")
)

// pointStyle renders points only, with no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth:     2,
		StrokeColor:     col,
		StrokeDashArray: []float64{6, 4},
	}
}

func bars(title string, values []chart.Value, w io.Writer) error {
	if len(values) == 0 {
		return ErrNoData
	}
	maxCount := 0.0
	for _, v := range values {
		maxCount = max(maxCount, v.Value)
	}
	if maxCount == 0 {
		maxCount = 1
	}
	barWidth := max(8, min(60, (defaultWidth-100)/len(values)-barSpacing))
	bc := chart.BarChart{
		Title:      title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: maxCount * 1.1}},
		Bars:       values,
	}
	return bc.Render(chart.PNG, w)
}

// AgeDistribution plots record counts per age group.
func AgeDistribution(w io.Writer, dist []pipeline.GroupCount) error {
	values := make([]chart.Value, len(dist))
	for i, g := range dist {
		values[i] = chart.Value{Label: g.Label, Value: float64(g.Count), Style: chart.Style{FillColor: primary, StrokeColor: primary}}
	}
	return bars("Age Distribution", values, w)
}

// AgeHistogram plots the detailed age histogram.
func AgeHistogram(w io.Writer, bins []pipeline.HistogramBin) error {
	values := make([]chart.Value, len(bins))
	for i, b := range bins {
		values[i] = chart.Value{Label: fmt.Sprintf("%.0f", b.Lo), Value: float64(b.Count), Style: chart.Style{FillColor: primary, StrokeColor: primary}}
	}
	return bars("Detailed Age Distribution", values, w)
}

// Districts plots test counts per district.
func Districts(w io.Writer, counts []pipeline.CategoryCount) error {
	values := make([]chart.Value, len(counts))
	for i, c := range counts {
		values[i] = chart.Value{Label: c.Name, Value: float64(c.Count), Style: chart.Style{FillColor: primary, StrokeColor: primary}}
	}
	return bars("Tests by District", values, w)
}

// Genders plots the gender split. Empty categories are left out.
func Genders(w io.Writer, counts []pipeline.CategoryCount) error {
	var values []chart.Value
	for _, c := range counts {
		if c.Count > 0 {
			values = append(values, chart.Value{Label: c.Name, Value: float64(c.Count)})
		}
	}
	if len(values) == 0 {
		return ErrNoData
	}
	pie := chart.PieChart{
		Title:  "Gender Distribution",
		Width:  defaultHeight,
		Height: defaultHeight,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}

// RatioScatter plots valid device ratios by sample index with the two
// control lines.
func RatioScatter(w io.Writer, ratios []float64, t domain.Thresholds) error {
	if len(ratios) == 0 {
		return ErrNoData
	}
	xs := make([]float64, len(ratios))
	for i := range xs {
		xs[i] = float64(i)
	}
	lastX := max(1, float64(len(ratios)-1))
	ch := chart.Chart{
		Title:      "HPOS Absorbance Ratios with Control Lines",
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Sample Index", Range: &chart.ContinuousRange{Min: 0, Max: lastX}},
		YAxis:      chart.YAxis{Name: "Absorbance Ratio", Range: &chart.ContinuousRange{Min: ratioAxisMin, Max: ratioAxisMax}},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "Device Ratio", Style: pointStyle(chart.ColorBlue), XValues: xs, YValues: ratios},
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("Lower Threshold (%.2f)", t.Low),
				Style:   lineStyle(chart.ColorRed),
				XValues: []float64{0, lastX},
				YValues: []float64{t.Low, t.Low},
			},
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("Upper Threshold (%.2f)", t.High),
				Style:   lineStyle(amber),
				XValues: []float64{0, lastX},
				YValues: []float64{t.High, t.High},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}
