package dashboard

import (
	"fmt"
	"html/template"
	"math"
	"time"

	"chandana/internal/domain"
	"chandana/internal/export"
	"chandana/internal/pipeline"
	"chandana/internal/snapshot"
)

type view string

const (
	viewOverview     view = "overview"
	viewDemographics view = "demographics"
	viewHPOS         view = "hpos"
	viewReports      view = "reports"
)

type tab struct {
	View   view
	Label  string
	Path   string
	Active bool
}

var tabs = []tab{
	{View: viewOverview, Label: "Overview", Path: "/"},
	{View: viewDemographics, Label: "Demographics", Path: "/demographics"},
	{View: viewHPOS, Label: "HPOS Analysis", Path: "/hpos"},
	{View: viewReports, Label: "Detailed Reports", Path: "/reports"},
}

type page struct {
	Title    string
	View     view
	Path     string
	Tabs     []tab
	Snap     *snapshot.Snapshot
	Summary  pipeline.Summary
	Warnings []string

	Deadline    string
	DaysLeft    int
	HasDeadline bool

	AgeCounts      []pipeline.GroupCount
	GenderCounts   []pipeline.CategoryCount
	DistrictCounts []pipeline.CategoryCount
	HasDistrict    bool

	HasRatioColumn bool
	QC             pipeline.QCSummary
	Thresholds     domain.Thresholds

	HPLCPreview domain.Table
	HPOSPreview domain.Table
	HPLCFile    string
	HPOSFile    string
}

func (s *Server) buildPage(v view, snap *snapshot.Snapshot) page {
	now := s.now().In(s.opts.Location)
	p := page{
		Title:    s.opts.PageTitle,
		View:     v,
		Snap:     snap,
		Summary:  snap.Summary(s.opts.Target, now),
		Warnings: snap.Warnings,
	}
	for _, t := range tabs {
		t.Active = t.View == v
		if t.Active {
			p.Path = t.Path
		}
		p.Tabs = append(p.Tabs, t)
	}
	if !s.opts.Deadline.IsZero() {
		p.HasDeadline = true
		p.Deadline = s.opts.Deadline.Format("2 January 2006")
		p.DaysLeft = daysUntil(now, s.opts.Deadline)
	}

	switch v {
	case viewDemographics:
		p.AgeCounts = pipeline.AgeDistribution(snap.HPLC.Groups, snap.HPLC.Records)
		p.GenderCounts = pipeline.GenderDistribution(snap.HPLC.Records)
		p.HasDistrict = snap.HPLC.HasDistrict
		if p.HasDistrict {
			p.DistrictCounts = pipeline.DistrictDistribution(snap.HPLC.Records)
		}
	case viewHPOS:
		p.HasRatioColumn = snap.HPOS.HasRatioColumn
		p.QC = snap.HPOS.Summary
		p.Thresholds = s.opts.Thresholds
	case viewReports:
		p.HPLCPreview = snap.HPLC.Table.Head(previewRows)
		p.HPOSPreview = snap.HPOS.Table.Head(previewRows)
		p.HPLCFile = export.Filename(export.HPLCPrefix, now)
		p.HPOSFile = export.Filename(export.HPOSPrefix, now)
	}
	return p
}

// daysUntil counts calendar days from now to deadline; negative once past.
func daysUntil(now, deadline time.Time) int {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = deadline.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(math.Round(end.Sub(today).Hours() / 24))
}

var funcs = template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"ratio": func(v float64) string {
		return fmt.Sprintf("%.4f", v)
	},
	"fraction": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
	"stamp":    func(t time.Time) string { return t.Format("2006-01-02 15:04:05 MST") },
	"bar": func(v float64) string {
		return fmt.Sprintf("%.1f", math.Max(0, math.Min(100, v)))
	},
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root {
  --bg: #fff; --fg: #1a1a2e; --card-bg: #f8f9fa; --border: #dee2e6;
  --table-alt: #f1f3f5; --muted: #6c757d; --accent: #4f46e5;
  --warn-bg: #fff3cd; --warn-fg: #664d03; --low: #dc3545; --ok: #28a745; --high: #fd7e14;
}
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--fg); line-height: 1.5; padding: 1rem; max-width: 1400px; margin: 0 auto; }
header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 1rem; }
header h1 { font-size: 1.5rem; }
header p { color: var(--muted); font-size: .8125rem; }
nav { display: flex; gap: .25rem; border-bottom: 1px solid var(--border); margin-bottom: 1.25rem; }
nav a { padding: .5rem .875rem; color: var(--muted); text-decoration: none; border-bottom: 2px solid transparent; }
nav a.active { color: var(--accent); border-bottom-color: var(--accent); font-weight: 600; }
h2 { font-size: 1.25rem; margin-bottom: .75rem; }
h3 { font-size: 1rem; margin: 1rem 0 .5rem; }
.notice { background: var(--warn-bg); color: var(--warn-fg); border-radius: 6px; padding: .5rem .75rem; margin-bottom: .5rem; font-size: .875rem; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: .75rem; margin-bottom: 1.25rem; }
.card { background: var(--card-bg); border: 1px solid var(--border); border-radius: 8px; padding: .75rem; }
.card .value { font-size: 1.5rem; font-weight: 700; }
.card .label { font-size: .75rem; color: var(--muted); text-transform: uppercase; }
.card .delta { font-size: .8125rem; color: var(--ok); }
.card-low .value { color: var(--low); }
.card-ok .value { color: var(--ok); }
.card-high .value { color: var(--high); }
.progress { background: var(--border); border-radius: 4px; height: .5rem; margin-bottom: 1.25rem; }
.progress div { background: var(--accent); height: 100%; border-radius: 4px; }
.charts { display: grid; grid-template-columns: repeat(2, 1fr); gap: 1rem; margin-bottom: 1.25rem; }
@media (max-width: 768px) { .charts { grid-template-columns: 1fr; } }
.charts img, .wide { max-width: 100%; border: 1px solid var(--border); border-radius: 8px; }
table { border-collapse: collapse; font-size: .8125rem; margin-bottom: 1rem; }
th, td { padding: .375rem .625rem; text-align: left; border-bottom: 1px solid var(--border); white-space: nowrap; }
tr:nth-child(even) { background: var(--table-alt); }
.scroll { overflow-x: auto; }
.null { color: var(--muted); font-style: italic; }
button, .button { background: var(--accent); color: #fff; border: 0; border-radius: 4px; padding: .375rem .75rem; font-size: .875rem; cursor: pointer; text-decoration: none; display: inline-block; }
</style>
</head>
<body>
<header>
  <div>
    <h1>{{.Title}}</h1>
    <p>HPLC and HPOS Tests Analysis &middot; snapshot {{.Snap.ID}} loaded {{stamp .Snap.LoadedAt}} (HPLC: {{.Snap.HPLCOrigin}}, HPOS: {{.Snap.HPOSOrigin}})</p>
  </div>
  <form method="post" action="/refresh">
    <input type="hidden" name="next" value="{{.Path}}">
    <button type="submit">Refresh Data</button>
  </form>
</header>
<nav>
{{- range .Tabs}}
  <a href="{{.Path}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>
{{- end}}
</nav>
{{range .Warnings}}<div class="notice">{{.}}</div>
{{end}}
{{- if eq .View "overview"}}
<h2>Project Overview</h2>
<div class="cards">
  <div class="card"><div class="label">Total HPLC Tests</div><div class="value">{{.Summary.TotalHPLC}}</div><div class="delta">+{{.Summary.WeeklyDelta}} this week{{if not .Summary.WeeklyExact}} (est.){{end}}</div></div>
  <div class="card"><div class="label">Total HPOS Tests</div><div class="value">{{.Summary.TotalHPOS}}</div></div>
  <div class="card"><div class="label">Progress %</div><div class="value">{{pct .Summary.ProgressPct}}</div><div class="delta">target {{.Summary.Target}}</div></div>
  <div class="card"><div class="label">Signed HPLC Tests</div><div class="value">{{.Summary.Signed}}</div></div>
  {{- if .HasDeadline}}
  <div class="card"><div class="label">Completion Deadline</div><div class="value">{{.DaysLeft}}d</div><div class="delta">{{.Deadline}}</div></div>
  {{- end}}
</div>
<div class="progress"><div style="width: {{bar .Summary.ProgressPct}}%"></div></div>
<h3>Quick Statistics</h3>
<div class="charts">
  <img src="/charts/age.png" alt="Age Distribution">
  <img src="/charts/gender.png" alt="Gender Distribution">
</div>
{{- else if eq .View "demographics"}}
<h2>Demographics Analysis</h2>
<h3>Age Distribution</h3>
<table>
  <thead><tr><th>Age Group</th><th>Count</th></tr></thead>
  <tbody>{{range .AgeCounts}}<tr><td>{{.Label}}</td><td>{{.Count}}</td></tr>{{end}}</tbody>
</table>
<img class="wide" src="/charts/histogram.png" alt="Detailed Age Distribution">
<h3>Gender Distribution</h3>
<table>
  <thead><tr><th>Gender</th><th>Count</th></tr></thead>
  <tbody>{{range .GenderCounts}}<tr><td>{{.Name}}</td><td>{{.Count}}</td></tr>{{end}}</tbody>
</table>
{{- if .HasDistrict}}
<h3>District-wise Test Distribution</h3>
<img class="wide" src="/charts/districts.png" alt="Tests by District">
<table>
  <thead><tr><th>District</th><th>Number of Tests</th></tr></thead>
  <tbody>{{range .DistrictCounts}}<tr><td>{{.Name}}</td><td>{{.Count}}</td></tr>{{end}}</tbody>
</table>
{{- end}}
{{- else if eq .View "hpos"}}
<h2>HPOS Analysis</h2>
{{- if and .HasRatioColumn .QC.Valid}}
<img class="wide" src="/charts/ratios.png" alt="HPOS Absorbance Ratios">
<div class="cards">
  <div class="card card-low"><div class="label">Below Lower Threshold</div><div class="value">{{.QC.Below}}</div><div class="delta">&lt; {{ratio .Thresholds.Low}}</div></div>
  <div class="card card-ok"><div class="label">Within Normal Range</div><div class="value">{{.QC.InRange}}</div><div class="delta">{{fraction .QC.InRangeFraction}} of valid</div></div>
  <div class="card card-high"><div class="label">Above Upper Threshold</div><div class="value">{{.QC.Above}}</div><div class="delta">&gt; {{ratio .Thresholds.High}}</div></div>
</div>
<table>
  <thead><tr><th>Statistic</th><th>Value</th></tr></thead>
  <tbody>
    <tr><td>Valid samples</td><td>{{.QC.Valid}} of {{.QC.Total}}</td></tr>
    <tr><td>Mean ratio</td><td>{{ratio .QC.Mean}}</td></tr>
    <tr><td>Std deviation</td><td>{{ratio .QC.StdDev}}</td></tr>
    <tr><td>Min ratio</td><td>{{ratio .QC.Min}}</td></tr>
    <tr><td>Max ratio</td><td>{{ratio .QC.Max}}</td></tr>
  </tbody>
</table>
{{- end}}
{{- else if eq .View "reports"}}
<h2>Detailed Reports</h2>
<h3>HPLC Data Sample</h3>
<div class="scroll">{{template "table" .HPLCPreview}}</div>
<h3>HPOS Data Sample</h3>
<div class="scroll">{{template "table" .HPOSPreview}}</div>
<h3>Download Data</h3>
<p>
  <a class="button" href="/export/hplc.csv" download="{{.HPLCFile}}">Download HPLC Data</a>
  <a class="button" href="/export/hpos.csv" download="{{.HPOSFile}}">Download HPOS Data</a>
</p>
{{- end}}
</body>
</html>
{{define "table"}}<table>
  <thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
  <tbody>{{range .Rows}}<tr>{{range .}}<td>{{if .Null}}<span class="null">None</span>{{else}}{{.Value}}{{end}}</td>{{end}}</tr>{{end}}</tbody>
</table>{{end}}`
