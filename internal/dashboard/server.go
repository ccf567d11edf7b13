package dashboard

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"chandana/internal/charts"
	"chandana/internal/domain"
	"chandana/internal/export"
	"chandana/internal/pipeline"
	"chandana/internal/snapshot"
	"chandana/internal/storage/sqlite"
)

const (
	previewRows      = 20
	histogramBins    = 20
	defaultLoadLimit = 20
	maxLoadLimit     = 500
)

// Snapshots is satisfied by *snapshot.Cache.
type Snapshots interface {
	Get(ctx context.Context) *snapshot.Snapshot
	Refresh(ctx context.Context) *snapshot.Snapshot
}

type Options struct {
	PageTitle  string
	Target     int
	Deadline   time.Time
	Thresholds domain.Thresholds
	Location   *time.Location
}

type Server struct {
	snaps Snapshots
	db    *sql.DB
	opts  Options
	tmpl  *template.Template
	now   func() time.Time
}

func NewServer(snaps Snapshots, db *sql.DB, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Thresholds == (domain.Thresholds{}) {
		opts.Thresholds = domain.DefaultThresholds
	}
	return &Server{
		snaps: snaps,
		db:    db,
		opts:  opts,
		tmpl:  template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate)),
		now:   time.Now,
	}
}

// SetClock replaces the time source.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logRequests)

	r.Get("/", s.handleView(viewOverview))
	r.Get("/demographics", s.handleView(viewDemographics))
	r.Get("/hpos", s.handleView(viewHPOS))
	r.Get("/reports", s.handleView(viewReports))

	r.Get("/charts/{name}.png", s.handleChart)
	r.Get("/export/{dataset}.csv", s.handleExport)
	r.Post("/refresh", s.handleRefresh)

	r.Get("/api/summary", s.handleSummary)
	r.Get("/api/loads", s.handleLoads)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("http request method=%s path=%s duration=%s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleView(v view) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.snaps.Get(r.Context())
		p := s.buildPage(v, snap)

		var buf bytes.Buffer
		if err := s.tmpl.Execute(&buf, p); err != nil {
			log.Printf("dashboard render error view=%s: %v", v, err)
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap := s.snaps.Get(r.Context())

	var buf bytes.Buffer
	var err error
	switch name {
	case "age":
		err = charts.AgeDistribution(&buf, pipeline.AgeDistribution(snap.HPLC.Groups, snap.HPLC.Records))
	case "gender":
		err = charts.Genders(&buf, pipeline.GenderDistribution(snap.HPLC.Records))
	case "histogram":
		err = charts.AgeHistogram(&buf, pipeline.AgeHistogram(ages(snap.HPLC.Records), histogramBins))
	case "districts":
		if !snap.HPLC.HasDistrict {
			err = charts.ErrNoData
			break
		}
		err = charts.Districts(&buf, pipeline.DistrictDistribution(snap.HPLC.Records))
	case "ratios":
		err = charts.RatioScatter(&buf, pipeline.ValidRatios(snap.HPOS.Samples), s.opts.Thresholds)
	default:
		http.NotFound(w, r)
		return
	}
	if errors.Is(err, charts.ErrNoData) {
		http.Error(w, "No data to plot", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("chart render error name=%s: %v", name, err)
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.snaps.Get(r.Context())

	var (
		table  domain.Table
		prefix string
	)
	switch chi.URLParam(r, "dataset") {
	case "hplc":
		table, prefix = snap.HPLC.Table, export.HPLCPrefix
	case "hpos":
		table, prefix = snap.HPOS.Table, export.HPOSPrefix
	default:
		http.NotFound(w, r)
		return
	}

	data, err := export.Bytes(table)
	if err != nil {
		log.Printf("export error dataset=%s: %v", prefix, err)
		http.Error(w, "Failed to export data", http.StatusInternalServerError)
		return
	}
	filename := export.Filename(prefix, s.now().In(s.opts.Location))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap := s.snaps.Refresh(r.Context())
	log.Printf("manual refresh id=%s", snap.ID)

	next := r.FormValue("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

type qcJSON struct {
	Total           int     `json:"total"`
	Valid           int     `json:"valid"`
	Below           int     `json:"below"`
	InRange         int     `json:"in_range"`
	Above           int     `json:"above"`
	Invalid         int     `json:"invalid"`
	InRangeFraction float64 `json:"in_range_fraction"`
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"std_dev"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
}

type summaryJSON struct {
	SnapshotID  string    `json:"snapshot_id"`
	LoadedAt    time.Time `json:"loaded_at"`
	HPLCOrigin  string    `json:"hplc_origin"`
	HPOSOrigin  string    `json:"hpos_origin"`
	TotalHPLC   int       `json:"total_hplc"`
	TotalHPOS   int       `json:"total_hpos"`
	Signed      int       `json:"signed"`
	Target      int       `json:"target"`
	ProgressPct float64   `json:"progress_pct"`
	WeeklyDelta int       `json:"weekly_delta"`
	WeeklyExact bool      `json:"weekly_exact"`
	Deadline    string    `json:"deadline,omitempty"`
	QC          *qcJSON   `json:"qc,omitempty"`
	Warnings    []string  `json:"warnings"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.snaps.Get(r.Context())
	sum := snap.Summary(s.opts.Target, s.now())

	out := summaryJSON{
		SnapshotID:  snap.ID,
		LoadedAt:    snap.LoadedAt,
		HPLCOrigin:  string(snap.HPLCOrigin),
		HPOSOrigin:  string(snap.HPOSOrigin),
		TotalHPLC:   sum.TotalHPLC,
		TotalHPOS:   sum.TotalHPOS,
		Signed:      sum.Signed,
		Target:      sum.Target,
		ProgressPct: sum.ProgressPct,
		WeeklyDelta: sum.WeeklyDelta,
		WeeklyExact: sum.WeeklyExact,
		Warnings:    append([]string{}, snap.Warnings...),
	}
	if !s.opts.Deadline.IsZero() {
		out.Deadline = s.opts.Deadline.Format("2006-01-02")
	}
	if snap.HPOS.HasRatioColumn {
		qc := snap.HPOS.Summary
		out.QC = &qcJSON{
			Total: qc.Total, Valid: qc.Valid(), Below: qc.Below, InRange: qc.InRange, Above: qc.Above,
			Invalid: qc.Invalid, InRangeFraction: qc.InRangeFraction,
			Mean: qc.Mean, StdDev: qc.StdDev, Min: qc.Min, Max: qc.Max,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type loadJSON struct {
	ID         int64     `json:"id"`
	SnapshotID string    `json:"snapshot_id"`
	Dataset    string    `json:"dataset"`
	Origin     string    `json:"origin"`
	Rows       int       `json:"rows"`
	Warnings   []string  `json:"warnings"`
	LoadedAt   time.Time `json:"loaded_at"`
}

func (s *Server) handleLoads(w http.ResponseWriter, r *http.Request) {
	limit := defaultLoadLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLoadLimit)
	}

	out := []loadJSON{}
	if s.db != nil {
		events, err := sqlite.GetRecentLoadEvents(s.db, limit)
		if err != nil {
			log.Printf("load history error: %v", err)
			http.Error(w, "Failed to read load history", http.StatusInternalServerError)
			return
		}
		for _, e := range events {
			warnings := []string{}
			if e.Warnings != "" {
				warnings = strings.Split(e.Warnings, "\n")
			}
			out = append(out, loadJSON{
				ID: e.ID, SnapshotID: e.SnapshotID, Dataset: e.Dataset, Origin: string(e.Origin),
				Rows: e.Rows, Warnings: warnings, LoadedAt: e.LoadedAt,
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func ages(records []domain.TestRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.AgeInYears
	}
	return out
}
