package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/lacquerai/rankview/internal/chart"
	"github.com/lacquerai/rankview/internal/dataset"
	"github.com/lacquerai/rankview/internal/engine"
	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/lacquerai/rankview/internal/ranking"
	"github.com/lacquerai/rankview/internal/schema"
	"github.com/rs/zerolog/log"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

const chartWidth = 760

var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"coord": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"add":   func(a, b float64) float64 { return a + b },
	"sub":   func(a, b float64) float64 { return a - b },
}).ParseFS(templateFS, "templates/dashboard.html"))

// dashboardView is everything the dashboard page renders.
type dashboardView struct {
	Status     string
	StatusKind string
	Suggestion string
	Dataset    *schema.DatasetSummary
	Selected   string
	N          int
	Chart      *chart.SVGLayout
	ChartError string
}

// dashboard renders the page for the cached table and the metric chosen in
// the query string.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	view := s.buildView(r, r.URL.Query().Get("metric"))
	s.renderDashboard(w, http.StatusOK, view)
}

// uploadForm handles the dashboard upload form and re-renders the page with
// the outcome.
func (s *Server) uploadForm(w http.ResponseWriter, r *http.Request) {
	data, source, err := s.readUpload(w, r)
	if err == nil {
		_, _, err = s.loadTable(execcontext.Discard(r.Context()), data, source)
	}

	view := s.buildView(r, r.FormValue("metric"))
	if err != nil {
		status, resp := statusFor(err)
		view.Status = resp.Error
		view.StatusKind = "error"
		view.Suggestion = resp.Suggestion
		s.renderDashboard(w, status, view)
		return
	}

	view.Status = fmt.Sprintf("Loaded %s: %d rows, %d metric columns.",
		view.Dataset.Source, view.Dataset.Rows, len(view.Dataset.Metrics))
	view.StatusKind = "success"
	s.renderDashboard(w, http.StatusOK, view)
}

func (s *Server) buildView(r *http.Request, metric string) dashboardView {
	view := dashboardView{N: s.runner.Config().N}

	table := s.cache.Current()
	if table == nil {
		view.Status = fmt.Sprintf("Upload a CSV file with a %s column and MBTI percentage columns to get started.", s.runner.Config().Identifier)
		view.StatusKind = "info"
		return view
	}

	summary := s.summarize(table, true)
	view.Dataset = &summary

	if n, err := parseTop(r.FormValue("n")); err == nil && n > 0 {
		view.N = n
	}

	if len(summary.Metrics) == 0 {
		return view
	}
	view.Selected = summary.Metrics[0]
	for _, m := range summary.Metrics {
		if m == metric {
			view.Selected = m
		}
	}

	result, err := s.runner.Rank(execcontext.Discard(r.Context()), table, view.Selected, view.N)
	if err != nil {
		s.metrics.countRanking(view.Selected, "failed")
		var empty *ranking.EmptyResultError
		if errors.As(err, &empty) || engine.ErrorKind(err) == dataset.KindSchema {
			view.ChartError = err.Error()
		} else {
			view.ChartError = "could not draw the chart"
			log.Error().Err(err).Str("metric", view.Selected).Msg("Dashboard ranking failed")
		}
		return view
	}

	s.metrics.countRanking(view.Selected, "ok")
	layout := chart.LayoutSVG(result.Figure, chartWidth)
	view.Chart = &layout
	return view
}

func (s *Server) renderDashboard(w http.ResponseWriter, status int, view dashboardView) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		log.Error().Err(err).Msg("Failed to render dashboard")
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
