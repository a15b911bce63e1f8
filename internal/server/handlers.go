package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/lacquerai/rankview/internal/chart"
	"github.com/lacquerai/rankview/internal/dataset"
	"github.com/lacquerai/rankview/internal/engine"
	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/lacquerai/rankview/internal/schema"
	"github.com/rs/zerolog/log"
)

// httpError is a request problem unrelated to the table contents.
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

// loadTable validates data and makes it the current table. A rejected table
// empties the cache.
func (s *Server) loadTable(ctx execcontext.RunContext, data []byte, source string) (*dataset.Table, bool, error) {
	table, hit, err := s.cache.GetOrLoad(data, source, func(d []byte) (*dataset.Table, error) {
		loaded, err := s.runner.LoadBytes(ctx, d, source)
		if err != nil {
			return nil, err
		}
		return loaded.Table, nil
	})

	switch {
	case err != nil:
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		s.metrics.cachedRows.Set(0)
	case hit:
		s.metrics.uploads.WithLabelValues("cached").Inc()
	default:
		s.metrics.uploads.WithLabelValues("loaded").Inc()
		s.metrics.cachedRows.Set(float64(table.Nrow()))
	}

	return table, hit, err
}

// readUpload returns the uploaded table bytes and file name. Multipart
// requests carry the table in the "file" field; any other request body is
// taken as the CSV itself, named by the "name" query parameter.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	limit := s.config.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := readLimited(r.Body, limit)
		if err != nil {
			return nil, "", err
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload.csv"
		}
		return data, fileBase(name), nil
	}

	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, "", &httpError{status: http.StatusBadRequest, message: fmt.Sprintf("invalid upload: %v", err)}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", &httpError{status: http.StatusBadRequest, message: "no file uploaded: choose a CSV file first"}
	}
	defer file.Close()

	data, err := readLimited(file, limit)
	if err != nil {
		return nil, "", err
	}
	return data, fileBase(header.Filename), nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &httpError{status: http.StatusBadRequest, message: fmt.Sprintf("reading upload: %v", err)}
	}
	if int64(len(data)) > limit {
		return nil, &httpError{
			status:  http.StatusRequestEntityTooLarge,
			message: fmt.Sprintf("upload exceeds %d bytes", limit),
		}
	}
	return data, nil
}

// createDataset loads an uploaded table and returns its summary.
func (s *Server) createDataset(w http.ResponseWriter, r *http.Request) {
	data, source, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	table, hit, err := s.loadTable(execcontext.Discard(r.Context()), data, source)
	if err != nil {
		s.writeError(w, err)
		return
	}

	status := http.StatusCreated
	if hit {
		status = http.StatusOK
	}
	s.writeJSON(w, status, s.summarize(table, hit))
}

// currentDataset returns the summary of the cached table.
func (s *Server) currentDataset(w http.ResponseWriter, r *http.Request) {
	table := s.cache.Current()
	if table == nil {
		s.writeError(w, errNoDataset)
		return
	}
	s.writeJSON(w, http.StatusOK, s.summarize(table, true))
}

var errNoDataset = &httpError{status: http.StatusNotFound, message: "no table loaded: upload a CSV file first"}

// getRanking returns the top-N rows of a metric as JSON.
func (s *Server) getRanking(w http.ResponseWriter, r *http.Request) {
	metric := mux.Vars(r)["metric"]

	result, err := s.rank(r, metric)
	if err != nil {
		s.metrics.countRanking(metric, "failed")
		s.writeError(w, err)
		return
	}

	s.metrics.countRanking(metric, "ok")
	s.writeJSON(w, http.StatusOK, rankingResponse(result))
}

// getChart renders the ranked bar chart of a metric as PNG or SVG.
func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	metric, format := vars["metric"], vars["format"]
	start := time.Now()

	result, err := s.rank(r, metric)
	if err != nil {
		s.metrics.countRanking(metric, "failed")
		s.writeError(w, err)
		return
	}

	fig := result.Figure
	if v := r.URL.Query().Get("labels"); v != "" {
		labels, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, &httpError{status: http.StatusBadRequest, message: fmt.Sprintf("invalid labels value %q", v)})
			return
		}
		fig = chart.Build(result.Ranking, chart.Options{Labels: labels})
	}

	var buf bytes.Buffer
	if err := chart.WriteImage(fig, &buf, format); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.renderDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	s.metrics.countRanking(metric, "ok")

	contentType := "image/png"
	if format == chart.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// rank ranks metric over the cached table using the "n" query parameter.
func (s *Server) rank(r *http.Request, metric string) (*engine.RankResult, error) {
	table := s.cache.Current()
	if table == nil {
		return nil, errNoDataset
	}

	n, err := parseTop(r.URL.Query().Get("n"))
	if err != nil {
		return nil, err
	}

	return s.runner.Rank(execcontext.Discard(r.Context()), table, metric, n)
}

// parseTop reads the requested row count. Empty means the default.
func parseTop(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &httpError{status: http.StatusBadRequest, message: fmt.Sprintf("n must be a positive integer, got %q", v)}
	}
	return n, nil
}

// healthCheck returns server health status
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, schema.HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC(),
		Dataset: s.currentSource(),
	})
}

func (s *Server) summarize(t *dataset.Table, cached bool) schema.DatasetSummary {
	return schema.DatasetSummary{
		Source:  t.Source,
		Rows:    t.Nrow(),
		Columns: t.Names(),
		Metrics: t.Metrics(),
		Preview: t.Preview(s.config.PreviewRows),
		Cached:  cached,
	}
}

func rankingResponse(result *engine.RankResult) schema.RankingResponse {
	rk, fig := result.Ranking, result.Figure

	rows := make([]schema.RankedRow, len(rk.Rows))
	for i, row := range rk.Rows {
		rows[i] = schema.RankedRow{
			Rank:       row.Rank,
			Identifier: row.Identifier,
			Score:      row.Score,
			Color:      fig.Bars[i].Color,
			Tooltip:    fig.Bars[i].Tooltip,
		}
	}

	return schema.RankingResponse{
		Source:           result.Source,
		Metric:           rk.Metric,
		IdentifierColumn: rk.Identifier,
		N:                rk.N,
		Considered:       rk.Considered,
		Title:            fig.Title,
		AxisMax:          fig.AxisMax,
		Rows:             rows,
	}
}

// statusFor maps an error to its HTTP status and response body.
func statusFor(err error) (int, schema.ErrorResponse) {
	resp := schema.ErrorResponse{Error: err.Error()}

	var herr *httpError
	if errors.As(err, &herr) {
		return herr.status, resp
	}

	var serr *dataset.SchemaError
	if errors.As(err, &serr) {
		resp.Error = serr.Message
		resp.Suggestion = serr.Suggestion
		resp.Columns = serr.Columns
	}

	switch kind := engine.ErrorKind(err); kind {
	case dataset.KindLoad:
		resp.Kind = string(kind)
		return http.StatusBadRequest, resp
	case dataset.KindSchema, dataset.KindEmpty:
		resp.Kind = string(kind)
		return http.StatusUnprocessableEntity, resp
	}

	return http.StatusInternalServerError, resp
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, resp := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func fileBase(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload.csv"
	}
	return base
}
