package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/datadeck-io/datadeck/internal/analysis"
	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/datasource"
	"github.com/datadeck-io/datadeck/internal/logger"
	"github.com/datadeck-io/datadeck/internal/models"
	"github.com/datadeck-io/datadeck/internal/session"
)

const (
	DefaultMaxUploadBytes = 100 * 1024 * 1024 // 100MB
)

// Handler wires the analysis service and the session registry to the
// HTTP surface. A single optional database connection is shared across
// requests; connecting again replaces it.
type Handler struct {
	Analysis       *analysis.Service
	Sessions       *session.Registry
	MaxUploadBytes int64

	mu        sync.Mutex
	currentDB datasource.DataSource

	// newSource builds a DataSource from a connect request; tests
	// swap it for a fake.
	newSource func(cfg datasource.Config) (datasource.DataSource, error)
}

func NewHandler(svc *analysis.Service, sessions *session.Registry, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		Analysis:       svc,
		Sessions:       sessions,
		MaxUploadBytes: maxUploadBytes,
		newSource:      datasource.New,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.HealthCheck)

	// Dataset lifecycle
	r.Post("/api/upload", h.Upload)
	r.Get("/api/sessions", h.ListSessions)
	r.Put("/api/sessions/{id}", h.ReplaceSession)
	r.Delete("/api/sessions/{id}", h.DeleteSession)

	// Overview
	r.Get("/api/sessions/{id}/summary", h.GetSummary)
	r.Get("/api/sessions/{id}/classification", h.GetClassification)
	r.Get("/api/sessions/{id}/profile", h.GetProfile)
	r.Get("/api/sessions/{id}/preview", h.GetPreview)

	// Correlation views
	r.Get("/api/sessions/{id}/correlation", h.GetCorrelation)
	r.Get("/api/sessions/{id}/correlation/top", h.GetTopCorrelations)
	r.Get("/api/sessions/{id}/correlation/pair", h.GetCorrelationPair)
	r.Get("/api/sessions/{id}/scatter", h.GetScatter)

	// Distribution views
	r.Get("/api/sessions/{id}/histogram", h.GetHistogram)
	r.Get("/api/sessions/{id}/box", h.GetBoxPlot)

	// Time series
	r.Get("/api/sessions/{id}/resample", h.GetResample)

	// Rows
	r.Post("/api/sessions/{id}/filter", h.FilterData)
	r.Get("/api/sessions/{id}/export", h.ExportCSV)
	r.Get("/api/sessions/{id}/source", h.DownloadSource)

	// DB Routes
	r.Post("/api/db/connect", h.ConnectDB)
	r.Get("/api/db/tables", h.ListTables)
	r.Post("/api/db/load", h.LoadTable)
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// ============================================================================
// Upload & sessions
// ============================================================================

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	data, name, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	ds, err := dataset.Parse(data)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse CSV: %v", err), http.StatusBadRequest)
		return
	}

	sess := h.Sessions.Create(name, ds, data)
	logger.Info("uploaded %q: %d rows, %d columns", name, ds.RowCount(), ds.ColumnCount())

	writeJSON(w, models.UploadResponse{
		SessionID:   sess.ID,
		Message:     fmt.Sprintf("File '%s' uploaded successfully", name),
		Rows:        ds.RowCount(),
		Columns:     ds.ColumnCount(),
		ColumnNames: ds.ColumnNames(),
	})
}

// ReplaceSession re-uploads into an existing session. The new file is
// parsed before anything is touched, so a bad upload leaves the
// previous dataset in place.
func (h *Handler) ReplaceSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	data, name, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	ds, err := dataset.Parse(data)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse CSV: %v", err), http.StatusBadRequest)
		return
	}

	sess.Replace(name, ds, data)
	logger.Info("replaced session %s with %q: %d rows", sess.ID, name, ds.RowCount())

	writeJSON(w, models.UploadResponse{
		SessionID:   sess.ID,
		Message:     fmt.Sprintf("File '%s' uploaded successfully", name),
		Rows:        ds.RowCount(),
		Columns:     ds.ColumnCount(),
		ColumnNames: ds.ColumnNames(),
	})
}

// readUpload pulls the CSV bytes out of a multipart request, enforcing
// the size cap and the .csv extension. On failure it writes the error
// response itself.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		http.Error(w, "Only CSV files are allowed", http.StatusBadRequest)
		return nil, "", false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Error reading file", http.StatusInternalServerError)
		return nil, "", false
	}
	return data, header.Filename, true
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.Sessions.List()
	writeJSON(w, models.SessionListResponse{
		Count:    len(sessions),
		Sessions: sessions,
	})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Sessions.Delete(id); err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}

// ============================================================================
// Overview
// ============================================================================

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	var resp models.SummaryResult
	sess.Do(func(d *dataset.Dataset) error {
		resp = h.Analysis.Summary(d)
		return nil
	})
	writeJSON(w, resp)
}

func (h *Handler) GetClassification(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	var resp models.ClassificationResponse
	sess.Do(func(d *dataset.Dataset) error {
		resp = h.Analysis.Classification(d)
		return nil
	})
	writeJSON(w, resp)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	var resp models.ProfileResponse
	sess.Do(func(d *dataset.Dataset) error {
		resp = h.Analysis.Profile(d)
		return nil
	})
	writeJSON(w, resp)
}

func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	limit := getIntParam(r, "limit", 0)

	var resp models.PreviewResponse
	sess.Do(func(d *dataset.Dataset) error {
		resp = h.Analysis.Preview(d, limit)
		return nil
	})
	writeJSON(w, resp)
}

// ============================================================================
// Correlation
// ============================================================================

func (h *Handler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	var resp models.CorrelationMatrix
	err := sess.Do(func(d *dataset.Dataset) error {
		var err error
		resp, err = h.Analysis.Correlation(d)
		return err
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *Handler) GetTopCorrelations(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	var pairs []models.CorrelationPair
	err := sess.Do(func(d *dataset.Dataset) error {
		matrix, err := h.Analysis.Correlation(d)
		if err != nil {
			return err
		}
		pairs = h.Analysis.TopCorrelations(matrix)
		return nil
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"pairs": pairs})
}

func (h *Handler) GetCorrelationPair(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	xCol := r.URL.Query().Get("x")
	yCol := r.URL.Query().Get("y")
	if xCol == "" || yCol == "" {
		http.Error(w, "x and y query parameters are required", http.StatusBadRequest)
		return
	}

	var resp models.PairDetail
	err := sess.Do(func(d *dataset.Dataset) error {
		var err error
		resp, err = h.Analysis.PairDetail(d, xCol, yCol)
		return err
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *Handler) GetScatter(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	xCol := r.URL.Query().Get("x")
	yCol := r.URL.Query().Get("y")
	if xCol == "" || yCol == "" {
		http.Error(w, "x and y query parameters are required", http.StatusBadRequest)
		return
	}

	var resp models.ScatterResponse
	err := sess.Do(func(d *dataset.Dataset) error {
		var err error
		resp, err = h.Analysis.Scatter(d, xCol, yCol)
		return err
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, resp)
}

// ============================================================================
// Distribution
// ============================================================================

func (h *Handler) GetHistogram(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	column := r.URL.Query().Get("column")
	if column == "" {
		http.Error(w, "column query parameter is required", http.StatusBadRequest)
		return
	}
	bins := getIntParam(r, "bins", 0)

	var resp models.HistogramResponse
	err := sess.Do(func(d *dataset.Dataset) error {
		var err error
		resp, err = h.Analysis.Histogram(d, column, bins)
		return err
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, resp)
}

// GetBoxPlot groups a numeric column by a categorical one. Without an
// explicit category it grabs the first categorical column, and reports
// an advisory when the dataset has none.
func (h *Handler) GetBoxPlot(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	numeric := r.URL.Query().Get("numeric")
	if numeric == "" {
		http.Error(w, "numeric query parameter is required", http.StatusBadRequest)
		return
	}
	category := r.URL.Query().Get("category")

	var resp models.BoxPlotResponse
	err := sess.Do(func(d *dataset.Dataset) error {
		if category == "" {
			cls := d.Classify()
			if len(cls.Categorical) == 0 {
				return analysis.ErrNoCategoricalColumns
			}
			category = cls.Categorical[0]
		}
		var err error
		resp, err = h.Analysis.BoxPlot(d, numeric, category)
		return err
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, resp)
}

// ============================================================================
// Time series
// ============================================================================

func (h *Handler) GetResample(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	freqStr := r.URL.Query().Get("freq")
	if freqStr == "" {
		freqStr = "day"
	}
	freq, err := analysis.ParseFrequency(freqStr)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	temporal := r.URL.Query().Get("temporal")
	numeric := r.URL.Query().Get("numeric")

	var resp models.ResampleResponse
	err = sess.Do(func(d *dataset.Dataset) error {
		var err error
		resp, err = h.Analysis.Resample(d, temporal, numeric, freq)
		return err
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, resp)
}

// ============================================================================
// Filter & export
// ============================================================================

func (h *Handler) FilterData(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	var req models.FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	var resp models.FilterResponse
	err := sess.Do(func(d *dataset.Dataset) error {
		var err error
		resp, err = h.Analysis.Filter(d, req)
		return err
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	name := sess.Name()
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if err := sess.Do(func(d *dataset.Dataset) error { return d.WriteCSV(w) }); err != nil {
		logger.Warn("export of session %s failed mid-stream: %v", sess.ID, err)
	}
}

// DownloadSource serves the originally uploaded bytes. Sessions loaded
// from a database table have no source stream and answer 404.
func (h *Handler) DownloadSource(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromURL(w, r)
	if sess == nil {
		return
	}

	data, ok, err := sess.Source()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error recovering upload: %v", err), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "No original upload for this session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Write(data)
}

// ============================================================================
// Database loading
// ============================================================================

// ConnectDB establishes a database connection
func (h *Handler) ConnectDB(w http.ResponseWriter, r *http.Request) {
	var cfg datasource.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	ds, err := h.newSource(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ds.Connect(cfg); err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect: %v", err), http.StatusInternalServerError)
		return
	}

	// Close previous if exists
	h.mu.Lock()
	if h.currentDB != nil {
		h.currentDB.Close()
	}
	h.currentDB = ds
	h.mu.Unlock()

	writeJSON(w, map[string]string{"status": "connected"})
}

// ListTables returns tables from connected DB
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	db := h.db()
	if db == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	tables, err := db.ListTables()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing tables: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, models.TablesResponse{Tables: tables})
}

// LoadTable fetches a table from the connected DB into a new session
func (h *Handler) LoadTable(w http.ResponseWriter, r *http.Request) {
	db := h.db()
	if db == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	var req models.LoadTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Table == "" {
		http.Error(w, "table is required", http.StatusBadRequest)
		return
	}

	ds, err := db.FetchTable(req.Table, req.Limit)
	if err != nil {
		switch {
		case errors.Is(err, datasource.ErrUnknownTable):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, datasource.ErrNotConnected):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, fmt.Sprintf("Error fetching data: %v", err), http.StatusInternalServerError)
		}
		return
	}

	// Table loads keep no original byte stream; /source answers 404.
	sess := h.Sessions.Create(req.Table, ds, nil)
	logger.Info("loaded table %q: %d rows, %d columns", req.Table, ds.RowCount(), ds.ColumnCount())

	writeJSON(w, models.UploadResponse{
		SessionID:   sess.ID,
		Message:     fmt.Sprintf("Table '%s' loaded successfully", req.Table),
		Rows:        ds.RowCount(),
		Columns:     ds.ColumnCount(),
		ColumnNames: ds.ColumnNames(),
	})
}

func (h *Handler) db() datasource.DataSource {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentDB
}

// ============================================================================
// Helpers
// ============================================================================

// sessionFromURL resolves the {id} route parameter. On a miss it has
// already written the 404 and returns nil.
func (h *Handler) sessionFromURL(w http.ResponseWriter, r *http.Request) *session.Session {
	id := chi.URLParam(r, "id")
	sess, err := h.Sessions.Get(id)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil
	}
	return sess
}

// writeAnalysisError maps service errors onto the wire: advisory
// conditions become a 200 with a notice the frontend renders in place
// of the chart, caller mistakes a 400 or 404.
func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrNotEnoughNumericColumns),
		errors.Is(err, analysis.ErrNoTemporalColumn),
		errors.Is(err, analysis.ErrNoCategoricalColumns):
		writeJSON(w, models.AdvisoryResponse{Advisory: err.Error()})
	case errors.Is(err, analysis.ErrColumnNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, analysis.ErrColumnNotNumeric),
		errors.Is(err, analysis.ErrColumnNotTemporal),
		errors.Is(err, analysis.ErrColumnNotCategorical),
		errors.Is(err, analysis.ErrNotEnoughValues),
		errors.Is(err, analysis.ErrBadFrequency),
		errors.Is(err, analysis.ErrBadOperator):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func getIntParam(r *http.Request, name string, defaultVal int) int {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
