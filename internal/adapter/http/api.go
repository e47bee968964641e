package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/export"
	"github.com/couchcryptid/odp-dashboard-service/internal/loader"
	"github.com/couchcryptid/odp-dashboard-service/internal/observability"
	"github.com/couchcryptid/odp-dashboard-service/internal/pipeline"
	"github.com/couchcryptid/odp-dashboard-service/internal/session"
)

const (
	uploadField    = "file"
	publishTimeout = 5 * time.Second
)

// EventPublisher announces loaded datasets. A nil publisher disables events.
type EventPublisher interface {
	PublishDatasetLoaded(ctx context.Context, event domain.DatasetLoaded) error
}

// Deps wires the API to its collaborators.
type Deps struct {
	Store     *session.Store
	Pipeline  *pipeline.Pipeline
	Publisher EventPublisher
	Metrics   *observability.Metrics
	Logger    *slog.Logger
	MaxUpload int64
}

// API serves the dashboard JSON endpoints.
type API struct {
	Deps
	mux *http.ServeMux
}

// NewAPI registers every /api route.
func NewAPI(deps Deps) *API {
	a := &API{Deps: deps, mux: http.NewServeMux()}

	a.mux.HandleFunc("POST /api/dataset", a.handleUpload)
	a.mux.HandleFunc("DELETE /api/dataset", a.handleClear)
	a.mux.HandleFunc("GET /api/view", a.withDataset(a.handleView))
	a.mux.HandleFunc("GET /api/options", a.withDataset(a.handleOptions))
	a.mux.HandleFunc("GET /api/point", a.withDataset(a.handlePoint))
	a.mux.HandleFunc("GET /api/export", a.withDataset(a.handleExport))
	a.mux.HandleFunc("POST /api/filters/quick", a.handleQuickFilter)

	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// errorBody is the JSON shape of every non-2xx API response.
type errorBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
}

func writeError(w http.ResponseWriter, code int, status string, err error) {
	sharedobs.WriteJSON(w, code, errorBody{Status: status, Error: err.Error()})
}

// uploadResponse acknowledges a dataset upload.
type uploadResponse struct {
	domain.DatasetLoaded
	SessionID string `json:"session_id"`
	Cached    bool   `json:"cached"`
}

func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	sid := ensureSession(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUpload)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", errors.New(`multipart field "file" is required`))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ds, cached, err := a.Store.Load(sid, header.Filename, data)
	if err != nil {
		var le *loader.LoadError
		if errors.As(err, &le) {
			a.Logger.Info("dataset rejected", "session_id", sid, "file_name", header.Filename, "error", err)
			sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{
				Status: "load_error",
				Error:  le.Error(),
				Kind:   string(le.Kind),
				Line:   le.Line,
				Column: le.Column,
				Value:  le.Value,
			})
			return
		}
		a.Logger.Error("dataset load failed", "session_id", sid, "error", err)
		writeError(w, http.StatusInternalServerError, "error", err)
		return
	}

	event := ds.Event()
	if !cached && a.Publisher != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), publishTimeout)
		if err := a.Publisher.PublishDatasetLoaded(ctx, event); err != nil {
			a.Logger.Warn("dataset event not published", "session_id", sid, "file_id", ds.FileID, "error", err)
		}
		cancel()
	}

	sharedobs.WriteJSON(w, http.StatusOK, uploadResponse{DatasetLoaded: event, SessionID: sid, Cached: cached})
}

func (a *API) handleClear(w http.ResponseWriter, r *http.Request) {
	if sid := sessionID(r); sid != "" {
		a.Store.Clear(sid)
	}
	w.WriteHeader(http.StatusNoContent)
}

type datasetHandler func(w http.ResponseWriter, r *http.Request, ds *session.Dataset)

// withDataset resolves the caller's dataset, answering 409 no_file when the
// session has not uploaded one yet.
func (a *API) withDataset(next datasetHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := a.Store.Dataset(sessionID(r))
		if errors.Is(err, session.ErrNoFile) {
			writeError(w, http.StatusConflict, "no_file", errors.New("upload a CSV or XLSX file first"))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "error", err)
			return
		}
		next(w, r, ds)
	}
}

// filterSpec reads filter dimensions from the query string.
func filterSpec(r *http.Request) (domain.FilterSpec, error) {
	q := r.URL.Query()
	class := q.Get("classification")
	if class == "" {
		class = q.Get("status")
	}
	return domain.FilterInput{
		Area:           q.Get("area"),
		Classification: class,
		From:           q.Get("from"),
		To:             q.Get("to"),
		Search:         q.Get("q"),
	}.Spec()
}

func (a *API) handleView(w http.ResponseWriter, r *http.Request, ds *session.Dataset) {
	spec, err := filterSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_filter", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, a.Pipeline.Render(r.Context(), ds.Records, spec))
}

func (a *API) handleOptions(w http.ResponseWriter, _ *http.Request, ds *session.Dataset) {
	sharedobs.WriteJSON(w, http.StatusOK, pipeline.BuildOptions(ds.Records))
}

func (a *API) handlePoint(w http.ResponseWriter, r *http.Request, ds *session.Dataset) {
	spec, err := filterSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_filter", err)
		return
	}
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("lat and lon must be numbers"))
		return
	}

	sel, ok := a.Pipeline.Select(r.Context(), ds.Records, ds.Index, spec, lat, lon)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", errors.New("no ODP at this point"))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, sel)
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request, ds *session.Dataset) {
	spec, err := filterSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_filter", err)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, pipeline.Table(ds.Records, spec)); err != nil {
		a.Logger.Error("export failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "error", err)
		return
	}
	a.Metrics.Exports.WithLabelValues(string(format)).Inc()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(domain.Now(), format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type quickRequest struct {
	Action  domain.QuickAction `json:"action"`
	Filters domain.FilterSpec  `json:"filters"`
}

type quickResponse struct {
	Filters     domain.FilterSpec `json:"filters"`
	Description []string          `json:"description"`
}

func (a *API) handleQuickFilter(w http.ResponseWriter, r *http.Request) {
	var req quickRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	spec, err := req.Filters.WithQuick(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, quickResponse{Filters: spec, Description: spec.Describe()})
}
