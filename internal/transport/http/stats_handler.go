package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "kovaakstats/internal/errors"
	"kovaakstats/internal/exporter"
	"kovaakstats/internal/services"
	"kovaakstats/pkg/contracts/domain"
)

// RunIDHeader identifies the run a response was served from
const RunIDHeader = "X-Run-ID"

// StatsHandler serves the extracted stats read-only and triggers re-extraction
type StatsHandler struct {
	service      StatsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service StatsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StatsHandler {
	return &StatsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "stats_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the /api/stats routes
func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetStats)
	r.Post("/refresh", h.Refresh)
	r.Get("/{scenario}", h.GetScenario)

	return r
}

// scenarioResponse is one scenario's records
type scenarioResponse struct {
	Scenario string              `json:"scenario"`
	Records  []domain.StatRecord `json:"records"`
}

// GetStats handles GET /api/stats with the same document written to data.json
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Latest()
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.EncodeJSON(&buf, result.Stats); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set(RunIDHeader, result.RunID)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetScenario handles GET /api/stats/{scenario}
func (h *StatsHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "scenario")
	// chi matches on RawPath when the request carries one, leaving the param escaped
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	records, err := h.service.Scenario(name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	render.JSON(w, r, scenarioResponse{Scenario: name, Records: records})
}

// GetSummary handles GET /api/summary
func (h *StatsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Latest()
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	w.Header().Set(RunIDHeader, result.RunID)
	render.JSON(w, r, result.Summaries)
}

// Refresh handles POST /api/stats/refresh. A refresh while another run is in
// progress is rejected with 409.
func (h *StatsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.TryRun(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Stats refreshed",
		slog.String("run_id", result.RunID),
		slog.Int("records", result.Report.Records))

	w.Header().Set(RunIDHeader, result.RunID)
	render.JSON(w, r, result)
}

// handleError maps service errors onto problem documents
func (h *StatsHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoResult):
		apierrors.WriteProblem(w, apierrors.NewProblemDetails(http.StatusServiceUnavailable, TypeNoResult,
			"No Stats Available", "No extraction has completed yet; POST /api/stats/refresh to run one", r.URL.Path))
	case errors.Is(err, services.ErrScenarioNotFound):
		apierrors.WriteProblem(w, apierrors.NotFoundProblem(err.Error(), r).
			WithExtension("scenarios", h.service.Scenarios()))
	case errors.Is(err, services.ErrRunInProgress):
		apierrors.WriteProblem(w, apierrors.ConflictProblem(err.Error(), r))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// TypeNoResult is returned before the first successful run
const TypeNoResult = "/errors/stats/no-result"
