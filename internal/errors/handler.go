package errors

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Problem types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
	TypeConflict         = "/errors/conflict"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeStatsDirMissing  = "/errors/stats/directory-not-found"
	TypeStatsMalformed   = "/errors/stats/malformed-record"
	TypeStatsIO          = "/errors/stats/io-failure"
)

// ProblemDetails is an RFC 7807 problem document
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// NewProblemDetails creates a problem document
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// WithExtension adds a member to the problem document
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = make(map[string]interface{})
	}
	pd.Extensions[key] = value
	return pd
}

// MarshalJSON flattens extensions into the top-level object
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{}, 5+len(pd.Extensions))
	for k, v := range pd.Extensions {
		data[k] = v
	}
	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status
	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}
	return json.Marshal(data)
}

// ErrorHandler turns errors into problem responses and logs them
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := ErrorToProblem(err, r)
	if reqID != "" {
		problem.WithExtension("trace_id", reqID)
	}
	WriteProblem(w, problem)
}

// WriteProblem writes pd with the application/problem+json content type
func WriteProblem(w http.ResponseWriter, pd *ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	_ = json.NewEncoder(w).Encode(pd)
}

// ErrorToProblem maps an error onto a problem document
func ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r.URL.Path)
	}

	var pd *ProblemDetails
	if errors.As(err, &pd) {
		return pd
	}

	var se *StatsError
	if !errors.As(err, &se) {
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
			"An unexpected error occurred", r.URL.Path)
	}

	var problem *ProblemDetails
	switch se.Kind {
	case KindValidation:
		problem = NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", se.Error(), r.URL.Path)
	case KindNotFound:
		problem = NewProblemDetails(http.StatusServiceUnavailable, TypeStatsDirMissing, "Stats Directory Not Found", se.Error(), r.URL.Path)
	case KindMalformedTimestamp, KindMalformedScore:
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeStatsMalformed, "Malformed Stat Record", se.Error(), r.URL.Path)
	default:
		problem = NewProblemDetails(http.StatusInternalServerError, TypeStatsIO, "Stats I/O Failure", se.Error(), r.URL.Path)
	}
	return problem.WithExtension("kind", string(se.Kind))
}

// Error lets a ProblemDetails travel as an error value
func (pd *ProblemDetails) Error() string {
	return pd.Title + ": " + pd.Detail
}

// NotFoundProblem reports an unknown resource
func NotFoundProblem(detail string, r *http.Request) *ProblemDetails {
	return NewProblemDetails(http.StatusNotFound, TypeNotFound, "Resource Not Found", detail, r.URL.Path)
}

// ConflictProblem reports a request that clashes with work already in progress
func ConflictProblem(detail string, r *http.Request) *ProblemDetails {
	return NewProblemDetails(http.StatusConflict, TypeConflict, "Conflict", detail, r.URL.Path)
}

// NotFound is the router's handler for unknown routes
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, NotFoundProblem("No route matches "+r.URL.Path, r))
}

// MethodNotAllowed is the router's handler for known routes hit with the wrong method
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethodNotAllowed, "Method Not Allowed",
		"Method "+r.Method+" is not supported for "+r.URL.Path, r.URL.Path))
}
