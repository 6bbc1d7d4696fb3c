package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kovaakstats/internal/dataprocessing"
	apierrors "kovaakstats/internal/errors"
	"kovaakstats/internal/services"
	"kovaakstats/pkg/contracts/domain"
)

// fakeStatsService is a StatsServiceInterface backed by fixed values
type fakeStatsService struct {
	result *services.RunResult
	runErr error
	runs   int
}

func (f *fakeStatsService) Latest() (*services.RunResult, error) {
	if f.result == nil {
		return nil, services.ErrNoResult
	}
	return f.result, nil
}

func (f *fakeStatsService) Scenario(name string) ([]domain.StatRecord, error) {
	if f.result == nil {
		return nil, services.ErrNoResult
	}
	records, ok := f.result.Stats.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", services.ErrScenarioNotFound, name)
	}
	return records, nil
}

func (f *fakeStatsService) Scenarios() []string {
	if f.result == nil {
		return nil
	}
	return f.result.Stats.Keys()
}

func (f *fakeStatsService) TryRun(ctx context.Context) (*services.RunResult, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	f.runs++
	return f.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() *services.RunResult {
	stats := domain.NewAggregatedStats()
	stats.Add("Air Voltaic Easy")
	stats.Append("Air Voltaic Easy", domain.StatRecord{
		Timestamp: time.Date(2021, 5, 1, 14, 30, 0, 123000000, time.UTC),
		Score:     domain.Score(812.5),
	})
	stats.Add("Pasu Voltaic Easy")

	return &services.RunResult{
		RunID:    "run-1",
		StatsDir: "/stats",
		Stats:    stats,
		Report:   &dataprocessing.Report{Scenarios: 2, Files: 1, Records: 1},
		Summaries: []dataprocessing.ScenarioSummary{
			{Scenario: "Air Voltaic Easy", Sessions: 1, Scored: 1, Best: 812.5, Recent: []float64{812.5}},
			{Scenario: "Pasu Voltaic Easy", Recent: []float64{}},
		},
		CompletedAt: time.Date(2021, 5, 1, 15, 0, 0, 0, time.UTC),
	}
}

func newTestRouter(svc StatsServiceInterface) http.Handler {
	h := NewStatsHandler(svc, testLogger(), apierrors.NewErrorHandler(testLogger()))
	r := chi.NewRouter()
	r.Mount("/api/stats", h.Routes())
	r.Get("/api/summary", h.GetSummary)
	return r
}

func TestStatsHandler_GetStats(t *testing.T) {
	router := newTestRouter(&fakeStatsService{result: sampleResult()})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "run-1", rec.Header().Get(RunIDHeader))

	assert.Contains(t, rec.Body.String(), `"Date:": "2021-05-01 14:30:00.123000"`)

	doc := domain.NewAggregatedStats()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), doc))
	assert.Equal(t, []string{"Air Voltaic Easy", "Pasu Voltaic Easy"}, doc.Keys())
	records, _ := doc.Get("Air Voltaic Easy")
	require.Len(t, records, 1)
	assert.Equal(t, domain.Score(812.5), records[0].Score)
	empty, _ := doc.Get("Pasu Voltaic Easy")
	assert.Empty(t, empty)
}

func TestStatsHandler_GetStatsBeforeFirstRun(t *testing.T) {
	router := newTestRouter(&fakeStatsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeNoResult, problem["type"])
}

func TestStatsHandler_GetScenario(t *testing.T) {
	router := newTestRouter(&fakeStatsService{result: sampleResult()})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCount  int
	}{
		{name: "escaped name", path: "/api/stats/Air%20Voltaic%20Easy", wantStatus: http.StatusOK, wantCount: 1},
		{name: "scenario without records", path: "/api/stats/Pasu%20Voltaic%20Easy", wantStatus: http.StatusOK, wantCount: 0},
		{name: "unknown scenario", path: "/api/stats/Nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				var problem map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
				assert.Equal(t, apierrors.TypeNotFound, problem["type"])
				assert.Len(t, problem["scenarios"], 2)
				return
			}

			var body struct {
				Scenario string            `json:"scenario"`
				Records  []json.RawMessage `json:"records"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body.Records, tt.wantCount)
		})
	}
}

func TestStatsHandler_GetScenarioDecodesOnce(t *testing.T) {
	result := sampleResult()
	result.Stats.Append("Tile %41 Frenzy", domain.StatRecord{
		Timestamp: time.Date(2021, 5, 2, 10, 0, 0, 0, time.UTC),
		Score:     domain.Score(41),
	})
	result.Stats.Add("1w/4t")
	router := newTestRouter(&fakeStatsService{result: result})

	tests := []struct {
		name     string
		path     string
		scenario string
	}{
		{name: "literal percent sequence", path: "/api/stats/Tile%20%2541%20Frenzy", scenario: "Tile %41 Frenzy"},
		{name: "escaped slash", path: "/api/stats/1w%2F4t", scenario: "1w/4t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var body struct {
				Scenario string `json:"scenario"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.scenario, body.Scenario)
		})
	}
}

func TestStatsHandler_GetSummary(t *testing.T) {
	router := newTestRouter(&fakeStatsService{result: sampleResult()})

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []dataprocessing.ScenarioSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "Air Voltaic Easy", summaries[0].Scenario)
	assert.Equal(t, 812.5, summaries[0].Best)
}

func TestStatsHandler_Refresh(t *testing.T) {
	tests := []struct {
		name       string
		runErr     error
		wantStatus int
		wantType   string
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "run in progress", runErr: services.ErrRunInProgress, wantStatus: http.StatusConflict, wantType: apierrors.TypeConflict},
		{name: "stats directory missing", runErr: apierrors.NotFound("/stats", fmt.Errorf("no such file")), wantStatus: http.StatusServiceUnavailable, wantType: apierrors.TypeStatsDirMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeStatsService{result: sampleResult(), runErr: tt.runErr}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/stats/refresh", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType == "" {
				assert.Equal(t, 1, svc.runs)
				assert.Equal(t, "run-1", rec.Header().Get(RunIDHeader))
				return
			}

			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem["type"])
		})
	}
}
