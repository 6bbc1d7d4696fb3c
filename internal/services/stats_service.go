package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kovaakstats/internal/config"
	"kovaakstats/internal/dataprocessing"
	"kovaakstats/internal/exporter"
	"kovaakstats/internal/files"
	"kovaakstats/internal/infrastructure"
	"kovaakstats/pkg/contracts/domain"
	"kovaakstats/pkg/contracts/events"
)

// EventStatsUpdated is broadcast after every successful run
const EventStatsUpdated = events.TypeStatsUpdated

// TracerName is the instrumentation scope for run spans
const TracerName = "kovaakstats.services"

// Broadcaster pushes events to connected clients
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// RunResult is the outcome of one successful extraction run
type RunResult struct {
	RunID       string                           `json:"run_id"`
	StatsDir    string                           `json:"stats_dir"`
	Stats       *domain.AggregatedStats          `json:"-"`
	Report      *dataprocessing.Report           `json:"report"`
	Summaries   []dataprocessing.ScenarioSummary `json:"summaries"`
	Outputs     []string                         `json:"outputs"`
	CompletedAt time.Time                        `json:"completed_at"`
}

// StatsService runs the extraction pipeline: locate result files, aggregate
// them, then write the configured outputs. Runs are serialized; the last
// successful result is kept for readers.
type StatsService struct {
	extraction config.ExtractionConfig
	paths      config.PathsConfig

	locator     *files.Locator
	processor   *dataprocessing.Processor
	summarizer  *dataprocessing.Summarizer
	jsonOut     *exporter.JSONExporter
	csvOut      *exporter.CSVWriter
	xlsxOut     *exporter.XLSXExporter
	metrics     *infrastructure.ExtractionMetrics
	tracer      trace.Tracer
	broadcaster Broadcaster
	logger      *slog.Logger

	runMu  sync.Mutex
	mu     sync.RWMutex
	latest *RunResult
}

// ServiceOption configures a StatsService
type ServiceOption func(*StatsService)

// WithBroadcaster sets where stats_updated events go
func WithBroadcaster(b Broadcaster) ServiceOption {
	return func(s *StatsService) {
		s.broadcaster = b
	}
}

// WithExtractionMetrics sets the run and per-file instruments
func WithExtractionMetrics(m *infrastructure.ExtractionMetrics) ServiceOption {
	return func(s *StatsService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithServiceTracer sets the tracer used for run spans
func WithServiceTracer(t trace.Tracer) ServiceOption {
	return func(s *StatsService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewStatsService creates a stats service for cfg. cfg is copied; it should
// already be validated.
func NewStatsService(cfg *config.Config, logger *slog.Logger, opts ...ServiceOption) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &StatsService{
		extraction: cfg.Extraction,
		paths:      cfg.Paths,
		logger:     logger.With(slog.String("component", "stats_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = infrastructure.MustExtractionMetrics()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(TracerName)
	}

	manager := files.NewManager(logger)
	s.locator = files.NewLocator(logger)
	s.processor = dataprocessing.NewProcessor(logger,
		dataprocessing.WithPolicy(cfg.Extraction.FailurePolicy),
		dataprocessing.WithMetrics(s.metrics),
		dataprocessing.WithTracer(s.tracer),
	)
	s.summarizer = dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())
	s.jsonOut = exporter.NewJSONExporter(manager, logger)
	s.csvOut = exporter.NewCSVWriter(manager, logger)
	s.xlsxOut = exporter.NewXLSXExporter(manager, logger)

	logger.Info("StatsService initialized",
		slog.String("stats_dir", cfg.Extraction.StatsDir),
		slog.Int("scenarios", len(cfg.Extraction.Scenarios)),
		slog.String("failure_policy", cfg.Extraction.FailurePolicy),
		slog.String("output_file", cfg.Paths.OutputFile))

	return s
}

// Run executes one extraction. A run started while another is in progress waits for it.
// Outputs are written only when aggregation succeeded, and data.json is written last.
func (s *StatsService) Run(ctx context.Context) (*RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.runLocked(ctx)
}

// TryRun is Run, but returns ErrRunInProgress instead of waiting.
func (s *StatsService) TryRun(ctx context.Context) (*RunResult, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.runLocked(ctx)
}

func (s *StatsService) runLocked(ctx context.Context) (*RunResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)

	ctx, span := s.tracer.Start(ctx, "stats.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stats.dir", s.extraction.StatsDir),
		),
	)
	defer span.End()

	s.logger.InfoContext(ctx, "Extraction run started",
		slog.String("run_id", runID),
		slog.String("stats_dir", s.extraction.StatsDir))

	start := time.Now()
	result, err := s.execute(ctx, runID)
	duration := time.Since(start)

	records := 0
	if result != nil {
		records = result.Report.Records
	}
	s.metrics.RecordRun(ctx, duration, records, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "Extraction run failed",
			slog.String("run_id", runID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, err
	}
	span.SetStatus(codes.Ok, "")

	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Extraction run completed",
		slog.String("run_id", runID),
		slog.Int("scenarios", result.Report.Scenarios),
		slog.Int("files", result.Report.Files),
		slog.Int("records", result.Report.Records),
		slog.Int("failures", len(result.Report.Failures)),
		slog.Any("outputs", result.Outputs),
		slog.Duration("duration", duration))

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(EventStatsUpdated, events.StatsUpdated{
			RunID:       result.RunID,
			Scenarios:   result.Report.Scenarios,
			Files:       result.Report.Files,
			Records:     result.Report.Records,
			Failures:    len(result.Report.Failures),
			Outputs:     result.Outputs,
			CompletedAt: result.CompletedAt,
		})
	}
	return result, nil
}

func (s *StatsService) execute(ctx context.Context, runID string) (*RunResult, error) {
	groups, err := s.locator.ScenarioFiles(s.extraction.StatsDir, s.extraction.Scenarios)
	if err != nil {
		return nil, fmt.Errorf("locate result files: %w", err)
	}

	stats, report, err := s.processor.Aggregate(ctx, groups)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	outputs, err := s.export(ctx, stats)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		RunID:       runID,
		StatsDir:    s.extraction.StatsDir,
		Stats:       stats,
		Report:      report,
		Summaries:   s.summarizer.Summarize(stats),
		Outputs:     outputs,
		CompletedAt: time.Now().UTC(),
	}, nil
}

// export writes the optional spreadsheet outputs, then the JSON document
func (s *StatsService) export(ctx context.Context, stats *domain.AggregatedStats) ([]string, error) {
	_, span := s.tracer.Start(ctx, "stats.export")
	defer span.End()

	steps := []struct {
		path   string
		export func(string, *domain.AggregatedStats) error
	}{
		{s.paths.CSVFile, s.csvOut.Export},
		{s.paths.XLSXFile, s.xlsxOut.Export},
		{s.paths.OutputFile, s.jsonOut.Export},
	}

	outputs := make([]string, 0, len(steps))
	for _, step := range steps {
		if step.path == "" {
			continue
		}
		if err := step.export(step.path, stats); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		outputs = append(outputs, step.path)
	}
	return outputs, nil
}

// Latest returns the last successful result
func (s *StatsService) Latest() (*RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoResult
	}
	return s.latest, nil
}

// Scenario returns one scenario's records from the last successful result
func (s *StatsService) Scenario(name string) ([]domain.StatRecord, error) {
	result, err := s.Latest()
	if err != nil {
		return nil, err
	}
	records, ok := result.Stats.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
	}
	return records, nil
}

// Scenarios returns the configured scenario names in request order
func (s *StatsService) Scenarios() []string {
	out := make([]string, len(s.extraction.Scenarios))
	copy(out, s.extraction.Scenarios)
	return out
}

// StatsDir returns the configured stats directory
func (s *StatsService) StatsDir() string {
	return s.extraction.StatsDir
}
