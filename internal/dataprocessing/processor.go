package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"kovaakstats/internal/config"
	apierrors "kovaakstats/internal/errors"
	"kovaakstats/internal/infrastructure"
	"kovaakstats/pkg/contracts/domain"
)

// TracerName is the instrumentation scope for aggregation spans
const TracerName = "kovaakstats.dataprocessing"

// Processor applies the parser to every discovered file and groups the records by scenario
type Processor struct {
	parser  *Parser
	policy  string
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.ExtractionMetrics
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithPolicy sets the failure policy (config.PolicyAbort or config.PolicyPartial)
func WithPolicy(policy string) ProcessorOption {
	return func(p *Processor) {
		if policy != "" {
			p.policy = policy
		}
	}
}

// WithParser replaces the default parser
func WithParser(parser *Parser) ProcessorOption {
	return func(p *Processor) {
		if parser != nil {
			p.parser = parser
		}
	}
}

// WithMetrics sets the instruments updated per file
func WithMetrics(m *infrastructure.ExtractionMetrics) ProcessorOption {
	return func(p *Processor) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithTracer sets the tracer used for aggregation spans
func WithTracer(t trace.Tracer) ProcessorOption {
	return func(p *Processor) {
		if t != nil {
			p.tracer = t
		}
	}
}

// NewProcessor creates an aggregator. The default policy aborts on the first failed file.
func NewProcessor(logger *slog.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		policy: config.PolicyAbort,
		logger: logger.With(slog.String("component", "aggregator")),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.parser == nil {
		p.parser = NewParser(WithParserLogger(logger))
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(TracerName)
	}
	if p.metrics == nil {
		p.metrics = infrastructure.MustExtractionMetrics()
	}
	return p
}

// Policy returns the failure policy in effect
func (p *Processor) Policy() string {
	return p.policy
}

// Aggregate parses every path of every scenario in order. Every scenario of groups
// is a key of the result, even when it has no files.
//
// With the abort policy the first failed file ends the run and its error is
// returned with no stats. With the partial policy failed files are listed in the
// report and the remaining records are kept.
func (p *Processor) Aggregate(ctx context.Context, groups *domain.PathGroups) (*domain.AggregatedStats, *Report, error) {
	ctx, span := p.tracer.Start(ctx, "stats.aggregate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("stats.scenarios", groups.Len()),
			attribute.Int("stats.files", groups.Total()),
			attribute.String("stats.failure_policy", p.policy),
		),
	)
	defer span.End()

	start := time.Now()
	report := &Report{Scenarios: groups.Len()}
	stats := domain.NewAggregatedStats()

	for _, scenario := range groups.Keys() {
		stats.Add(scenario)
		paths, _ := groups.Get(scenario)

		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				report.Duration = time.Since(start)
				return nil, report, p.fail(ctx, span, fmt.Errorf("aggregation cancelled: %w", err))
			}

			outcome := p.parseOne(ctx, scenario, path)
			report.Files++

			if !outcome.OK() {
				if p.policy != config.PolicyPartial {
					report.Duration = time.Since(start)
					return nil, report, p.fail(ctx, span, outcome.Err)
				}
				report.Failures = append(report.Failures, failureOf(outcome))
				p.logger.WarnContext(ctx, "Skipping unparseable result file",
					slog.String("scenario", scenario),
					slog.String("path", path),
					slog.String("error", outcome.Err.Error()))
				continue
			}

			stats.Append(scenario, outcome.Record)
			report.Records++
		}
	}

	report.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("stats.records", report.Records),
		attribute.Int("stats.failures", len(report.Failures)),
	)
	span.SetStatus(codes.Ok, "")

	p.logger.InfoContext(ctx, "Aggregation completed",
		slog.Int("scenarios", report.Scenarios),
		slog.Int("files", report.Files),
		slog.Int("records", report.Records),
		slog.Int("failures", len(report.Failures)),
		slog.Duration("duration", report.Duration))

	return stats, report, nil
}

// parseOne parses a single file and records its metrics
func (p *Processor) parseOne(ctx context.Context, scenario, path string) domain.FileOutcome {
	start := time.Now()
	rec, err := p.parser.ParseFile(path)
	elapsed := time.Since(start)

	outcome := domain.FileOutcome{Scenario: scenario, Path: path, Record: rec, Err: err}

	scenarioAttr := attribute.String("scenario", scenario)
	p.metrics.ParseDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(scenarioAttr))
	if err != nil {
		p.metrics.ParseFailures.Add(ctx, 1, metric.WithAttributes(
			scenarioAttr,
			attribute.String("kind", kindString(err)),
		))
		return outcome
	}
	p.metrics.FilesParsed.Add(ctx, 1, metric.WithAttributes(scenarioAttr))
	return outcome
}

func (p *Processor) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.ErrorContext(ctx, "Aggregation failed",
		slog.String("policy", p.policy),
		slog.String("error", err.Error()))
	return err
}

func kindString(err error) string {
	if kind := apierrors.KindOf(err); kind != "" {
		return string(kind)
	}
	return "unknown"
}
