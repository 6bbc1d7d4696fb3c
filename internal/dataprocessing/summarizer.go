package dataprocessing

import (
	"log/slog"
	"slices"

	"kovaakstats/pkg/contracts/domain"
)

// Summarizer condenses each scenario's records into a ScenarioSummary.
type Summarizer struct {
	logger      *slog.Logger
	recentCount int
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	RecentCount int // Number of most recent measured scores to keep
}

// ScenarioSummary describes the score history of one scenario.
// Records without a measured score count as sessions but are left out of the score figures.
type ScenarioSummary struct {
	Scenario  string    `json:"scenario"`
	Sessions  int       `json:"sessions"`
	Scored    int       `json:"scored"`
	Best      float64   `json:"best,omitempty"`
	Average   float64   `json:"average,omitempty"`
	LastScore float64   `json:"last_score,omitempty"`
	LastDate  string    `json:"last_date,omitempty"`
	Recent    []float64 `json:"recent"`
}

// DefaultSummarizerConfig returns the default summarizer configuration.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{RecentCount: 10}
}

// NewSummarizer creates a new summarizer.
func NewSummarizer(logger *slog.Logger, cfg SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RecentCount <= 0 {
		cfg.RecentCount = DefaultSummarizerConfig().RecentCount
	}
	return &Summarizer{
		logger:      logger.With(slog.String("component", "summarizer")),
		recentCount: cfg.RecentCount,
	}
}

// Summarize returns one summary per scenario, in aggregation order.
func (s *Summarizer) Summarize(stats *domain.AggregatedStats) []ScenarioSummary {
	if stats == nil {
		return []ScenarioSummary{}
	}

	summaries := make([]ScenarioSummary, 0, stats.Len())
	for _, scenario := range stats.Keys() {
		records, _ := stats.Get(scenario)
		summaries = append(summaries, s.summarizeScenario(scenario, records))
	}

	s.logger.Debug("Scenario summaries generated", slog.Int("count", len(summaries)))
	return summaries
}

func (s *Summarizer) summarizeScenario(scenario string, records []domain.StatRecord) ScenarioSummary {
	summary := ScenarioSummary{
		Scenario: scenario,
		Sessions: len(records),
		Recent:   []float64{},
	}
	if len(records) == 0 {
		return summary
	}

	// discovery order is not chronological
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b domain.StatRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	var total float64
	for _, rec := range ordered {
		if !rec.Score.HasValue() {
			continue
		}
		score := float64(rec.Score)
		if summary.Scored == 0 || score > summary.Best {
			summary.Best = score
		}
		total += score
		summary.Scored++
	}
	if summary.Scored > 0 {
		summary.Average = total / float64(summary.Scored)
	}

	last := ordered[len(ordered)-1]
	summary.LastDate = domain.FormatTimestamp(last.Timestamp)
	if last.Score.HasValue() {
		summary.LastScore = float64(last.Score)
	}
	summary.Recent = s.recentScores(ordered)
	return summary
}

// recentScores returns the last recentCount measured scores of records, oldest first.
func (s *Summarizer) recentScores(records []domain.StatRecord) []float64 {
	out := []float64{}
	for i := len(records) - 1; i >= 0 && len(out) < s.recentCount; i-- {
		if records[i].Score.HasValue() {
			out = append(out, float64(records[i].Score))
		}
	}
	slices.Reverse(out)
	return out
}
