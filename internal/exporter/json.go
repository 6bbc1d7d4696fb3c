package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"kovaakstats/internal/files"
	"kovaakstats/pkg/contracts/domain"
)

// jsonIndent matches the layout downstream consumers already read.
const jsonIndent = "    "

// JSONExporter writes the consolidated data.json document
type JSONExporter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewJSONExporter creates a new JSON exporter
func NewJSONExporter(manager *files.Manager, logger *slog.Logger) *JSONExporter {
	if logger == nil {
		logger = slog.Default()
	}
	if manager == nil {
		manager = files.NewManager(logger)
	}
	return &JSONExporter{
		files:  manager,
		logger: logger.With(slog.String("component", "json_exporter")),
	}
}

// Export replaces path with the document for stats. The previous file is left
// untouched if anything fails.
func (e *JSONExporter) Export(path string, stats *domain.AggregatedStats) error {
	if stats == nil {
		return fmt.Errorf("export %s: no stats to write", path)
	}

	if err := e.files.WriteAtomic(path, func(w io.Writer) error {
		return EncodeJSON(w, stats)
	}); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	e.logger.Info("Stats document written",
		slog.String("path", path),
		slog.Int("scenarios", stats.Len()),
		slog.Int("records", stats.Total()))
	return nil
}

// EncodeJSON writes stats to w indented by four spaces, with non-ASCII and HTML
// characters kept literal.
func EncodeJSON(w io.Writer, stats *domain.AggregatedStats) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("encode stats document: %w", err)
	}
	return nil
}

// ReadJSON decodes a document written by EncodeJSON.
func ReadJSON(r io.Reader) (*domain.AggregatedStats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stats document: %w", err)
	}
	stats := domain.NewAggregatedStats()
	if err := stats.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return stats, nil
}
