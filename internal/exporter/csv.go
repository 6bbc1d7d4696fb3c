package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"kovaakstats/internal/files"
	"kovaakstats/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVHeaders are the columns of the flat stats export
var CSVHeaders = []string{"Scenario", "Date", "Score"}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(manager *files.Manager, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if manager == nil {
		manager = files.NewManager(logger)
	}
	return &CSVWriter{
		files:  manager,
		logger: logger.With(slog.String("component", "csv_exporter")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV replaces filePath with the given rows
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	return w.files.WriteAtomic(filePath, func(out io.Writer) error {
		if options.BOMPrefix {
			if _, err := out.Write(utf8BOM); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}

		writer := csv.NewWriter(out)
		if len(options.Headers) > 0 {
			if err := writer.Write(options.Headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for i, record := range options.Records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// Export writes one Scenario,Date,Score row per record. Records without a
// measured score get an empty Score cell.
func (w *CSVWriter) Export(filePath string, stats *domain.AggregatedStats) error {
	if stats == nil {
		return fmt.Errorf("export %s: no stats to write", filePath)
	}

	if err := w.WriteCSV(filePath, WriteOptions{
		Headers:   CSVHeaders,
		Records:   csvRows(stats),
		BOMPrefix: true,
	}); err != nil {
		return fmt.Errorf("export %s: %w", filePath, err)
	}

	w.logger.Info("CSV export written",
		slog.String("path", filePath),
		slog.Int("records", stats.Total()))
	return nil
}

func csvRows(stats *domain.AggregatedStats) [][]string {
	rows := make([][]string, 0, stats.Total())
	for _, scenario := range stats.Keys() {
		records, _ := stats.Get(scenario)
		for _, rec := range records {
			rows = append(rows, []string{
				scenario,
				domain.FormatTimestamp(rec.Timestamp),
				scoreCell(rec.Score),
			})
		}
	}
	return rows
}

func scoreCell(s domain.Score) string {
	if !s.HasValue() {
		return ""
	}
	return s.String()
}
