package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"kovaakstats/internal/files"
	"kovaakstats/pkg/contracts/domain"
)

const (
	maxSheetNameLength = 31
	defaultSheetName   = "Stats"
)

// XLSXExporter writes one worksheet per scenario
type XLSXExporter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewXLSXExporter creates a new workbook exporter
func NewXLSXExporter(manager *files.Manager, logger *slog.Logger) *XLSXExporter {
	if logger == nil {
		logger = slog.Default()
	}
	if manager == nil {
		manager = files.NewManager(logger)
	}
	return &XLSXExporter{
		files:  manager,
		logger: logger.With(slog.String("component", "xlsx_exporter")),
	}
}

// Export replaces path with a workbook holding a Date/Score sheet for every scenario,
// in aggregation order.
func (e *XLSXExporter) Export(path string, stats *domain.AggregatedStats) error {
	if stats == nil {
		return fmt.Errorf("export %s: no stats to write", path)
	}

	f, err := buildWorkbook(stats)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer f.Close()

	if err := e.files.WriteAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	}); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	e.logger.Info("Workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(f.GetSheetList())))
	return nil
}

func buildWorkbook(stats *domain.AggregatedStats) (*excelize.File, error) {
	f := excelize.NewFile()
	first := f.GetSheetName(0)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	used := make(map[string]bool)
	for i, scenario := range stats.Keys() {
		sheet := SheetName(scenario, used)
		if i == 0 {
			err = f.SetSheetName(first, sheet)
		} else {
			_, err = f.NewSheet(sheet)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet for %q: %w", scenario, err)
		}

		records, _ := stats.Get(scenario)
		if err := writeSheet(f, sheet, records, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet for %q: %w", scenario, err)
		}
	}

	if stats.Len() == 0 {
		if err := f.SetSheetName(first, defaultSheetName); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, records []domain.StatRecord, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Score"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{domain.FormatTimestamp(rec.Timestamp)}
		if rec.Score.HasValue() {
			row = append(row, float64(rec.Score))
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// SheetName turns a scenario name into a unique worksheet name: characters Excel
// rejects become '_', the name is cut to 31 characters, and collisions (compared
// case-insensitively) get a " (n)" suffix. used is updated.
func SheetName(scenario string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, scenario)
	base = strings.Trim(base, "'")
	if strings.TrimSpace(base) == "" {
		base = defaultSheetName
	}

	name := truncateRunes(base, maxSheetNameLength)
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		name = truncateRunes(base, maxSheetNameLength-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
