// Package exporter writes aggregated stats to disk.
//
// This package contains three writers, all of which replace their target file
// atomically through files.Manager:
//
// JSONExporter: the consolidated data.json document, keyed by scenario in
// aggregation order, four-space indented, non-ASCII text kept literal.
//
// CSVWriter: a flat Scenario,Date,Score table with a UTF-8 BOM for Excel.
//
// XLSXExporter: a workbook with one Date/Score sheet per scenario.
//
// Example usage:
//
//	manager := files.NewManager(logger)
//	if err := exporter.NewJSONExporter(manager, logger).Export("data.json", stats); err != nil {
//	    return err
//	}
package exporter
