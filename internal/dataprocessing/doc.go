// Package dataprocessing turns KovaaK's result files into stat records.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Parser: reads one result file into a domain.StatRecord
// 2. Processor: applies the parser to every located file and groups the records by scenario
// 3. Summarizer: condenses each scenario's records into best/average/recent figures
//
// # Usage
//
//	groups, err := files.NewLocator(logger).ScenarioFiles(dir, scenarios)
//	if err != nil {
//	    return err
//	}
//	stats, report, err := dataprocessing.NewProcessor(logger).Aggregate(ctx, groups)
//
// # Result files
//
// A result file is a comma separated file whose rows carry a label in the first
// cell. Only two labels matter:
//
//	Score:,805.5
//	Challenge Start:,14:30:00.123
//
// The session date is not in the file body; it is encoded in the file name
// ("... - 2021.05.01-14.30.00 Stats.csv") and read by a DateExtractor.
// A file without a Score: row yields domain.NoScore, one without a
// Challenge Start: row gets midnight.
//
// # Failure policy
//
// Processor aborts on the first file that cannot be parsed unless configured
// with config.PolicyPartial, in which case failed files are listed in the Report.
package dataprocessing
