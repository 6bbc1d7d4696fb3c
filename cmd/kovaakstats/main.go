// Command kovaakstats reads KovaaK's result files once and writes the
// consolidated data.json, plus optional CSV and XLSX copies.
//
// Usage:
//
//	kovaakstats -dir "C:/Program Files (x86)/Steam/steamapps/common/FPSAimTrainer/FPSAimTrainer/stats" \
//	    -scenario "Air Voltaic Easy" -scenario "Pasu Voltaic Easy" -out data.json
//
// Without -scenario the configured (or built-in Voltaic) scenario list is used.
// The exit status is 1 when extraction fails, in which case data.json is left
// untouched, and 2 for invalid flags or configuration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kovaakstats/internal/config"
	"kovaakstats/internal/infrastructure"
	"kovaakstats/internal/services"
	"kovaakstats/pkg/contracts"
)

// stringList is a repeatable string flag
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// options holds the parsed command line
type options struct {
	configFile  string
	statsDir    string
	outputFile  string
	csvFile     string
	xlsxFile    string
	policy      string
	scenarios   stringList
	showVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("kovaakstats", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configFile, "config", "", "YAML config file (default kovaakstats.yaml if present)")
	fs.StringVar(&opts.statsDir, "dir", "", "KovaaK's stats directory")
	fs.StringVar(&opts.outputFile, "out", "", "JSON output file")
	fs.StringVar(&opts.csvFile, "csv", "", "optional CSV output file")
	fs.StringVar(&opts.xlsxFile, "xlsx", "", "optional XLSX output file")
	fs.StringVar(&opts.policy, "policy", "", "failure policy: abort or partial")
	fs.Var(&opts.scenarios, "scenario", "scenario name; repeat for several")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// apply writes the flags that were given over cfg
func (o *options) apply(cfg *config.Config) {
	if o.statsDir != "" {
		cfg.Extraction.StatsDir = o.statsDir
	}
	if len(o.scenarios) > 0 {
		cfg.Extraction.Scenarios = o.scenarios
	}
	if o.policy != "" {
		cfg.Extraction.FailurePolicy = o.policy
	}
	if o.outputFile != "" {
		cfg.Paths.OutputFile = o.outputFile
	}
	if o.csvFile != "" {
		cfg.Paths.CSVFile = o.csvFile
	}
	if o.xlsxFile != "" {
		cfg.Paths.XLSXFile = o.xlsxFile
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, contracts.Info())
		return 0
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "kovaakstats: %v\n", err)
		return 2
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "kovaakstats: %v\n", err)
		return 2
	}

	logCfg := cfg.Logging
	logCfg.FilePath = cfg.LogFilePath()
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "kovaakstats: failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		fmt.Fprintf(stderr, "kovaakstats: %v\n", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateExtractionMetrics(providers.Meter)
	if err != nil {
		fmt.Fprintf(stderr, "kovaakstats: %v\n", err)
		return 1
	}

	svc := services.NewStatsService(cfg, logger,
		services.WithExtractionMetrics(metrics),
		services.WithServiceTracer(providers.Tracer))

	result, err := svc.Run(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "kovaakstats: %v\n", err)
		return 1
	}

	report := result.Report
	fmt.Fprintf(stdout, "%d scenarios, %d files, %d records", report.Scenarios, report.Files, report.Records)
	if report.Failed() {
		fmt.Fprintf(stdout, ", %d files skipped", len(report.Failures))
	}
	fmt.Fprintf(stdout, " -> %s\n", strings.Join(result.Outputs, ", "))
	for _, f := range report.Failures {
		fmt.Fprintf(stderr, "skipped %s: %s\n", f.Path, f.Message)
	}
	return 0
}
