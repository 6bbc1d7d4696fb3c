package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable the application reads
const EnvPrefix = "KOVAAK"

// DefaultConfigFile is read when no config file is given and it exists in the working directory
const DefaultConfigFile = "kovaakstats.yaml"

// Failure policies for the extraction run
const (
	PolicyAbort   = "abort"
	PolicyPartial = "partial"
)

// Config represents the complete application configuration
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction" envconfig:"EXTRACTION"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ExtractionConfig describes which files are read and how failures are handled
type ExtractionConfig struct {
	StatsDir      string   `yaml:"stats_dir" envconfig:"STATS_DIR" validate:"required"`
	Scenarios     []string `yaml:"scenarios" envconfig:"SCENARIOS" validate:"required,min=1,dive,required"`
	FailurePolicy string   `yaml:"failure_policy" envconfig:"FAILURE_POLICY" default:"abort" validate:"oneof=abort partial"`
}

// PathsConfig contains output locations. Empty CSV/XLSX paths disable those exports.
type PathsConfig struct {
	OutputFile string `yaml:"output_file" envconfig:"OUTPUT_FILE" default:"data.json" validate:"required"`
	CSVFile    string `yaml:"csv_file" envconfig:"CSV_FILE"`
	XLSXFile   string `yaml:"xlsx_file" envconfig:"XLSX_FILE"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/kovaakstats.log"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8090" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"10"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"kovaak-stats"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=none stdout"`
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus" validate:"oneof=none prometheus"`
}

// Load loads configuration from environment variables and an optional YAML file.
// Environment variables win over the file; built-in defaults fill whatever is left.
// Load does not validate, so callers can apply command line overrides first.
func Load(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configFile = DefaultConfigFile
		}
	}
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if len(cfg.Extraction.Scenarios) == 0 {
		cfg.Extraction.Scenarios = DefaultScenarios()
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config into env config. A value from the file is used
// only when the matching environment variable is not set.
func mergeConfigs(fileConfig, envConfig Config) Config {
	e, f := &envConfig, &fileConfig

	e.Extraction.StatsDir = pick("EXTRACTION_STATS_DIR", e.Extraction.StatsDir, f.Extraction.StatsDir)
	e.Extraction.FailurePolicy = pick("EXTRACTION_FAILURE_POLICY", e.Extraction.FailurePolicy, f.Extraction.FailurePolicy)
	if !envSet("EXTRACTION_SCENARIOS") && len(f.Extraction.Scenarios) > 0 {
		e.Extraction.Scenarios = f.Extraction.Scenarios
	}

	e.Paths.OutputFile = pick("PATHS_OUTPUT_FILE", e.Paths.OutputFile, f.Paths.OutputFile)
	e.Paths.CSVFile = pick("PATHS_CSV_FILE", e.Paths.CSVFile, f.Paths.CSVFile)
	e.Paths.XLSXFile = pick("PATHS_XLSX_FILE", e.Paths.XLSXFile, f.Paths.XLSXFile)
	e.Paths.LogsDir = pick("PATHS_LOGS_DIR", e.Paths.LogsDir, f.Paths.LogsDir)

	e.Logging.Level = pick("LOGGING_LEVEL", e.Logging.Level, f.Logging.Level)
	e.Logging.Output = pick("LOGGING_OUTPUT", e.Logging.Output, f.Logging.Output)
	e.Logging.Format = pick("LOGGING_FORMAT", e.Logging.Format, f.Logging.Format)
	e.Logging.FilePath = pick("LOGGING_FILE_PATH", e.Logging.FilePath, f.Logging.FilePath)

	e.Server.Port = pick("SERVER_PORT", e.Server.Port, f.Server.Port)
	e.Server.ReadTimeout = pick("SERVER_READ_TIMEOUT", e.Server.ReadTimeout, f.Server.ReadTimeout)
	e.Server.WriteTimeout = pick("SERVER_WRITE_TIMEOUT", e.Server.WriteTimeout, f.Server.WriteTimeout)
	e.Server.IdleTimeout = pick("SERVER_IDLE_TIMEOUT", e.Server.IdleTimeout, f.Server.IdleTimeout)
	e.Server.ShutdownTimeout = pick("SERVER_SHUTDOWN_TIMEOUT", e.Server.ShutdownTimeout, f.Server.ShutdownTimeout)
	e.Server.RateLimitRPS = pick("SERVER_RATE_LIMIT_RPS", e.Server.RateLimitRPS, f.Server.RateLimitRPS)
	e.Server.RateLimitBurst = pick("SERVER_RATE_LIMIT_BURST", e.Server.RateLimitBurst, f.Server.RateLimitBurst)
	if !envSet("SERVER_ALLOWED_ORIGINS") && len(f.Server.AllowedOrigins) > 0 {
		e.Server.AllowedOrigins = f.Server.AllowedOrigins
	}

	e.Telemetry.ServiceName = pick("TELEMETRY_SERVICE_NAME", e.Telemetry.ServiceName, f.Telemetry.ServiceName)
	e.Telemetry.TraceExporter = pick("TELEMETRY_TRACE_EXPORTER", e.Telemetry.TraceExporter, f.Telemetry.TraceExporter)
	e.Telemetry.MetricExporter = pick("TELEMETRY_METRIC_EXPORTER", e.Telemetry.MetricExporter, f.Telemetry.MetricExporter)

	return envConfig
}

func pick[T comparable](key string, envValue, fileValue T) T {
	var zero T
	if envSet(key) || fileValue == zero {
		return envValue
	}
	return fileValue
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + key)
	return ok
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// LogFilePath resolves the log file relative to the logs directory
func (c *Config) LogFilePath() string {
	if filepath.IsAbs(c.Logging.FilePath) || filepath.Dir(c.Logging.FilePath) != "." {
		return c.Logging.FilePath
	}
	return filepath.Join(c.Paths.LogsDir, c.Logging.FilePath)
}
