package config

// defaultScenarios is the Voltaic intermediate benchmark set.
var defaultScenarios = []string{
	"Pasu Voltaic Easy",
	"B180 Voltaic Easy",
	"Popcorn Voltaic Easy",
	"ww3t Voltaic",
	"1w4ts Voltaic",
	"6 Sphere Hipfire Voltaic",
	"Smoothbot Voltaic Easy",
	"Air Angelic 4 Voltaic Easy",
	"PGTI Voltaic Easy",
	"FuglaaXYZ Voltaic Easy",
	"Ground Plaza Voltaic Easy",
	"Air Voltaic Easy",
	"patTS Voltaic Easy",
	"psalmTS Voltaic Easy",
	"voxTS Voltaic Easy",
	"kinTS Voltaic Easy",
	"B180T Voltaic Easy",
	"Smoothbot TS Voltaic Easy",
}

// DefaultScenarios returns a copy of the built-in scenario list
func DefaultScenarios() []string {
	out := make([]string, len(defaultScenarios))
	copy(out, defaultScenarios)
	return out
}

// DefaultLoggingConfig returns the logging configuration used when none could be loaded
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:    "info",
		Output:   "console",
		Format:   "json",
		FilePath: "logs/kovaakstats.log",
	}
}
