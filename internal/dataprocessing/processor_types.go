package dataprocessing

import (
	"time"

	"kovaakstats/pkg/contracts/domain"
)

// Report summarizes one aggregation run
type Report struct {
	Scenarios int                   `json:"scenarios"`
	Files     int                   `json:"files"`
	Records   int                   `json:"records"`
	Failures  []domain.ParseFailure `json:"failures"`
	Duration  time.Duration         `json:"duration_ns"`
}

// Failed reports whether any file was skipped
func (r *Report) Failed() bool {
	return r != nil && len(r.Failures) > 0
}

// failureOf converts a failed outcome into its report entry
func failureOf(o domain.FileOutcome) domain.ParseFailure {
	return domain.ParseFailure{
		Scenario: o.Scenario,
		Path:     o.Path,
		Kind:     kindString(o.Err),
		Message:  o.Err.Error(),
	}
}
