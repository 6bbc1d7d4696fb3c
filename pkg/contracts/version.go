// Package contracts holds the types shared between the service and its clients.
package contracts

import (
	"fmt"
	"runtime"
)

// Version is the application version
const Version = "1.0.0"

// DataFormatVersion changes whenever the data.json layout does
const DataFormatVersion = "v1"

// Build metadata, set with -ldflags "-X kovaakstats/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version    string `json:"version"`
	DataFormat string `json:"data_format"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Info returns the version of the running binary
func Info() VersionInfo {
	return VersionInfo{
		Version:    Version,
		DataFormat: DataFormatVersion,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the one-line form printed by -version
func (v VersionInfo) String() string {
	return fmt.Sprintf("kovaakstats v%s (data %s, commit %s, built %s, %s %s)",
		v.Version, v.DataFormat, v.GitCommit, v.BuildTime, v.GoVersion, v.Platform)
}
