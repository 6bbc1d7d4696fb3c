// Package files provides the file system side of the stats pipeline.
//
// Locator lists the KovaaK's stats directory and groups result files by the
// scenario name they start with. Manager performs the atomic temp-file-and-rename
// writes the exporters rely on, so an aborted run never leaves a half-written
// document behind.
//
// Example usage:
//
//	locator := files.NewLocator(logger)
//	groups, err := locator.ScenarioFiles("/games/FPSAimTrainer/stats", []string{"1w4ts Voltaic"})
package files
