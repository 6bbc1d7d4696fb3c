package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "kovaakstats/internal/errors"
	"kovaakstats/pkg/contracts/domain"
)

// Locator maps scenario names to the result files whose names start with them
type Locator struct {
	logger *slog.Logger
}

// NewLocator creates a new scenario file locator
func NewLocator(logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{logger: logger.With(slog.String("component", "locator"))}
}

// ScenarioFiles lists dir once and groups its files by scenario.
//
// A file belongs to every scenario whose name is an exact, case-sensitive prefix
// of the file name, so "A Easy - ..." is listed under both "A" and "A Easy".
// Every scenario is present in the result, with an empty list when nothing matched.
// A repeated scenario name is listed once. Paths keep directory listing order.
func (l *Locator) ScenarioFiles(dir string, scenarios []string) (*domain.PathGroups, error) {
	for i, s := range scenarios {
		if s == "" {
			return nil, apierrors.Validation(fmt.Sprintf("scenario name at position %d is empty", i))
		}
	}

	names, err := listFiles(dir)
	if err != nil {
		return nil, err
	}

	groups := domain.NewPathGroups()
	for _, scenario := range scenarios {
		if _, seen := groups.Get(scenario); seen {
			continue
		}
		groups.Add(scenario)
		for _, name := range names {
			if strings.HasPrefix(name, scenario) {
				groups.Append(scenario, filepath.Join(dir, name))
			}
		}

		matched, _ := groups.Get(scenario)
		l.logger.Debug("Scenario files located",
			slog.String("scenario", scenario),
			slog.Int("files", len(matched)))
	}

	l.logger.Info("Stats directory scanned",
		slog.String("dir", dir),
		slog.Int("entries", len(names)),
		slog.Int("scenarios", groups.Len()),
		slog.Int("matched_files", groups.Total()))

	return groups, nil
}

// listFiles returns the names of the regular entries of dir, skipping sub-directories
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apierrors.NotFound(dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
