package dataprocessing

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kovaakstats/internal/config"
	apierrors "kovaakstats/internal/errors"
	"kovaakstats/internal/shared/testutil"
	"kovaakstats/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func resultName(scenario, stamp string) string {
	return scenario + " - Challenge - " + stamp + " Stats.csv"
}

func TestProcessor_Aggregate(t *testing.T) {
	dir := t.TempDir()
	a1 := writeResultFile(t, dir, resultName("A", "2021.05.01-10.00.00"), "Score:,10.0\nChallenge Start:,10:00:00.0\n")
	a2 := writeResultFile(t, dir, resultName("A", "2021.05.02-11.00.00"), "Challenge Start:,11:00:00.0\n")
	b1 := writeResultFile(t, dir, resultName("B", "2021.06.01-12.00.00"), "Score:,3.5\n")

	groups := domain.NewPathGroups()
	groups.Append("A", a1)
	groups.Append("A", a2)
	groups.Add("Empty")
	groups.Append("B", b1)

	stats, report, err := NewProcessor(testLogger()).Aggregate(context.Background(), groups)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "Empty", "B"}, stats.Keys())

	recsA, _ := stats.Get("A")
	require.Len(t, recsA, 2)
	assert.Equal(t, domain.Score(10.0), recsA[0].Score)
	assert.Equal(t, "2021-05-01 10:00:00", domain.FormatTimestamp(recsA[0].Timestamp))
	assert.Equal(t, domain.NoScore, recsA[1].Score)
	assert.Equal(t, "2021-05-02 11:00:00", domain.FormatTimestamp(recsA[1].Timestamp))

	empty, ok := stats.Get("Empty")
	assert.True(t, ok)
	assert.Empty(t, empty)

	recsB, _ := stats.Get("B")
	require.Len(t, recsB, 1)
	assert.Equal(t, "2021-06-01 00:00:00", domain.FormatTimestamp(recsB[0].Timestamp))

	assert.Equal(t, 3, report.Scenarios)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 3, report.Records)
	assert.False(t, report.Failed())
}

func TestProcessor_KeepsDiscoveryOrder(t *testing.T) {
	dir := t.TempDir()
	late := writeResultFile(t, dir, resultName("A", "2022.01.01-00.00.00"), "Score:,2.0\n")
	early := writeResultFile(t, dir, resultName("A", "2020.01.01-00.00.00"), "Score:,1.0\n")

	groups := domain.NewPathGroups()
	groups.Append("A", late)
	groups.Append("A", early)

	stats, _, err := NewProcessor(testLogger()).Aggregate(context.Background(), groups)
	require.NoError(t, err)

	recs, _ := stats.Get("A")
	require.Len(t, recs, 2)
	assert.Equal(t, domain.Score(2.0), recs[0].Score)
	assert.Equal(t, domain.Score(1.0), recs[1].Score)
}

func TestProcessor_FailurePolicy(t *testing.T) {
	dir := t.TempDir()
	good := writeResultFile(t, dir, resultName("A", "2021.05.01-10.00.00"), "Score:,10.0\n")
	bad := writeResultFile(t, dir, resultName("A", "2021.05.02-10.00.00"), "Score:,ten\n")
	missing := filepath.Join(dir, resultName("B", "2021.05.03-10.00.00"))

	newGroups := func() *domain.PathGroups {
		g := domain.NewPathGroups()
		g.Append("A", good)
		g.Append("A", bad)
		g.Append("B", missing)
		return g
	}

	t.Run("abort stops at first failure", func(t *testing.T) {
		logger, logs := testutil.NewTestLogger(t)
		stats, report, err := NewProcessor(logger).Aggregate(context.Background(), newGroups())
		require.Error(t, err)
		assert.Nil(t, stats)
		assert.True(t, apierrors.IsKind(err, apierrors.KindMalformedScore))
		assert.Equal(t, 2, report.Files)

		rec := testutil.AssertLogged(t, logs, slog.LevelError, "Aggregation failed")
		assert.Equal(t, config.PolicyAbort, rec.Attrs["policy"])
	})

	t.Run("partial keeps good records", func(t *testing.T) {
		logger, logs := testutil.NewTestLogger(t)
		p := NewProcessor(logger, WithPolicy(config.PolicyPartial))
		assert.Equal(t, config.PolicyPartial, p.Policy())

		stats, report, err := p.Aggregate(context.Background(), newGroups())
		require.NoError(t, err)

		recsA, _ := stats.Get("A")
		assert.Len(t, recsA, 1)
		recsB, ok := stats.Get("B")
		assert.True(t, ok)
		assert.Empty(t, recsB)

		require.Len(t, report.Failures, 2)
		assert.Equal(t, bad, report.Failures[0].Path)
		assert.Equal(t, string(apierrors.KindMalformedScore), report.Failures[0].Kind)
		assert.Equal(t, "B", report.Failures[1].Scenario)
		assert.Equal(t, string(apierrors.KindIOFailure), report.Failures[1].Kind)
		assert.True(t, report.Failed())
		assert.Equal(t, 1, report.Records)

		rec := testutil.AssertLogged(t, logs, slog.LevelWarn, "Skipping unparseable result file")
		assert.Equal(t, bad, rec.Attrs["path"])
		testutil.AssertNoErrors(t, logs)
	})
}

func TestProcessor_Cancelled(t *testing.T) {
	dir := t.TempDir()
	groups := domain.NewPathGroups()
	groups.Append("A", writeResultFile(t, dir, resultName("A", "2021.05.01-10.00.00"), "Score:,1.0\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewProcessor(testLogger()).Aggregate(ctx, groups)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_EmptyGroups(t *testing.T) {
	stats, report, err := NewProcessor(nil).Aggregate(context.Background(), domain.NewPathGroups())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Len())
	assert.Equal(t, 0, report.Files)
}
