package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "kovaakstats/internal/errors"
	"kovaakstats/pkg/contracts/domain"
)

const sampleName = "Air Voltaic Easy - Challenge - 2021.05.01-14.30.00 Stats.csv"

func writeResultFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestKovaakDateExtractor(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    string
		wantErr bool
	}{
		{name: "standard name", file: sampleName, want: "2021.05.01"},
		{name: "exactly long enough", file: "2022.12.31-23.59.59 Stats.csv", want: "2022.12.31"},
		{name: "non-ascii scenario", file: "Ärger Voltaic - Challenge - 2023.01.15-08.00.00 Stats.csv", want: "2023.01.15"},
		{name: "too short", file: "short.csv", wantErr: true},
		{name: "empty", file: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KovaakDateExtractor(tt.file)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierrors.IsKind(err, apierrors.KindMalformedTimestamp))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRows(t *testing.T) {
	tests := []struct {
		name      string
		rows      [][]string
		wantTime  time.Time
		wantScore domain.Score
		wantKind  apierrors.Kind
	}{
		{
			name:      "score and start time",
			rows:      [][]string{{"Score:", "12.5"}, {"Challenge Start:", "14:30:00.0"}},
			wantTime:  time.Date(2021, 5, 1, 14, 30, 0, 0, time.UTC),
			wantScore: 12.5,
		},
		{
			name:      "no score row",
			rows:      [][]string{{"Challenge Start:", "14:30:00.0"}},
			wantTime:  time.Date(2021, 5, 1, 14, 30, 0, 0, time.UTC),
			wantScore: domain.NoScore,
		},
		{
			name:      "last score wins",
			rows:      [][]string{{"Score:", "10.0"}, {"Score:", "20.0"}},
			wantTime:  time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC),
			wantScore: 20.0,
		},
		{
			name:      "last start time wins",
			rows:      [][]string{{"Challenge Start:", "01:00:00.0"}, {"Challenge Start:", "02:00:00.5"}},
			wantTime:  time.Date(2021, 5, 1, 2, 0, 0, 500000000, time.UTC),
			wantScore: domain.NoScore,
		},
		{
			name:      "start time without fraction",
			rows:      [][]string{{"Challenge Start:", "09:15:30"}},
			wantTime:  time.Date(2021, 5, 1, 9, 15, 30, 0, time.UTC),
			wantScore: domain.NoScore,
		},
		{
			name:      "microsecond fraction",
			rows:      [][]string{{"Challenge Start:", "09:15:30.123456"}},
			wantTime:  time.Date(2021, 5, 1, 9, 15, 30, 123456000, time.UTC),
			wantScore: domain.NoScore,
		},
		{
			name:      "padded labels are not labels",
			rows:      [][]string{{" Score: ", "5"}, {"Challenge Start: ", "14:30:00"}, {"score:", "7"}},
			wantTime:  time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC),
			wantScore: domain.NoScore,
		},
		{
			name:      "short and unknown rows ignored",
			rows:      [][]string{{}, {"Score:"}, {"Kills:", "40"}, {"Score:", " 805.5 ", "extra"}},
			wantTime:  time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC),
			wantScore: 805.5,
		},
		{
			name:     "non-numeric score",
			rows:     [][]string{{"Score:", "abc"}},
			wantKind: apierrors.KindMalformedScore,
		},
		{
			name:     "non-finite score",
			rows:     [][]string{{"Score:", "NaN"}},
			wantKind: apierrors.KindMalformedScore,
		},
		{
			name:     "fraction longer than microseconds",
			rows:     [][]string{{"Challenge Start:", "14:30:00.1234567"}},
			wantKind: apierrors.KindMalformedTimestamp,
		},
		{
			name:     "bad start time",
			rows:     [][]string{{"Challenge Start:", "half past two"}},
			wantKind: apierrors.KindMalformedTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRows("2021.05.01", tt.rows)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apierrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.wantTime.Equal(rec.Timestamp), "got %s", rec.Timestamp)
			assert.Equal(t, tt.wantScore, rec.Score)
		})
	}
}

func TestParseRows_BadDate(t *testing.T) {
	_, err := ParseRows("not a date", nil)
	assert.True(t, apierrors.IsKind(err, apierrors.KindMalformedTimestamp))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	body := strings.Join([]string{
		"Kill #,Timestamp,Bot,Weapon",
		"1,14:30:01.100,Target,pistol",
		"",
		"Weapon,Shots,Hits",
		"pistol,50,40",
		"",
		"Kills:,40",
		"Score:,12.5",
		"Challenge Start:,14:30:00.0",
		`Scenario:,"Air Voltaic Easy"`,
	}, "\n")
	path := writeResultFile(t, dir, sampleName, body)

	rec, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.Score(12.5), rec.Score)
	assert.Equal(t, "2021-05-01 14:30:00", domain.FormatTimestamp(rec.Timestamp))
}

func TestParseFile_LazyQuotes(t *testing.T) {
	dir := t.TempDir()
	body := "Input Lag:,\"0\nSens Scale:,cm/360 \"Valorant\"\nScore:,30.0\n"
	path := writeResultFile(t, dir, sampleName, body)

	rec, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.Score(30.0), rec.Score)
}

func TestParseFile_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, sampleName)
		_, err := ParseFile(path)
		require.Error(t, err)
		assert.True(t, apierrors.IsKind(err, apierrors.KindIOFailure))
	})

	t.Run("malformed score carries path", func(t *testing.T) {
		path := writeResultFile(t, dir, "X - Challenge - 2021.05.01-14.30.00 Stats.csv", "Score:,oops\n")
		_, err := ParseFile(path)
		require.Error(t, err)
		var se *apierrors.StatsError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, apierrors.KindMalformedScore, se.Kind)
		assert.Equal(t, path, se.Path)
	})

	t.Run("name without date", func(t *testing.T) {
		path := writeResultFile(t, dir, "X.csv", "Score:,1.0\n")
		_, err := ParseFile(path)
		assert.True(t, apierrors.IsKind(err, apierrors.KindMalformedTimestamp))
	})
}

func TestParser_WithDateExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeResultFile(t, dir, "2020-03-04_scenario.csv", "Score:,7\n")

	p := NewParser(WithDateExtractor(func(name string) (string, error) {
		return strings.ReplaceAll(name[:10], "-", "."), nil
	}))
	rec, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2020-03-04 00:00:00", domain.FormatTimestamp(rec.Timestamp))
	assert.Equal(t, domain.Score(7), rec.Score)
}
