package exporter

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kovaakstats/pkg/contracts/domain"
)

func TestEncodeJSON_Layout(t *testing.T) {
	stats := domain.NewAggregatedStats()
	stats.Append("A & B", domain.StatRecord{
		Timestamp: time.Date(2021, 5, 1, 14, 30, 0, 0, time.UTC),
		Score:     20,
	})
	stats.Add("Empty")

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, stats))

	want := `{
    "A & B": [
        [
            {
                "Date:": "2021-05-01 14:30:00"
            },
            {
                "Score:": 20.0
            }
        ]
    ],
    "Empty": []
}
`
	assert.Equal(t, want, buf.String())
}

func TestEncodeJSON_NonASCIILiteral(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, sampleStats(t)))

	out := buf.String()
	assert.Contains(t, out, `"Ärger <Voltaic>"`)
	assert.Contains(t, out, `"2021-05-02 09:00:00.250000"`)
	assert.Contains(t, out, `"Score:": -1.0`)
}

func TestJSONExporter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	stats := sampleStats(t)

	require.NoError(t, NewJSONExporter(testManager(), testLogger()).Export(path, stats))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := ReadJSON(f)
	require.NoError(t, err)

	assert.Equal(t, stats.Keys(), got.Keys())
	for _, key := range stats.Keys() {
		want, _ := stats.Get(key)
		have, _ := got.Get(key)
		require.Len(t, have, len(want), key)
		for i := range want {
			assert.Equal(t, want[i].Score, have[i].Score)
			assert.Equal(t, domain.FormatTimestamp(want[i].Timestamp), domain.FormatTimestamp(have[i].Timestamp))
		}
	}
}

func TestJSONExporter_FailureKeepsPreviousDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"old":[]}`), 0644))

	stats := domain.NewAggregatedStats()
	stats.Append("A", domain.StatRecord{Timestamp: time.Now(), Score: domain.Score(math.NaN())})

	err := NewJSONExporter(testManager(), testLogger()).Export(path, stats)
	require.Error(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"old":[]}`, string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJSONExporter_NilStats(t *testing.T) {
	err := NewJSONExporter(nil, nil).Export(filepath.Join(t.TempDir(), "data.json"), nil)
	assert.Error(t, err)
}

func TestReadJSON_Invalid(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`[1,2]`))
	assert.Error(t, err)

	_, err = ReadJSON(strings.NewReader(`{"A": [`))
	assert.Error(t, err)
}
