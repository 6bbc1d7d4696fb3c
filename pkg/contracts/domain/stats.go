package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Labels used both in the source result files and in the consolidated document.
const (
	ScoreLabel          = "Score:"
	ChallengeStartLabel = "Challenge Start:"
	DateLabel           = "Date:"
)

// TimestampLayout is the canonical rendering of a record timestamp.
// Microseconds are appended only when non-zero (see FormatTimestamp).
const TimestampLayout = "2006-01-02 15:04:05"

// NoScore marks a record whose file carried no Score: row. It can never be a
// real result, so downstream consumers can tell it apart from a genuine 0.
const NoScore Score = -1.0

// Score is the numeric result of one training session.
type Score float64

// HasValue reports whether the score was actually measured.
func (s Score) HasValue() bool {
	return s != NoScore
}

// String renders the score the way it appears in the consolidated document.
func (s Score) String() string {
	str := strconv.FormatFloat(float64(s), 'f', -1, 64)
	if !strings.Contains(str, ".") {
		str += ".0"
	}
	return str
}

// MarshalJSON always emits a decimal point so whole scores stay floats (20.0, -1.0).
func (s Score) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
		return nil, fmt.Errorf("score %v has no JSON representation", float64(s))
	}
	return []byte(s.String()), nil
}

// StatRecord is the (timestamp, score) pair extracted from one result file.
type StatRecord struct {
	Timestamp time.Time
	Score     Score
}

// FormatTimestamp renders t as "YYYY-MM-DD HH:MM:SS" with a six digit
// fraction when the timestamp has sub-second precision.
func FormatTimestamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format(TimestampLayout + ".000000")
	}
	return t.Format(TimestampLayout)
}

// ParseTimestamp is the inverse of FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout+".999999", s)
}

// MarshalJSON encodes the record as a two element array of single-key objects:
//
//	[{"Date:": "2021-05-01 14:30:00"}, {"Score:": 12.5}]
func (r StatRecord) MarshalJSON() ([]byte, error) {
	score, err := r.Score.MarshalJSON()
	if err != nil {
		return nil, err
	}
	date, err := marshalString(FormatTimestamp(r.Timestamp))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`[{"` + DateLabel + `":`)
	buf.Write(date)
	buf.WriteString(`},{"` + ScoreLabel + `":`)
	buf.Write(score)
	buf.WriteString(`}]`)
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the two element form written by MarshalJSON.
func (r *StatRecord) UnmarshalJSON(data []byte) error {
	var pairs []map[string]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("decode stat record: %w", err)
	}

	var dateSeen, scoreSeen bool
	for _, pair := range pairs {
		if raw, ok := pair[DateLabel]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("decode %s: %w", DateLabel, err)
			}
			ts, err := ParseTimestamp(s)
			if err != nil {
				return fmt.Errorf("decode %s: %w", DateLabel, err)
			}
			r.Timestamp = ts
			dateSeen = true
		}
		if raw, ok := pair[ScoreLabel]; ok {
			var f float64
			if err := json.Unmarshal(raw, &f); err != nil {
				return fmt.Errorf("decode %s: %w", ScoreLabel, err)
			}
			r.Score = Score(f)
			scoreSeen = true
		}
	}
	if !dateSeen || !scoreSeen {
		return fmt.Errorf("stat record needs both %q and %q", DateLabel, ScoreLabel)
	}
	return nil
}

// Groups is an insertion-ordered mapping from scenario name to a sequence of values.
// Keys keep the order they were first added in; values keep append order.
type Groups[T any] struct {
	order  []string
	values map[string][]T
}

// NewGroups returns an empty Groups.
func NewGroups[T any]() *Groups[T] {
	return &Groups[T]{values: make(map[string][]T)}
}

// Add registers key with an empty sequence if it is not present yet.
func (g *Groups[T]) Add(key string) {
	if g.values == nil {
		g.values = make(map[string][]T)
	}
	if _, ok := g.values[key]; ok {
		return
	}
	g.order = append(g.order, key)
	g.values[key] = []T{}
}

// Append adds v to the end of key's sequence, registering key if needed.
func (g *Groups[T]) Append(key string, v T) {
	g.Add(key)
	g.values[key] = append(g.values[key], v)
}

// Keys returns the keys in insertion order.
func (g *Groups[T]) Keys() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Get returns key's sequence and whether key is present.
func (g *Groups[T]) Get(key string) ([]T, bool) {
	v, ok := g.values[key]
	return v, ok
}

// Len is the number of keys.
func (g *Groups[T]) Len() int {
	return len(g.order)
}

// Total is the number of values across all keys.
func (g *Groups[T]) Total() int {
	n := 0
	for _, v := range g.values {
		n += len(v)
	}
	return n
}

// PathGroups maps each scenario to the result files discovered for it.
type PathGroups = Groups[string]

// NewPathGroups returns an empty PathGroups.
func NewPathGroups() *PathGroups {
	return NewGroups[string]()
}

// AggregatedStats maps each requested scenario to its records in discovery order.
// It serializes to the consolidated data.json document.
type AggregatedStats struct {
	Groups[StatRecord]
}

// NewAggregatedStats returns an empty AggregatedStats.
func NewAggregatedStats() *AggregatedStats {
	return &AggregatedStats{Groups: *NewGroups[StatRecord]()}
}

// MarshalJSON writes scenarios in aggregation order. Scenario names are written
// verbatim, without HTML escaping.
func (a *AggregatedStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range a.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalString(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteString(":[")
		for j, rec := range a.values[key] {
			if j > 0 {
				buf.WriteByte(',')
			}
			b, err := rec.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("scenario %q record %d: %w", key, j, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a consolidated document, keeping the key order of the input.
func (a *AggregatedStats) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode stats document: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode stats document: expected object, got %v", tok)
	}

	out := NewAggregatedStats()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode stats document: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode stats document: unexpected token %v", tok)
		}
		var records []StatRecord
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("decode scenario %q: %w", key, err)
		}
		out.Add(key)
		for _, rec := range records {
			out.Append(key, rec)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode stats document: %w", err)
	}

	*a = *out
	return nil
}

// FileOutcome is the tagged result of parsing one result file: either Record is
// valid or Err describes why the file could not be parsed.
type FileOutcome struct {
	Scenario string
	Path     string
	Record   StatRecord
	Err      error
}

// OK reports whether the file produced a record.
func (o FileOutcome) OK() bool {
	return o.Err == nil
}

// ParseFailure describes one skipped file in a partial run.
type ParseFailure struct {
	Scenario string `json:"scenario"`
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
