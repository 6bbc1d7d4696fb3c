package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apierrors "kovaakstats/internal/errors"
	"kovaakstats/pkg/contracts/domain"
)

const (
	// sourceLayout is how result files spell the session start.
	// The fraction is optional when parsing.
	sourceLayout = "2006.01.02 15:04:05.999999"

	// maxFractionDigits caps the sub-second part at microseconds.
	maxFractionDigits = 6

	// defaultClock is used when a file has no Challenge Start: row.
	defaultClock = "00:00:00.0"

	// Result files end in "YYYY.MM.DD-HH.MM.SS Stats.csv"; the date token starts
	// 29 characters from the end and is 10 characters long.
	dateTokenOffset = 29
	dateTokenLength = 10
)

var (
	errShortName    = errors.New("file name too short to carry a session date")
	errLongFraction = fmt.Errorf("fractional seconds longer than %d digits", maxFractionDigits)
)

// DateExtractor returns the "YYYY.MM.DD" date encoded in a result file name.
type DateExtractor func(name string) (string, error)

// KovaakDateExtractor reads the date token from the fixed position KovaaK's uses
// when naming result files, e.g.
//
//	"Air Voltaic Easy - Challenge - 2021.05.01-14.30.00 Stats.csv" -> "2021.05.01"
//
// Positions are counted in characters, not bytes.
func KovaakDateExtractor(name string) (string, error) {
	runes := []rune(name)
	if len(runes) < dateTokenOffset {
		return "", apierrors.MalformedTimestamp("", name, errShortName)
	}
	start := len(runes) - dateTokenOffset
	return string(runes[start : start+dateTokenLength]), nil
}

// rowAccumulator folds the rows of one result file into a record.
// Later Score: and Challenge Start: rows override earlier ones.
type rowAccumulator struct {
	date  string
	clock string
	score domain.Score
}

func newRowAccumulator(date string) *rowAccumulator {
	return &rowAccumulator{
		date:  date,
		clock: defaultClock,
		score: domain.NoScore,
	}
}

// add applies one row. Rows with fewer than two cells or an unknown label are ignored.
// Labels must match exactly; padded cells such as " Score: " are not labels.
func (a *rowAccumulator) add(row []string) error {
	if len(row) < 2 {
		return nil
	}

	value := strings.TrimSpace(row[1])
	switch row[0] {
	case domain.ScoreLabel:
		score, err := parseScore(value)
		if err != nil {
			return err
		}
		a.score = score
	case domain.ChallengeStartLabel:
		a.clock = value
	}
	return nil
}

// record builds the final StatRecord, rejecting a date/time pair that does not parse.
func (a *rowAccumulator) record() (domain.StatRecord, error) {
	raw := a.date + " " + a.clock
	if _, frac, ok := strings.Cut(a.clock, "."); ok && len(frac) > maxFractionDigits {
		return domain.StatRecord{}, apierrors.MalformedTimestamp("", raw, errLongFraction)
	}
	ts, err := time.Parse(sourceLayout, raw)
	if err != nil {
		return domain.StatRecord{}, apierrors.MalformedTimestamp("", raw, err)
	}
	return domain.StatRecord{
		Timestamp: ts,
		Score:     a.score,
	}, nil
}

func parseScore(value string) (domain.Score, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, apierrors.MalformedScore("", value, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apierrors.MalformedScore("", value, fmt.Errorf("score is not finite"))
	}
	return domain.Score(f), nil
}

// ParseRows builds a record from already split rows, with date as "YYYY.MM.DD".
func ParseRows(date string, rows [][]string) (domain.StatRecord, error) {
	acc := newRowAccumulator(date)
	for _, row := range rows {
		if err := acc.add(row); err != nil {
			return domain.StatRecord{}, err
		}
	}
	return acc.record()
}

// Parser turns result files into stat records.
type Parser struct {
	extractDate DateExtractor
	logger      *slog.Logger
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithDateExtractor replaces the file name date extractor
func WithDateExtractor(fn DateExtractor) ParserOption {
	return func(p *Parser) {
		if fn != nil {
			p.extractDate = fn
		}
	}
}

// WithParserLogger sets the logger used for per-file debug output
func WithParserLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a parser using KovaakDateExtractor unless overridden
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		extractDate: KovaakDateExtractor,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "parser"))
	return p
}

// ParseFile reads one result file with the default parser.
func ParseFile(path string) (domain.StatRecord, error) {
	return NewParser().ParseFile(path)
}

// ParseFile opens path, scans all of it and returns its record.
// Errors are *apierrors.StatsError values carrying path.
func (p *Parser) ParseFile(path string) (domain.StatRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.StatRecord{}, apierrors.IOFailure(path, err)
	}
	defer f.Close()

	rec, err := p.Parse(filepath.Base(path), f)
	if err != nil {
		return domain.StatRecord{}, apierrors.WithPath(err, path)
	}

	p.logger.Debug("Result file parsed",
		slog.String("path", path),
		slog.String("timestamp", domain.FormatTimestamp(rec.Timestamp)),
		slog.String("score", rec.Score.String()))
	return rec, nil
}

// Parse reads the rows of a result file from r. name is the file's base name and
// supplies the session date.
func (p *Parser) Parse(name string, r io.Reader) (domain.StatRecord, error) {
	date, err := p.extractDate(name)
	if err != nil {
		if apierrors.KindOf(err) == "" {
			err = apierrors.MalformedTimestamp("", name, err)
		}
		return domain.StatRecord{}, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	acc := newRowAccumulator(date)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.StatRecord{}, apierrors.IOFailure("", err)
		}
		if err := acc.add(row); err != nil {
			return domain.StatRecord{}, err
		}
	}
	return acc.record()
}
