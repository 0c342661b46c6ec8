package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"lexicon/internal/apperrors"
	"lexicon/internal/models"
)

// Column names every dataset must carry
const (
	ColumnWord       = "word"
	ColumnDefinition = "definition"
)

// MaxWordLength is the longest word, in characters, the words relation holds
const MaxWordLength = 255

const utf8BOM = "\uFEFF"

// RawRecord is one input row keyed by column name
type RawRecord map[string]string

// RecordSource yields raw records lazily. Next returns io.EOF once the
// source is exhausted. An error wrapping apperrors.ErrInvalidInput marks a
// single malformed record; the caller may keep reading.
type RecordSource interface {
	Next() (RawRecord, error)
}

// NormalizeRecord trims both fields and rejects the record when either is
// empty afterwards or the word exceeds MaxWordLength. Case and inner
// whitespace are left untouched.
func NormalizeRecord(rec RawRecord) (models.WordPair, bool) {
	word := strings.TrimSpace(rec[ColumnWord])
	definition := strings.TrimSpace(rec[ColumnDefinition])
	if word == "" || definition == "" || utf8.RuneCountInString(word) > MaxWordLength {
		return models.WordPair{}, false
	}
	return models.WordPair{Word: word, Definition: definition}, true
}

// CSVSource streams records from comma-separated input with a header row
type CSVSource struct {
	reader  *csv.Reader
	columns map[string]int
	closer  io.Closer
	line    int
}

// OpenCSV opens path and reads its header. A missing or unreadable file is
// reported as apperrors.ErrSourceUnavailable.
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSourceUnavailable, err, "open %s", path)
	}

	src, err := NewCSVSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// NewCSVSource reads the header from r. Header names are matched without
// regard to case or surrounding whitespace, and a leading BOM is dropped.
// Extra columns are ignored.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable column count
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", apperrors.ErrSourceUnavailable)
		}
		return nil, apperrors.Wrap(apperrors.ErrSourceUnavailable, err, "read header")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	for _, required := range []string{ColumnWord, ColumnDefinition} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: header has no %q column", apperrors.ErrSourceUnavailable, required)
		}
	}

	return &CSVSource{reader: reader, columns: columns, line: 1}, nil
}

// Next returns the next record. Short rows yield empty values for the
// missing columns, which the normalizer then rejects.
func (s *CSVSource) Next() (RawRecord, error) {
	record, err := s.reader.Read()
	s.line++
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrInvalidInput, parseErr.Line, parseErr.Err)
		}
		return nil, apperrors.Wrap(apperrors.ErrSourceUnavailable, err, "read record %d", s.line)
	}

	raw := make(RawRecord, 2)
	for _, name := range []string{ColumnWord, ColumnDefinition} {
		if idx := s.columns[name]; idx < len(record) {
			raw[name] = record[idx]
		}
	}
	return raw, nil
}

// Close releases the underlying file, if any
func (s *CSVSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
