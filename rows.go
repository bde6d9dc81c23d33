package main

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// RowReader parses an uploaded spreadsheet into rows of cells.
type RowReader interface {
	ReadRows(filename string, data []byte) ([][]string, error)
}

type csvRowReader struct{}

// ReadRows parses CSV uploads. Ragged rows are fine; anything that is not a
// .csv file is rejected so the caller can index it without importing rows.
func (csvRowReader) ReadRows(filename string, data []byte) ([][]string, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".csv" {
		return nil, errors.Errorf("unsupported spreadsheet format: %v", ext)
	}
	r := csv.NewReader(newEscapeNormalizer(bytes.NewReader(data)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parse csv %v", filename)
	}
	return rows, nil
}

// extractRow turns one spreadsheet row into a candidate. The cells are joined
// into a line of text and put through the same number and keyword machinery as
// chat messages; rows with no numeric cell are skipped. A row without expense
// evidence counts as an expense, since imports are overwhelmingly outflow
// listings.
func extractRow(kt *KeywordTable, cells []string, today time.Time) (Candidate, bool) {
	var parts []string
	for _, cell := range cells {
		if c := strings.TrimSpace(cell); c != "" {
			parts = append(parts, c)
		}
	}
	line := strings.Join(parts, " ")
	toks := findNumbers(line)
	if len(toks) == 0 {
		return Candidate{}, false
	}

	ttype := TypeExpense
	if containsAny(strings.ToLower(line), kt.Income) {
		ttype = TypeIncome
	}
	return Candidate{
		Type:        ttype,
		Amount:      toks[0].Value,
		Currency:    currencyKZT,
		Date:        today.Format(dateLayout),
		Description: truncate(line, descLimit),
	}, true
}

type escState int

const (
	escStart escState = iota
	escQuoted
	escEscape
)

// escapeNormalizer rewrites backslash escapes inside quoted CSV fields into
// the doubled-quote form encoding/csv expects.
type escapeNormalizer struct {
	delegate  io.Reader
	buf       []byte
	remaining []byte
	escaped   []byte
	s         escState
}

func newEscapeNormalizer(r io.Reader) *escapeNormalizer {
	return &escapeNormalizer{
		delegate: r,
		buf:      make([]byte, 4092),
	}
}

func (c *escapeNormalizer) Read(p []byte) (n int, err error) {
	if len(c.escaped) != 0 {
		n = copy(p, c.escaped)
		c.escaped = c.escaped[n:]
		return n, nil
	}

	if len(c.remaining) == 0 {
		n, err = c.delegate.Read(c.buf)
		if n == 0 {
			return n, err
		}
		c.remaining = c.buf[:n]
	}

	i := 0 // cursor to p
	for i < len(p) && len(c.remaining) != 0 {
		next := c.remaining[0]
		c.remaining = c.remaining[1:]
		switch c.s {
		case escStart:
			p[i] = next
			i++
			if next == '"' {
				c.s = escQuoted
			}
		case escQuoted:
			switch next {
			case '"':
				p[i] = next
				i++
				c.s = escStart
			case '\\':
				c.s = escEscape
			default:
				p[i] = next
				i++
			}
		case escEscape:
			switch next {
			case '"':
				c.escaped = []byte{'"', '"'}
			case 'n':
				c.escaped = []byte{'\n'}
			default:
				c.escaped = []byte{next}
			}
			c.s = escQuoted
			return i, err
		}
	}

	return i, err
}
