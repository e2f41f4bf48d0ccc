package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type ParseOptions struct {
	// DynamicTyping infers numbers and booleans; otherwise every non-empty cell
	// is a string.
	DynamicTyping bool
	// SkipEmptyLines drops records whose cells are all blank.
	SkipEmptyLines bool
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{DynamicTyping: true, SkipEmptyLines: true}
}

// Parse reads a header-first CSV document into rows keyed by column name. Cell
// text is trimmed. Records with the wrong number of fields or broken quoting are
// reported as RowErrors and parsing continues; only a document without a header
// fails.
func Parse(r io.Reader, opts ParseOptions) ([]Row, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmptyDocument
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header = normalizeHeader(header)
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return nil, nil, ErrEmptyDocument
	}

	var (
		rows     []Row
		warnings []RowError
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.StartLine
			}
			warnings = append(warnings, RowError{Line: line, Message: err.Error()})
			continue
		}
		if opts.SkipEmptyLines && blankRecord(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		switch {
		case len(record) < len(header):
			warnings = append(warnings, RowError{
				Line:    line,
				Message: fmt.Sprintf("too few fields: expected %d, got %d", len(header), len(record)),
			})
		case len(record) > len(header):
			warnings = append(warnings, RowError{
				Line:    line,
				Message: fmt.Sprintf("too many fields: expected %d, got %d", len(header), len(record)),
			})
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i >= len(record) {
				break
			}
			if opts.DynamicTyping {
				row[name] = TypeCell(record[i])
			} else {
				row[name] = StringCell(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, warnings, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
