// Package csvupload turns an uploaded header-less CSV into an ordered list of questions.
package csvupload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Kind classifies a validation failure
type Kind string

const (
	KindEmptyInput   Kind = "empty_input"
	KindMalformedRow Kind = "malformed_row"
	KindBlankRow     Kind = "blank_row"
	KindParse        Kind = "parse_error"
)

// ValidationError describes why an upload was rejected. Row is 1-based.
type ValidationError struct {
	Kind         Kind
	Row          int
	FoundColumns int
	Err          error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindEmptyInput:
		return "CSV is empty"
	case KindMalformedRow:
		return fmt.Sprintf("Row %d can only contain one column. Found %d.", e.Row, e.FoundColumns)
	case KindBlankRow:
		return fmt.Sprintf("Row %d contains only spaces", e.Row)
	default:
		return fmt.Sprintf("CSV parsing error: %v", e.Err)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, ErrBlankRow)
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Row == 0
}

// Sentinels for errors.Is
var (
	ErrEmptyInput   = &ValidationError{Kind: KindEmptyInput}
	ErrMalformedRow = &ValidationError{Kind: KindMalformedRow}
	ErrBlankRow     = &ValidationError{Kind: KindBlankRow}
	ErrParse        = &ValidationError{Kind: KindParse}
)

const utf8BOM = "\ufeff"

// Validate parses raw as header-less CSV with exactly one field per row and returns
// the trimmed fields in input order. The first offending row aborts the whole upload.
// Completely empty lines are not rows.
func Validate(raw string) ([]string, error) {
	if !utf8.ValidString(raw) {
		return nil, &ValidationError{Kind: KindParse, Err: errors.New("input is not valid UTF-8")}
	}

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(raw, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var questions []string
	for row := 1; ; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ValidationError{Kind: KindParse, Row: row, Err: err}
		}

		if len(record) != 1 {
			return nil, &ValidationError{Kind: KindMalformedRow, Row: row, FoundColumns: len(record)}
		}

		question := strings.TrimSpace(record[0])
		if question == "" {
			return nil, &ValidationError{Kind: KindBlankRow, Row: row}
		}
		questions = append(questions, question)
	}

	if len(questions) == 0 {
		return nil, ErrEmptyInput
	}
	return questions, nil
}
