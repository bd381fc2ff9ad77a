// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSourceNotFound matches (errors.Is) any SourceNotFoundError.
var ErrSourceNotFound = errors.New("dataset source not found")

// ErrEmptySource is returned when the file has no header row.
var ErrEmptySource = errors.New("dataset source is empty")

// SourceNotFoundError reports a missing dataset file. Callers short-circuit
// all KPI work and show a notice instead of failing.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("dataset source %q not found", e.Path)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSourceNotFound) true.
func (e *SourceNotFoundError) Is(target error) bool { return target == ErrSourceNotFound }

// MalformedDateError aborts a load: no partial datasets are produced.
type MalformedDateError struct {
	Line   int
	Column string
	Value  string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("line %d: column %s: unparseable date %q", e.Line, e.Column, e.Value)
}

// MalformedValueError reports a numeric cell that does not parse.
type MalformedValueError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("line %d: column %s: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *MalformedValueError) Unwrap() error { return e.Err }

// MissingColumnError lists required columns absent from the header.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// ErrorKind classifies a load error for metrics and API error details.
func ErrorKind(err error) string {
	var (
		dateErr   *MalformedDateError
		valueErr  *MalformedValueError
		columnErr *MissingColumnError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceNotFound):
		return "not_found"
	case errors.As(err, &dateErr):
		return "malformed_date"
	case errors.As(err, &valueErr):
		return "malformed_value"
	case errors.As(err, &columnErr), errors.Is(err, ErrEmptySource):
		return "missing_column"
	default:
		return "other"
	}
}
