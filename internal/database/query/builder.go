// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package query builds parameterized SQL fragments for the database package.
package query

import (
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
//	wb := query.NewWhereBuilder()
//	wb.AddDayRange("day", start, end)
//	wb.AddIn("marketing_channel", []string{"email", "social"})
//	where, args := wb.Build()
//	// day >= CAST(? AS DATE) AND day <= CAST(? AS DATE) AND marketing_channel IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates an empty WhereBuilder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddDayRange bounds a DATE column to [start, end], both inclusive. A zero
// time leaves that side open.
func (wb *WhereBuilder) AddDayRange(column string, start, end time.Time) *WhereBuilder {
	if !start.IsZero() {
		wb.AddClause(column+" >= CAST(? AS DATE)", start.Format(dayLayout))
	}
	if !end.IsZero() {
		wb.AddClause(column+" <= CAST(? AS DATE)", end.Format(dayLayout))
	}
	return wb
}

// AddIn restricts column to values. An empty values slice matches no rows.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb.AddClause("1=0")
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// Build joins the clauses with AND. It returns "1=1" when nothing was added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no clauses were added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
