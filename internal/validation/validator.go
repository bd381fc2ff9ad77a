// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/salesboard/internal/kpi"
)

// ISODateLayout is the only date format accepted in query parameters.
const ISODateLayout = "2006-01-02"

// CodeValidation is the API error code for rejected input.
const CodeValidation = "VALIDATION_ERROR"

var (
	instance     *validator.Validate
	instanceOnce sync.Once
)

// FieldError is one rejected request parameter.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

func (e FieldError) Error() string { return e.Message }

// RequestValidationError collects every rejected parameter of one request.
type RequestValidationError struct {
	Fields []FieldError
}

func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// APIError mirrors models.APIError without importing it.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError shapes the failure for the response envelope. A single field
// puts field/tag/value in details; several fields are listed under "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	switch len(ve.Fields) {
	case 0:
		return &APIError{Code: CodeValidation, Message: "Validation failed"}
	case 1:
		f := ve.Fields[0]
		return &APIError{
			Code:    CodeValidation,
			Message: f.Message,
			Details: map[string]interface{}{"field": f.Field, "tag": f.Tag, "value": f.Value},
		}
	}

	fields := make([]map[string]interface{}, 0, len(ve.Fields))
	parts := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		fields = append(fields, map[string]interface{}{"field": f.Field, "tag": f.Tag, "message": f.Message})
		parts = append(parts, f.Field+": "+f.Message)
	}
	return &APIError{
		Code:    CodeValidation,
		Message: strings.Join(parts, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the shared validator with the isodate, dimension and
// sortorder tags registered. Error field names come from the `query` tag,
// then `json`.
func GetValidator() *validator.Validate {
	instanceOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(paramName)
		for tag, fn := range map[string]validator.Func{
			"isodate":   isISODate,
			"dimension": isDimension,
			"sortorder": isSortOrder,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("validation: register %s: %v", tag, err))
			}
		}
		instance = v
	})
	return instance
}

func paramName(f reflect.StructField) string {
	for _, key := range []string{"query", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return f.Name
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(ISODateLayout, fl.Field().String())
	return err == nil
}

func isDimension(fl validator.FieldLevel) bool {
	_, err := kpi.ParseDimension(fl.Field().String())
	return err == nil
}

func isSortOrder(fl validator.FieldLevel) bool {
	_, err := kpi.ParseOrder(fl.Field().String())
	return err == nil
}

// ValidateStruct validates s and returns nil when it passes.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "request", Tag: "invalid", Message: err.Error()}}}
	}

	out := &RequestValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	name, p := fe.Field(), fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "isodate":
		return name + " must be a date in YYYY-MM-DD format"
	case "dimension":
		return name + " must be a known dimension"
	case "sortorder":
		return name + " must be a known sort order"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, p)
	case "min", "gte":
		if fe.Tag() == "gte" {
			return fmt.Sprintf("%s must be greater than or equal to %s", name, p)
		}
		return fmt.Sprintf("%s must be at least %s%s", name, p, unit)
	case "max", "lte":
		if fe.Tag() == "lte" {
			return fmt.Sprintf("%s must be less than or equal to %s", name, p)
		}
		return fmt.Sprintf("%s must be at most %s%s", name, p, unit)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, p)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", name, p)
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
