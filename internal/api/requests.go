// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/filter"
	"github.com/tomtom215/salesboard/internal/kpi"
	"github.com/tomtom215/salesboard/internal/models"
	"github.com/tomtom215/salesboard/internal/validation"
)

// FilterRequest holds the common filter parameters.
type FilterRequest struct {
	Start string `query:"start" validate:"omitempty,isodate"`
	End   string `query:"end" validate:"omitempty,isodate"`

	// Channels is nil when the parameter is absent (all channels) and empty
	// when it is present but lists nothing.
	Channels []string `query:"channels"`
}

// KPIRequest holds the parameters of /kpi/{dimension}.
type KPIRequest struct {
	Dimension string `query:"dimension" validate:"required,dimension"`
	Sort      string `query:"sort" validate:"omitempty,sortorder"`
	Limit     int    `query:"limit" validate:"min=0,max=10000"`
}

// RecordsRequest holds the pagination parameters of /records.
type RecordsRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=10000"`
	Offset int `query:"offset" validate:"min=0"`
}

func parseFilterRequest(r *http.Request) FilterRequest {
	q := r.URL.Query()
	req := FilterRequest{
		Start: q.Get("start"),
		End:   q.Get("end"),
	}
	if values, ok := q["channels"]; ok {
		req.Channels = []string{}
		for _, v := range values {
			req.Channels = append(req.Channels, parseCommaSeparated(v)...)
		}
	}
	return req
}

// Criteria validates the request and converts it for ds. Dates are calendar
// days and both bounds are inclusive.
func (req *FilterRequest) Criteria(ds *dataset.Dataset) (filter.Criteria, *models.APIError) {
	if apiErr := validateRequest(req); apiErr != nil {
		return filter.Criteria{}, apiErr
	}

	var c filter.Criteria
	if req.Start != "" {
		c.Start, _ = time.Parse(validation.ISODateLayout, req.Start)
	}
	if req.End != "" {
		c.End, _ = time.Parse(validation.ISODateLayout, req.End)
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.Start.After(c.End) {
		return filter.Criteria{}, &models.APIError{
			Code:    validation.CodeValidation,
			Message: "start must not be after end",
			Details: map[string]interface{}{
				"start": req.Start,
				"end":   req.End,
			},
		}
	}

	if req.Channels == nil {
		c.Channels = ds.Channels()
	} else {
		c.Channels = req.Channels
	}
	return c, nil
}

func parseKPIRequest(r *http.Request, dimension string) KPIRequest {
	return KPIRequest{
		Dimension: dimension,
		Sort:      r.URL.Query().Get("sort"),
		Limit:     queryInt(r, "limit", 0),
	}
}

// Order returns the parsed sort order. Call after validation.
func (req *KPIRequest) Order() kpi.Order {
	order, _ := kpi.ParseOrder(req.Sort)
	return order
}

func parseRecordsRequest(r *http.Request, defaultLimit, maxLimit int) RecordsRequest {
	req := RecordsRequest{
		Limit:  queryInt(r, "limit", defaultLimit),
		Offset: queryInt(r, "offset", 0),
	}
	if maxLimit > 0 && req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	return req
}
