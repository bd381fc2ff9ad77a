// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package validation validates API request parameters with
// go-playground/validator v10.
//
// A singleton validator caches struct metadata and registers the custom tags
// isodate, dimension and sortorder. Failures come back as a
// *RequestValidationError whose ToAPIError yields the VALIDATION_ERROR
// envelope used by internal/api:
//
//	type KPIRequest struct {
//	    Dimension string `query:"dimension" validate:"required,dimension"`
//	    Start     string `query:"start" validate:"omitempty,isodate"`
//	    Limit     int    `query:"limit" validate:"min=0,max=1000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	}
package validation
