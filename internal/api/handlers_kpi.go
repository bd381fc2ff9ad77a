// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/filter"
	"github.com/tomtom215/salesboard/internal/kpi"
	"github.com/tomtom215/salesboard/internal/models"
)

// TableResponse is the wire form of a KPI table with rows in display order.
type TableResponse struct {
	Dimension       kpi.Dimension `json:"dimension"`
	Label           string        `json:"label"`
	Rows            []kpi.Row     `json:"rows"`
	Total           kpi.Row       `json:"total"`
	TotalRows       int           `json:"total_rows"`
	UndefinedRatios int           `json:"undefined_ratios"`
}

func newTableResponse(t *kpi.Table, order kpi.Order, limit int) TableResponse {
	spec, _ := kpi.SpecFor(t.Dimension)
	return TableResponse{
		Dimension:       t.Dimension,
		Label:           spec.Label,
		Rows:            t.Sorted(order, limit),
		Total:           t.Total,
		TotalRows:       t.Len(),
		UndefinedRatios: t.UndefinedRatios,
	}
}

// ChannelPerformanceResponse lists channels by revenue per unit of spend.
type ChannelPerformanceResponse struct {
	Rows            []kpi.ChannelPerformance `json:"rows"`
	UndefinedRatios int                      `json:"undefined_ratios"`
}

// RecordsResponse is one page of filtered records.
type RecordsResponse struct {
	Records    []dataset.Record      `json:"records"`
	Pagination models.PaginationInfo `json:"pagination"`
}

// Overview returns the metric cards for the filtered records.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	h.executor().ExecuteFiltered(w, r, "overview", nil, func(_ context.Context, ds *dataset.Dataset, c filter.Criteria) (interface{}, error) {
		return h.svc.Overview(ds, c), nil
	})
}

// Trend returns daily orders and net revenue, oldest first.
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	h.executor().ExecuteFiltered(w, r, "trend", nil, func(_ context.Context, ds *dataset.Dataset, c filter.Criteria) (interface{}, error) {
		return h.svc.Trend(ds, c), nil
	})
}

// Records returns one page of the filtered records.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	req := parseRecordsRequest(r, h.config.API.DefaultPageSize, h.config.API.MaxPageSize)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	h.executor().ExecuteFiltered(w, r, "records", req, func(_ context.Context, ds *dataset.Dataset, c filter.Criteria) (interface{}, error) {
		page, total := h.svc.Records(ds, c, req.Limit, req.Offset)
		return RecordsResponse{
			Records: page,
			Pagination: models.PaginationInfo{
				Limit:      req.Limit,
				Offset:     req.Offset,
				TotalCount: total,
				HasMore:    req.Offset+len(page) < total,
			},
		}, nil
	})
}

// KPIAll returns every dimension's table in the standard dimension order.
func (h *Handler) KPIAll(w http.ResponseWriter, r *http.Request) {
	h.executor().ExecuteFiltered(w, r, "kpi", nil, func(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (interface{}, error) {
		tables, err := h.svc.AllKPI(ctx, ds, c)
		if err != nil {
			return nil, err
		}
		out := make([]TableResponse, 0, len(tables))
		for _, dim := range kpi.Dimensions() {
			t := tables[dim]
			out = append(out, newTableResponse(&t, kpi.OrderDefault, 0))
		}
		return out, nil
	})
}

// KPIDimension returns one dimension's table, optionally re-ordered and
// truncated with sort and limit.
func (h *Handler) KPIDimension(w http.ResponseWriter, r *http.Request) {
	req := parseKPIRequest(r, chi.URLParam(r, "dimension"))
	if apiErr := validateRequest(&req); apiErr != nil {
		if apiErr.Details == nil {
			apiErr.Details = map[string]interface{}{}
		}
		apiErr.Details["dimensions"] = kpi.DimensionNames()
		respondValidation(w, apiErr)
		return
	}
	dim := kpi.Dimension(req.Dimension)

	h.executor().ExecuteFiltered(w, r, "kpi/"+req.Dimension, req, func(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (interface{}, error) {
		t, err := h.svc.KPI(ctx, ds, c, dim)
		if err != nil {
			return nil, err
		}
		return newTableResponse(&t, req.Order(), req.Limit), nil
	})
}

// ChannelPerformance returns revenue per unit of marketing spend by channel.
func (h *Handler) ChannelPerformance(w http.ResponseWriter, r *http.Request) {
	h.executor().ExecuteFiltered(w, r, "kpi/channel-performance", nil, func(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (interface{}, error) {
		t, err := h.svc.ChannelPerformance(ctx, ds, c)
		if err != nil {
			return nil, err
		}
		return ChannelPerformanceResponse{Rows: t.Sorted(), UndefinedRatios: t.UndefinedRatios}, nil
	})
}
