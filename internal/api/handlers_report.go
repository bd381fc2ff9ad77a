// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/salesboard/internal/logging"
	"github.com/tomtom215/salesboard/internal/report"
)

// ReportPDF renders the overview and KPI tables for the filtered records as
// a PDF attachment. Reports are not cached.
func (h *Handler) ReportPDF(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ds, ok := h.executor().resolveDataset(w, r)
	if !ok {
		return
	}

	req := parseFilterRequest(r)
	c, apiErr := req.Criteria(ds)
	if apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	pdf, err := report.Generate(r.Context(), h.svc, ds, c, report.Options{
		Title: h.config.Report.Title,
		TopN:  h.config.Report.TopN,
	})
	if err != nil {
		respondQueryError(w, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Int("bytes", len(pdf)).
		Dur("duration", time.Since(start)).
		Msg("KPI report generated")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="kpi-report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write report")
	}
}
