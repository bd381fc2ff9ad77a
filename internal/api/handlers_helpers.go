// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/salesboard/internal/logging"
	"github.com/tomtom215/salesboard/internal/models"
	"github.com/tomtom215/salesboard/internal/validation"
)

// sanitizeLogValue hex-escapes control characters in client input before it
// reaches a log line.
func sanitizeLogValue(s string) string {
	clean := true
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, `\x%02x`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// writeEnvelope marshals the envelope and writes it with a weak ETag.
// KPI payloads change whenever the dataset does, so clients must revalidate.
func writeEnvelope(w http.ResponseWriter, status int, env *models.APIResponse) {
	body, err := json.Marshal(env)
	if err != nil {
		logging.Error().Err(err).Int("status", status).Msg("Envelope encoding failed")
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-cache")
	h.Set("Vary", "Accept-Encoding")
	h.Set("ETag", generateETag(body))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Msg("Client went away before the response was written")
	}
}

func respondSuccess(w http.ResponseWriter, data interface{}, meta models.Metadata) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	writeEnvelope(w, http.StatusOK, &models.APIResponse{Status: "success", Data: data, Metadata: meta})
}

func generateETag(body []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(body)
	return `W/"` + strconv.FormatUint(h.Sum64(), 36) + `"`
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondErrorDetails(w, status, code, message, err, nil)
}

// respondErrorDetails logs cause (when set) and writes an error envelope.
// Unavailability is expected while a source is missing, so 503 logs at warn.
func respondErrorDetails(w http.ResponseWriter, status int, code, message string, cause error, details map[string]interface{}) {
	if cause != nil {
		event := logging.Warn()
		if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
			event = logging.Error()
		}
		event.Int("status", status).
			Str("code", code).
			Str("cause", sanitizeLogValue(cause.Error())).
			Msg("Request failed")
	}

	writeEnvelope(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: code, Message: message, Details: details},
	})
}

// validateRequest runs the struct validator and converts failures to the
// envelope error shape.
func validateRequest(v interface{}) *models.APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	e := verr.ToAPIError()
	return &models.APIError{Code: e.Code, Message: e.Message, Details: e.Details}
}

func respondValidation(w http.ResponseWriter, apiErr *models.APIError) {
	respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil, apiErr.Details)
}

// queryInt reads an integer query parameter. Missing or unparsable values
// yield def; range checks are left to the validator.
func queryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// parseCommaSeparated splits a list parameter, dropping blanks. The result
// is never nil.
func parseCommaSeparated(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
