// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/salesboard/internal/logging"
)

func serveWithID(t *testing.T, header string) (responseID, contextID, correlationID string) {
	t.Helper()
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextID = GetRequestID(r.Context())
		correlationID = logging.CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header().Get(RequestIDHeader), contextID, correlationID
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   string
		wantSame bool
		wantUUID bool
	}{
		{"generates when absent", "", false, true},
		{"preserves upstream id", "proxy-abc-123", true, false},
		{"replaces oversized id", strings.Repeat("x", maxRequestIDLength+1), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, ctxID, corr := serveWithID(t, tt.header)

			if resp == "" || resp != ctxID {
				t.Errorf("response id %q, context id %q", resp, ctxID)
			}
			if tt.wantSame && resp != tt.header {
				t.Errorf("id = %q, want %q", resp, tt.header)
			}
			if tt.wantUUID {
				if _, err := uuid.Parse(resp); err != nil {
					t.Errorf("id %q is not a UUID: %v", resp, err)
				}
			}
			if corr == "" {
				t.Error("correlation id not set")
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, _, _ := serveWithID(t, "")
		if seen[id] {
			t.Fatalf("duplicate request id %s", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	t.Parallel()
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}
