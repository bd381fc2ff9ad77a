// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

//go:build integration

package testinfra

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// SkipIfNoDocker skips t when no container runtime answers.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// CleanupContainer registers container termination with t.Cleanup. A nil
// container is ignored.
func CleanupContainer(t *testing.T, container testcontainers.Container) {
	t.Helper()
	testcontainers.CleanupContainer(t, container)
}
