// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package testinfra starts throwaway containers for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/cache/...
//
// Tests skip when Docker is not reachable.
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.CleanupContainer(t, redis)
//	    // use redis.Addr
//	}
package testinfra
