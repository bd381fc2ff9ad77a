// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/salesboard/internal/logging"
	"github.com/tomtom215/salesboard/internal/metrics"
)

// Loader loads and caches enriched datasets.
//
// An entry is reused without reading the file while its size and mtime are
// unchanged. When they change the file is read and hashed; identical content
// still reuses the cached Dataset. Failed loads are remembered the same way,
// so a broken file is parsed and reported once until it changes again.
// Concurrent loads of the same path share one read.
type Loader struct {
	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
	now     func() time.Time
	// afterRead runs inside the shared flight once the file is read; tests
	// use it to hold a flight open.
	afterRead func()
}

// readTimeout bounds a shared read, which no single caller's context owns.
const readTimeout = 2 * time.Minute

type entry struct {
	size        int64
	modTime     time.Time
	fingerprint string
	dataset     *Dataset
	err         error
}

// NewLoader creates an empty Loader.
func NewLoader() *Loader {
	return &Loader{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Load returns the enriched dataset at path.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}

	info, err := os.Stat(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = &SourceNotFoundError{Path: path, Err: err}
		}
		metrics.RecordDatasetLoad(0, 0, ErrorKind(err))
		return nil, err
	}

	if e := l.lookup(key); e != nil && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		metrics.RecordLoaderCache("hit_stat")
		return e.dataset, e.err
	}

	// The flight runs detached so one caller going away does not fail the
	// others waiting on the same path.
	ch := l.group.DoChan(key, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), readTimeout)
		defer cancel()
		return l.read(flightCtx, key, path)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

// Invalidate drops the cache entry for path.
func (l *Loader) Invalidate(path string) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}

// InvalidateAll drops every cache entry.
func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	l.entries = make(map[string]*entry)
	l.mu.Unlock()
}

func (l *Loader) lookup(key string) *entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries[key]
}

func (l *Loader) store(key string, e *entry) {
	l.mu.Lock()
	l.entries[key] = e
	l.mu.Unlock()
}

func (l *Loader) read(ctx context.Context, key, path string) (*Dataset, error) {
	start := l.now()

	// Stat again inside the flight so size/mtime describe the bytes we read.
	info, err := os.Stat(key)
	if err == nil {
		var data []byte
		data, err = os.ReadFile(key)
		if err == nil {
			if l.afterRead != nil {
				l.afterRead()
			}
			return l.build(ctx, key, path, info, data, start)
		}
	}
	if errors.Is(err, fs.ErrNotExist) {
		err = &SourceNotFoundError{Path: path, Err: err}
	}
	metrics.RecordDatasetLoad(l.now().Sub(start), 0, ErrorKind(err))
	return nil, err
}

func (l *Loader) build(ctx context.Context, key, path string, info fs.FileInfo, data []byte, start time.Time) (*Dataset, error) {
	sum := sha256.Sum256(data)
	fingerprint := hex.EncodeToString(sum[:])

	if prev := l.lookup(key); prev != nil && prev.fingerprint == fingerprint {
		metrics.RecordLoaderCache("hit_content")
		l.store(key, &entry{
			size: info.Size(), modTime: info.ModTime(), fingerprint: fingerprint,
			dataset: prev.dataset, err: prev.err,
		})
		if prev.err != nil {
			return nil, prev.err
		}
		return prev.dataset, nil
	}
	metrics.RecordLoaderCache("miss")

	parsed, err := Parse(ctx, bytes.NewReader(data))
	if err != nil {
		if ctx.Err() != nil {
			// Cancellation says nothing about the file; do not remember it.
			return nil, err
		}
		err = fmt.Errorf("failed to load %s: %w", path, err)
		metrics.RecordDatasetLoad(l.now().Sub(start), 0, ErrorKind(err))
		logging.Error().Err(err).Str("path", path).Str("kind", ErrorKind(err)).Msg("Dataset load failed")
		l.store(key, &entry{size: info.Size(), modTime: info.ModTime(), fingerprint: fingerprint, err: err})
		return nil, err
	}

	records, summary := Enrich(parsed)
	ds := &Dataset{
		Source:      path,
		Fingerprint: fingerprint,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		LoadedAt:    l.now(),
		Summary:     summary,
		Records:     records,
	}
	l.store(key, &entry{size: info.Size(), modTime: info.ModTime(), fingerprint: fingerprint, dataset: ds})

	elapsed := l.now().Sub(start)
	metrics.RecordDatasetLoad(elapsed, len(records), "")
	logging.Info().
		Str("path", path).
		Str("fingerprint", fingerprint[:12]).
		Int("records", len(records)).
		Int("customers", summary.DistinctCustomers).
		Dur("duration", elapsed).
		Msg("Dataset loaded")
	return ds, nil
}
