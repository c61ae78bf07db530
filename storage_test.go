// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(t.TempDir(), NewLogger(false))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSnapshotRoundTrip(t *testing.T) {
	storage := newTestStorage(t)

	original := &UnitRatesResponse{Count: 2}
	require.NoError(t, storage.SaveSnapshot("rates_test", original))

	var loaded UnitRatesResponse
	found, err := storage.LoadSnapshot("rates_test", &loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, original.Count, loaded.Count)
}

func TestLoadSnapshotMissing(t *testing.T) {
	storage := newTestStorage(t)

	var target UnitRatesResponse
	found, err := storage.LoadSnapshot("never_saved", &target)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRemoveSnapshot(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveSnapshot("doomed", map[string]int{"a": 1}))
	require.NoError(t, storage.RemoveSnapshot("doomed"))

	var target map[string]int
	found, err := storage.LoadSnapshot("doomed", &target)
	require.NoError(t, err)
	assert.False(t, found)

	// Removing a snapshot that never existed is not an error
	assert.NoError(t, storage.RemoveSnapshot("never_saved"))
}

func TestSaveReportArtifact(t *testing.T) {
	storage := newTestStorage(t)

	path, err := storage.SaveReportArtifact("prices.png", []byte("png bytes"))
	require.NoError(t, err)
	assert.Equal(t, "prices.png", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
}

func TestCacheTTL(t *testing.T) {
	storage := newTestStorage(t)

	t.Run("live entry hits", func(t *testing.T) {
		require.NoError(t, storage.SaveCache("products", []string{"a", "b"}, time.Hour))

		var value []string
		found, err := storage.LoadCache("products", &value)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []string{"a", "b"}, value)
	})

	t.Run("expired entry misses", func(t *testing.T) {
		require.NoError(t, storage.SaveCache("stale", "old", -time.Second))

		var value string
		found, err := storage.LoadCache("stale", &value)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("unknown key misses", func(t *testing.T) {
		var value string
		found, err := storage.LoadCache("never_set", &value)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestCachePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(false)

	first, err := NewStorage(dir, logger)
	require.NoError(t, err)
	require.NoError(t, first.SaveCache("gsp:1200012345678", "_H", time.Hour))
	require.NoError(t, first.Close())

	second, err := NewStorage(dir, logger)
	require.NoError(t, err)
	defer second.Close()

	var gsp string
	found, err := second.LoadCache("gsp:1200012345678", &gsp)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "_H", gsp)
}

func TestCacheStats(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveCache("live", 1, time.Hour))
	require.NoError(t, storage.SaveCache("dead", 2, -time.Second))

	total, expired, err := storage.CacheStats()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, expired)
}

func TestClearCache(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveCache("key", "value", time.Hour))
	require.NoError(t, storage.ClearCache())

	var value string
	found, err := storage.LoadCache("key", &value)
	require.NoError(t, err)
	assert.False(t, found)
}
