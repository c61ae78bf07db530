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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Storage handles persistent storage: raw fetch snapshots and the TTL cache.
// Snapshots are structurally identical to the raw API responses and
// round-trip through JSON, so a run can be replayed without refetching.
type Storage struct {
	basePath string
	cache    *Cache
	logger   *Logger
}

// NewStorage creates a new storage handler with caching
func NewStorage(basePath string, logger *Logger) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, &StorageError{
			Operation: "create_directory",
			Path:      basePath,
			Err:       err,
		}
	}

	cache, err := NewCache(basePath, logger)
	if err != nil {
		return nil, &StorageError{
			Operation: "initialize_cache",
			Path:      basePath,
			Err:       err,
		}
	}

	if err := cache.CleanExpired(); err != nil {
		logger.Warn("Failed to clean expired cache", "error", err)
	}

	logger.Debug("Storage initialized", "path", basePath)

	return &Storage{
		basePath: basePath,
		cache:    cache,
		logger:   logger,
	}, nil
}

// SaveSnapshot persists a raw fetch response under a stable name
func (s *Storage) SaveSnapshot(name string, data interface{}) error {
	path := s.snapshotPath(name)
	s.logger.LogStorageOperation("save_snapshot", path)
	return s.saveJSON(path, data)
}

// LoadSnapshot loads a previously saved raw fetch response. Returns false
// without error when no snapshot exists.
func (s *Storage) LoadSnapshot(name string, target interface{}) (bool, error) {
	path := s.snapshotPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	s.logger.LogStorageOperation("load_snapshot", path)
	if err := s.loadJSON(path, target); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveSnapshot deletes a snapshot so the next run refetches
func (s *Storage) RemoveSnapshot(name string) error {
	path := s.snapshotPath(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &StorageError{
			Operation: "remove_snapshot",
			Path:      path,
			Err:       err,
		}
	}
	return nil
}

func (s *Storage) snapshotPath(name string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("snapshot_%s.json", name))
}

// SaveReportArtifact writes a rendered artifact (chart PNG, report) next to
// the snapshots and returns its path
func (s *Storage) SaveReportArtifact(name string, data []byte) (string, error) {
	path := filepath.Join(s.basePath, name)
	s.logger.LogStorageOperation("save_artifact", path)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &StorageError{
			Operation: "save_artifact",
			Path:      path,
			Err:       err,
		}
	}
	return path, nil
}

// saveJSON saves data as JSON to a file
func (s *Storage) saveJSON(path string, data interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return &StorageError{
			Operation: "create_file",
			Path:      path,
			Err:       err,
		}
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(data); err != nil {
		return &StorageError{
			Operation: "encode_json",
			Path:      path,
			Err:       err,
		}
	}

	return nil
}

// loadJSON loads data from a JSON file
func (s *Storage) loadJSON(path string, target interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return &StorageError{
			Operation: "open_file",
			Path:      path,
			Err:       err,
		}
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(target); err != nil {
		return &StorageError{
			Operation: "decode_json",
			Path:      path,
			Err:       err,
		}
	}

	return nil
}

// SaveCache saves data to cache with a TTL (time-to-live)
func (s *Storage) SaveCache(key string, data interface{}, ttl time.Duration) error {
	return s.cache.Set(key, data, ttl)
}

// LoadCache loads data from cache if it exists and hasn't expired
func (s *Storage) LoadCache(key string, target interface{}) (bool, error) {
	return s.cache.Get(key, target)
}

// ClearCache clears all cache entries
func (s *Storage) ClearCache() error {
	return s.cache.Clear()
}

// CacheStats returns cache statistics
func (s *Storage) CacheStats() (total int, expired int, err error) {
	return s.cache.Stats()
}

// Close closes all storage resources
func (s *Storage) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}
