// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/shannon-labs/cbad/internal/cbad/detector"
	"github.com/shannon-labs/cbad/internal/cbad/stream"
)

// InMemoryStore keeps recorded anomalies in a process-local slice guarded
// by a mutex. Writes are append-only and infrequent relative to ingest
// volume, so a single mutex (rather than per-stream sharding) is simple
// and sufficient.
type InMemoryStore struct {
	mu      sync.Mutex
	records []stream.RecordedAnomaly
}

// NewInMemoryStore builds an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Record appends one anomalous detection.
func (s *InMemoryStore) Record(streamName string, det detector.Detection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, stream.RecordedAnomaly{Stream: streamName, Detection: det})
	return nil
}

// Query returns every recorded anomaly observed at or after since, ordered
// oldest first.
func (s *InMemoryStore) Query(since time.Time) ([]stream.RecordedAnomaly, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]stream.RecordedAnomaly, 0, len(s.records))
	for _, r := range s.records {
		if !r.Detection.ObservedAt.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Detection.ObservedAt.Before(out[j].Detection.ObservedAt)
	})
	return out, nil
}

// Len reports the total number of records held, regardless of age.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
