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
	"testing"
	"time"

	"github.com/shannon-labs/cbad/internal/cbad/detector"
)

func TestInMemoryStoreRecordAndQuery(t *testing.T) {
	s := NewInMemoryStore()

	old := detector.Detection{ID: "a-1", ObservedAt: time.Now().Add(-time.Hour)}
	recent := detector.Detection{ID: "a-2", ObservedAt: time.Now()}
	if err := s.Record("stream-a", old); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Record("stream-a", recent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := s.Query(time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Detection.ID != "a-2" {
		t.Fatalf("expected only the recent detection, got %+v", results)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 total records, got %d", s.Len())
	}
}

func TestInMemoryStoreQueryOrdersOldestFirst(t *testing.T) {
	s := NewInMemoryStore()
	base := time.Now().Add(-time.Hour)

	s.Record("x", detector.Detection{ID: "x-2", ObservedAt: base.Add(2 * time.Second)})
	s.Record("x", detector.Detection{ID: "x-1", ObservedAt: base.Add(1 * time.Second)})

	results, err := s.Query(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[0].Detection.ID != "x-1" || results[1].Detection.ID != "x-2" {
		t.Fatalf("expected oldest-first ordering, got %+v", results)
	}
}
