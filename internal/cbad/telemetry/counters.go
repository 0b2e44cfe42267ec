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

// Package telemetry holds the process-wide counters behind detection
// activity, plus two ways to export them: a hand-rolled text format and a
// github.com/prometheus/client_golang registry. Both read the same atomics;
// neither owns them, so incrementing once never double-counts.
package telemetry

import (
	"sync/atomic"

	"github.com/shannon-labs/cbad/internal/cbad/tokenizer"
)

// Counters is the set of process-wide atomics updated on the detection hot
// path. Safe for concurrent use; every field is a lock-free atomic.
type Counters struct {
	eventsProcessed   atomic.Uint64
	anomaliesDetected atomic.Uint64
	detectionCycles   atomic.Uint64
	cumulativeLatency atomic.Uint64 // nanoseconds
	bytesSaved        atomic.Uint64

	tok *tokenizer.Tokenizer
}

// New builds a Counters instance. tok, if non-nil, supplies the per-pattern
// tokenizer match counts surfaced by Snapshot; those counts are that one
// tokenizer's own, so matches made by other detectors' tokenizers are not
// included.
func New(tok *tokenizer.Tokenizer) *Counters {
	return &Counters{tok: tok}
}

// RecordEvent increments the per-event counters. latency is the wall-clock
// time spent in one detection cycle; anomaly reports whether the cycle
// flagged a break.
func (c *Counters) RecordEvent(anomaly bool, latencyNanos int64, bytesSaved int) {
	c.eventsProcessed.Add(1)
	c.detectionCycles.Add(1)
	if anomaly {
		c.anomaliesDetected.Add(1)
	}
	if latencyNanos > 0 {
		c.cumulativeLatency.Add(uint64(latencyNanos))
	}
	if bytesSaved > 0 {
		c.bytesSaved.Add(uint64(bytesSaved))
	}
}

// Snapshot is a point-in-time, non-atomic read of every counter.
type Snapshot struct {
	EventsProcessed    uint64
	AnomaliesDetected  uint64
	DetectionCycles    uint64
	CumulativeLatency  uint64
	BytesSaved         uint64
	TokenizerMatches   map[string]uint64
	TokenizerBytesSaved uint64
}

// Snapshot reads every counter. The read is not atomic across fields, which
// matches the teacher's own "cached metrics, refreshed on demand" model:
// exact consistency across counters is not required for monitoring output.
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		EventsProcessed:   c.eventsProcessed.Load(),
		AnomaliesDetected: c.anomaliesDetected.Load(),
		DetectionCycles:   c.detectionCycles.Load(),
		CumulativeLatency: c.cumulativeLatency.Load(),
		BytesSaved:        c.bytesSaved.Load(),
	}
	if c.tok != nil {
		tstats := c.tok.Stats()
		s.TokenizerBytesSaved = tstats.BytesSaved
		s.TokenizerMatches = make(map[string]uint64, len(tstats.MatchCounts))
		for i, n := range tstats.MatchCounts {
			if n == 0 {
				continue
			}
			s.TokenizerMatches[tokenizer.PatternName(tokenizer.Pattern(i))] = n
		}
	}
	return s
}
