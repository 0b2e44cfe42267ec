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

// Package window implements the bounded per-stream ring of normalised
// events with baseline/window alignment and hop semantics. All operations
// are total: there is no error return, only the Ready/Add boolean signals.
package window

import "time"

// Event is an immutable byte payload plus its ingestion timestamp and an
// optional attribute bag, surfaced to the API/explanation layer but not
// consulted by the detection math.
type Event struct {
	Payload    []byte
	ObservedAt time.Time
	Attributes map[string]string
}

// Config configures baseline/window/hop sizing and the memory bound.
type Config struct {
	BaselineSize int
	WindowSize   int
	HopSize      int
	Capacity     int
}

// Window is the bounded ordered sequence of normalised events, logically
// partitioned into baseline_head and analysis_tail.
type Window struct {
	cfg Config

	events        []Event
	baselineStart int
	windowStart   int
	totalEvents   int64
	aligned       bool
}

// New constructs an empty window under cfg.
func New(cfg Config) *Window {
	return &Window{cfg: cfg}
}

// Add appends a normalised event at the tail, evicting from the head if
// capacity is exceeded. Always returns true: append itself never fails;
// rejection (e.g. privacy non-compliance) is handled by the caller before
// Add is invoked.
func (w *Window) Add(e Event) bool {
	w.events = append(w.events, e)
	w.totalEvents++

	if w.cfg.Capacity > 0 && len(w.events) > w.cfg.Capacity {
		evict := len(w.events) - w.cfg.Capacity
		w.events = w.events[evict:]
		w.baselineStart = saturatingSub(w.baselineStart, evict)
		w.windowStart = saturatingSub(w.windowStart, evict)
		if len(w.events) < w.cfg.BaselineSize+w.cfg.WindowSize {
			w.aligned = false
		} else if w.windowStart < w.cfg.BaselineSize {
			// Eviction reached into the baseline: keep a full baseline
			// immediately before the window.
			w.windowStart = w.cfg.BaselineSize
			w.baselineStart = 0
		}
	}

	w.updateReadiness()
	return true
}

func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}

// updateReadiness anchors the first analysis to the most recent data once
// the window becomes ready for the first time after construction or after
// a capacity-induced de-alignment.
func (w *Window) updateReadiness() {
	if w.aligned {
		return
	}
	if len(w.events) < w.cfg.BaselineSize+w.cfg.WindowSize {
		return
	}
	w.alignToTail()
	w.aligned = true
}

func (w *Window) alignToTail() {
	w.windowStart = len(w.events) - w.cfg.WindowSize
	w.baselineStart = w.windowStart - w.cfg.BaselineSize
	if w.baselineStart < 0 {
		w.baselineStart = 0
	}
}

// Ready reports whether there is enough data for a detection cycle.
func (w *Window) Ready() bool {
	return len(w.events) >= w.cfg.BaselineSize+w.cfg.WindowSize && w.aligned
}

// BaselineAndWindow concatenates the raw bytes of the baseline and window
// segments, in order, without inserted delimiters. The second return value
// reports readiness; the byte slices are nil when not ready.
func (w *Window) BaselineAndWindow() ([]byte, []byte, bool) {
	if !w.Ready() {
		return nil, nil, false
	}
	baseline := concatPayloads(w.events[w.baselineStart : w.baselineStart+w.cfg.BaselineSize])
	win := concatPayloads(w.events[w.windowStart : w.windowStart+w.cfg.WindowSize])
	return baseline, win, true
}

func concatPayloads(events []Event) []byte {
	size := 0
	for _, e := range events {
		size += len(e.Payload)
	}
	out := make([]byte, 0, size)
	for _, e := range events {
		out = append(out, e.Payload...)
	}
	return out
}

// AdvanceAfterAnalysis moves window_start forward by hop_size, clamped to
// len-window_size, with baseline immediately preceding the new window.
func (w *Window) AdvanceAfterAnalysis() {
	maxStart := len(w.events) - w.cfg.WindowSize
	if maxStart < 0 {
		maxStart = 0
	}
	next := w.windowStart + w.cfg.HopSize
	if next > maxStart {
		next = maxStart
	}
	w.windowStart = next
	w.baselineStart = w.windowStart - w.cfg.BaselineSize
	if w.baselineStart < 0 {
		w.baselineStart = 0
	}
}

// Len returns the number of events currently held.
func (w *Window) Len() int { return len(w.events) }

// TotalEvents returns the lifetime count of events ever appended,
// including those since evicted.
func (w *Window) TotalEvents() int64 { return w.totalEvents }

// BaselineStart and WindowStart expose current offsets for tests and
// snapshotting.
func (w *Window) BaselineStart() int { return w.baselineStart }
func (w *Window) WindowStart() int   { return w.windowStart }
func (w *Window) Aligned() bool      { return w.aligned }

// Snapshot is the self-describing serialisable state of a Window.
type Snapshot struct {
	Events        []Event `json:"events"`
	BaselineStart int     `json:"baseline_start"`
	WindowStart   int     `json:"window_start"`
	TotalEvents   int64   `json:"total_events"`
	Aligned       bool    `json:"aligned"`
}

// Snapshot returns the serialisable state of the window.
func (w *Window) Snapshot() Snapshot {
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return Snapshot{
		Events:        events,
		BaselineStart: w.baselineStart,
		WindowStart:   w.windowStart,
		TotalEvents:   w.totalEvents,
		Aligned:       w.aligned,
	}
}

// Restore rebuilds a window from a previously captured Snapshot, under
// the Config supplied to New; total_events, window positions, and the
// aligned flag are preserved exactly.
func (w *Window) Restore(s Snapshot) {
	w.events = make([]Event, len(s.Events))
	copy(w.events, s.Events)
	w.baselineStart = s.BaselineStart
	w.windowStart = s.WindowStart
	w.totalEvents = s.TotalEvents
	w.aligned = s.Aligned
}

// Reset clears all events and positions, as if newly constructed.
func (w *Window) Reset() {
	w.events = nil
	w.baselineStart = 0
	w.windowStart = 0
	w.totalEvents = 0
	w.aligned = false
}
