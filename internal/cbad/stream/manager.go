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

// Package stream manages a named collection of independent detectors and
// routes ingested events by stream name. Streams are created and removed
// rarely compared to how often they are read on every ingest call, so the
// map is guarded by a plain sync.RWMutex rather than sync.Map: the
// read-mostly lookup pattern favours a map under RLock over sync.Map's
// churn-oriented design.
package stream

import (
	"sort"
	"sync"
	"time"

	"github.com/shannon-labs/cbad/internal/cbad/cbaderr"
	"github.com/shannon-labs/cbad/internal/cbad/detector"
	"github.com/shannon-labs/cbad/internal/cbad/telemetry"
)

// Manager owns a name -> *detector.Detector map and the store used to
// persist completed detections for cross-stream correlation.
type Manager struct {
	mu       sync.RWMutex
	streams  map[string]*detector.Detector
	recorder AnomalyRecorder
	counters *telemetry.Counters
}

// AnomalyRecorder is implemented by the storage layer; Manager records
// every anomalous detection through it so correlation queries can span
// streams. A nil recorder disables recording (used in tests).
type AnomalyRecorder interface {
	Record(stream string, det detector.Detection) error
}

// New builds an empty Manager. recorder may be nil to skip persistence.
func New(recorder AnomalyRecorder) *Manager {
	return &Manager{streams: make(map[string]*detector.Detector), recorder: recorder}
}

// SetCounters attaches the process-wide telemetry counters every Ingest
// call records into. A nil counters (the default) disables recording,
// matching the nil-recorder convention above.
func (m *Manager) SetCounters(counters *telemetry.Counters) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = counters
}

// Create registers a new named stream with its own detector. Returns
// InvalidConfig if the name is already in use.
func (m *Manager) Create(name string, cfg detector.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.streams[name]; exists {
		return cbaderr.Wrap(cbaderr.KindInvalidConfig, "stream already exists: "+name, nil)
	}
	cfg.Name = name
	d, err := detector.New(cfg)
	if err != nil {
		return err
	}
	m.streams[name] = d
	return nil
}

// Ingest routes raw bytes to the named stream's detector.
func (m *Manager) Ingest(name string, raw []byte) (*detector.Detection, error) {
	m.mu.RLock()
	d, ok := m.streams[name]
	counters := m.counters
	m.mu.RUnlock()
	if !ok {
		return nil, cbaderr.Wrap(cbaderr.KindUnknownStream, "unknown stream: "+name, nil)
	}

	started := time.Now()
	det, err := d.Ingest(raw)
	if err != nil {
		return nil, err
	}
	if det == nil {
		return nil, nil
	}

	if counters != nil {
		bytesSaved := -det.Metrics.DeltaBits
		counters.RecordEvent(det.IsAnomaly, time.Since(started).Nanoseconds(), bytesSaved)
	}

	if det.IsAnomaly && m.recorder != nil {
		if err := m.recorder.Record(name, *det); err != nil {
			return det, err
		}
	}
	return det, nil
}

// Has reports whether a named stream exists.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.streams[name]
	return ok
}

// Remove deletes a stream, returning whether it existed.
func (m *Manager) Remove(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.streams[name]; !ok {
		return false
	}
	delete(m.streams, name)
	return true
}

// List returns all managed stream names in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.streams))
	for name := range m.streams {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get returns the detector for a named stream, for callers (feedback,
// state persistence) that need direct access.
func (m *Manager) Get(name string) (*detector.Detector, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.streams[name]
	return d, ok
}

// Recorder returns the AnomalyRecorder this manager was built with, so
// callers (the HTTP API's correlation endpoint) can type-assert it into a
// Correlator without the manager itself depending on that capability.
func (m *Manager) Recorder() AnomalyRecorder {
	return m.recorder
}

// CorrelationWindow groups recorded anomalies seen across streams within
// a trailing duration.
type CorrelationWindow struct {
	Window    time.Duration
	Anomalies []RecordedAnomaly
}

// RecordedAnomaly is one persisted anomalous detection, tagged with the
// stream it came from.
type RecordedAnomaly struct {
	Stream     string
	Detection  detector.Detection
}

// Correlator is implemented by the storage layer to answer cross-stream
// queries.
type Correlator interface {
	Query(since time.Time) ([]RecordedAnomaly, error)
}

// Correlate asks correlator for every recorded anomaly within the
// trailing window and wraps it in a single CorrelationWindow, mirroring
// the one-window-per-call contract used by the correlation endpoint.
func Correlate(correlator Correlator, window time.Duration) (CorrelationWindow, error) {
	since := time.Now().Add(-window)
	anomalies, err := correlator.Query(since)
	if err != nil {
		return CorrelationWindow{}, err
	}
	return CorrelationWindow{Window: window, Anomalies: anomalies}, nil
}
