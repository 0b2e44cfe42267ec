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

// Package detector wires the tokenizer, window, metrics, decision, and
// calibration packages into one per-stream detection cycle: ingest bytes,
// redact and normalise them, slide the window, and, once a cycle is
// ready, compute metrics and render a verdict.
package detector

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shannon-labs/cbad/internal/cbad/calibration"
	"github.com/shannon-labs/cbad/internal/cbad/cbaderr"
	"github.com/shannon-labs/cbad/internal/cbad/compression"
	"github.com/shannon-labs/cbad/internal/cbad/decision"
	"github.com/shannon-labs/cbad/internal/cbad/metrics"
	"github.com/shannon-labs/cbad/internal/cbad/tokenizer"
	"github.com/shannon-labs/cbad/internal/cbad/window"
)

// Config bundles everything needed to construct a Detector.
type Config struct {
	Name              string
	WindowConfig      window.Config
	PrivacyConfig     window.PrivacyConfig
	TokenizerConfig   tokenizer.Config
	CompressionName   string
	DecisionConfig    decision.Config
	Seed              uint64
	CalibrationMethod calibration.Method
	CalibrationTarget float64 // used when CalibrationMethod == MethodFprTarget
	CalibrationMinN   int
}

// feedbackBounds are the §8 floors/caps on threshold nudging.
const (
	confirmedNCDStep    = 0.01
	confirmedNCDFloor   = 0.05
	confirmedPStep      = 0.01
	confirmedPCap       = 0.2
	falsePositiveNCDStep = 0.02
	falsePositiveNCDCap  = 1.0
	falsePositivePShrink = 0.9 // multiply τ_p by 90% (10% reduction)
	falsePositivePFloor  = 0.005
)

// Detection is the result of one completed cycle.
type Detection struct {
	ID         string
	IsAnomaly  bool
	Confidence float64
	Metrics    metrics.Metrics
	Explanation string
	ObservedAt time.Time
}

// Detector runs one stream's full pipeline: redact/tokenize -> window ->
// metrics -> decision -> calibration feedback.
type Detector struct {
	mu sync.Mutex

	name   string
	cfg    Config
	tok    *tokenizer.Tokenizer
	win    *window.ThreadSafe
	priv   window.PrivacyConfig
	adapt  compression.Adapter
	dec    decision.Config
	gate   *decision.AdaptiveGate
	cal    *calibration.State

	history map[string]Detection
	nextID  uint64
}

// New builds a Detector from cfg.
func New(cfg Config) (*Detector, error) {
	adapter, err := compression.New(cfg.CompressionName)
	if err != nil {
		return nil, cbaderr.Wrap(cbaderr.KindInvalidConfig, "build compression adapter", err)
	}
	if err := cfg.DecisionConfig.Weights.Validate(); err != nil {
		return nil, err
	}

	var cal *calibration.State
	switch cfg.CalibrationMethod {
	case calibration.MethodF1Max:
		cal = calibration.NewF1Max(cfg.CalibrationMinN)
	case calibration.MethodManual:
		cal = calibration.NewManual(cfg.DecisionConfig.Thresholds.Composite)
	default:
		target := cfg.CalibrationTarget
		if target <= 0 {
			target = 0.01
		}
		cal = calibration.NewFprTarget(target, cfg.CalibrationMinN)
	}

	var gate *decision.AdaptiveGate
	if cfg.DecisionConfig.AdaptiveEnabled {
		gate = decision.NewAdaptiveGate(1000, cfg.DecisionConfig.AdaptiveWarmupWindows)
	}

	return &Detector{
		name:    cfg.Name,
		cfg:     cfg,
		tok:     tokenizer.New(cfg.TokenizerConfig),
		win:     window.NewThreadSafe(cfg.WindowConfig),
		priv:    cfg.PrivacyConfig,
		adapt:   adapter,
		dec:     cfg.DecisionConfig,
		gate:    gate,
		cal:     cal,
		history: make(map[string]Detection),
	}, nil
}

// Ingest redacts and then tokenizes raw bytes, appends them to the window,
// and if a cycle is ready runs the full metrics/decision pipeline. A nil
// Detection with a nil error means no cycle completed: either the window
// does not yet hold enough data, or the privacy pass dropped the event
// before it was appended. Once the window is ready, every appended event
// runs a cycle.
func (d *Detector) Ingest(raw []byte) (*Detection, error) {
	if len(raw) == 0 {
		return nil, cbaderr.Wrap(cbaderr.KindInvalidInput, "empty event payload", nil)
	}

	redacted, ok := window.Redact(d.priv, raw)
	if !ok {
		return nil, nil
	}
	normalized := d.tok.Tokenize(redacted)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.win.Add(window.Event{Payload: normalized, ObservedAt: time.Now()})
	if !d.win.Ready() {
		return nil, nil
	}

	baseline, win, ready := d.win.BaselineAndWindow()
	if !ready {
		return nil, nil
	}

	m, err := metrics.Compute(baseline, win, d.adapt, d.dec.PermutationCount, d.cfg.Seed, d.dec.Weights)
	if err != nil {
		return nil, err
	}
	d.win.AdvanceAfterAnalysis()

	effective := decision.EffectiveComposite(d.dec, d.gate)
	verdict := decision.Decide(m, d.dec, effective)
	if d.gate != nil {
		d.gate.Observe(m.Composite)
	}

	d.nextID++
	id := idFor(d.name, d.nextID)

	det := Detection{
		ID:          id,
		IsAnomaly:   verdict.IsAnomaly,
		Confidence:  verdict.Confidence,
		Metrics:     m,
		Explanation: metrics.Explain(m, verdict.IsAnomaly),
		ObservedAt:  time.Now(),
	}

	// Calibration warmup records the raw composite distribution unlabeled;
	// ground truth only arrives later via Confirm/FalsePositive, which
	// adjust thresholds directly rather than relabeling past scores.
	d.cal.RecordScore(m.Composite, nil, d.name)
	d.history[id] = det

	return &det, nil
}

func idFor(stream string, n uint64) string {
	return stream + "-" + itoa(n)
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Ready reports whether the window currently holds enough data for a cycle.
func (d *Detector) Ready() bool { return d.win.Ready() }

// Tokenizer returns the tokenizer this detector normalises events through,
// so a caller wiring up process-wide telemetry can share its per-pattern
// match counters instead of constructing an unrelated one.
func (d *Detector) Tokenizer() *tokenizer.Tokenizer { return d.tok }

// Confirm nudges thresholds toward more permissive detection after a
// human confirms a true positive: τ_ncd -= 0.01 (floor 0.05), τ_p += 0.01
// (cap 0.2). An id the detector no longer has on record (the client's
// view of ids may lag the window) is ignored silently, not an error.
func (d *Detector) Confirm(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.history[id]; !ok {
		return nil
	}
	t := &d.dec.Thresholds
	t.NCD -= confirmedNCDStep
	if t.NCD < confirmedNCDFloor {
		t.NCD = confirmedNCDFloor
	}
	t.PValue += confirmedPStep
	if t.PValue > confirmedPCap {
		t.PValue = confirmedPCap
	}
	return nil
}

// FalsePositive nudges thresholds toward stricter detection after a human
// rejects a detection: τ_ncd += 0.02 (cap 1.0), τ_p -= 10% (floor 0.005).
// An id the detector no longer has on record is ignored silently, not an
// error, for the same reason Confirm ignores one.
func (d *Detector) FalsePositive(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.history[id]; !ok {
		return nil
	}
	t := &d.dec.Thresholds
	t.NCD += falsePositiveNCDStep
	if t.NCD > falsePositiveNCDCap {
		t.NCD = falsePositiveNCDCap
	}
	t.PValue *= falsePositivePShrink
	if t.PValue < falsePositivePFloor {
		t.PValue = falsePositivePFloor
	}
	return nil
}

// Thresholds returns a snapshot of the currently active decision thresholds.
func (d *Detector) Thresholds() decision.Thresholds {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dec.Thresholds
}

// State is the serialisable snapshot of a Detector's window, restored via
// LoadState to resume a stream across process restarts. Static
// configuration (compression, tokenizer, privacy, calibration method) is
// intentionally excluded: it is supplied fresh by the caller's Config at
// reconstruction time, not replayed from disk.
type State struct {
	Name       string              `json:"name"`
	Window     window.Snapshot     `json:"window"`
	Thresholds decision.Thresholds `json:"thresholds"`
}

// SaveState serialises the window and current thresholds to JSON.
func (d *Detector) SaveState() ([]byte, error) {
	d.mu.Lock()
	s := State{Name: d.name, Window: d.win.Snapshot(), Thresholds: d.dec.Thresholds}
	d.mu.Unlock()

	out, err := json.Marshal(s)
	if err != nil {
		return nil, cbaderr.Wrap(cbaderr.KindStateCorrupt, "marshal detector state", err)
	}
	return out, nil
}

// LoadState restores a window and thresholds previously produced by
// SaveState. The detector's own static config (compression, tokenizer,
// calibration method) is left untouched.
func (d *Detector) LoadState(data []byte) error {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return cbaderr.Wrap(cbaderr.KindStateCorrupt, "unmarshal detector state", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.win.Restore(s.Window)
	d.dec.Thresholds = s.Thresholds
	return nil
}
