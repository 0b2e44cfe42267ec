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

// Package cbad is a small, dependency-light façade over
// internal/cbad/detector for callers who just want "feed bytes in, get an
// anomaly verdict out" without wiring the tokenizer/window/decision
// packages themselves.
package cbad

import (
	"github.com/shannon-labs/cbad/internal/cbad/calibration"
	"github.com/shannon-labs/cbad/internal/cbad/decision"
	"github.com/shannon-labs/cbad/internal/cbad/detector"
	"github.com/shannon-labs/cbad/internal/cbad/tokenizer"
	"github.com/shannon-labs/cbad/internal/cbad/window"
)

// Profile selects one of the three threshold presets, or Custom for a
// caller-supplied Thresholds value.
type Profile = decision.Profile

const (
	ProfileStrict    = decision.ProfileStrict
	ProfileBalanced  = decision.ProfileBalanced
	ProfileSensitive = decision.ProfileSensitive
	ProfileCustom    = decision.ProfileCustom
)

// Options configures a Detector at a level most callers need, trading the
// detector package's full Config for a handful of named fields.
type Options struct {
	Name string

	BaselineSize int
	WindowSize   int
	HopSize      int
	Capacity     int

	CompressionName string // "gzip", "flate", "lz4", or "zstd"
	Profile          Profile
	Seed             uint64
}

// DefaultOptions returns sane defaults: a 50-event baseline, a 10-event
// window with a 5-event hop, gzip compression, and the Balanced profile.
func DefaultOptions(name string) Options {
	return Options{
		Name:            name,
		BaselineSize:    50,
		WindowSize:      10,
		HopSize:         5,
		Capacity:        1000,
		CompressionName: "gzip",
		Profile:         ProfileBalanced,
		Seed:            42,
	}
}

// Detector wraps one internal detector.Detector.
type Detector struct {
	inner *detector.Detector
}

// New builds a Detector from Options.
func New(opts Options) (*Detector, error) {
	cfg := detector.Config{
		Name: opts.Name,
		WindowConfig: window.Config{
			BaselineSize: opts.BaselineSize,
			WindowSize:   opts.WindowSize,
			HopSize:      opts.HopSize,
			Capacity:     opts.Capacity,
		},
		TokenizerConfig:   tokenizer.DefaultConfig(),
		CompressionName:   opts.CompressionName,
		DecisionConfig:    decision.ForProfile(opts.Profile),
		Seed:              opts.Seed,
		CalibrationMethod: calibration.MethodManual,
		CalibrationTarget: 0,
		CalibrationMinN:   20,
	}
	inner, err := detector.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Detector{inner: inner}, nil
}

// Ingest feeds one raw event through the detector. The returned Detection
// is nil until enough events have accumulated to fill a baseline+window.
func (d *Detector) Ingest(raw []byte) (*detector.Detection, error) {
	return d.inner.Ingest(raw)
}

// Ready reports whether the detector has accumulated enough history to
// produce a verdict on the next Ingest call.
func (d *Detector) Ready() bool { return d.inner.Ready() }

// Confirm records a true positive for the given detection id, loosening
// thresholds slightly for the stream so similar breaks are flagged more
// readily.
func (d *Detector) Confirm(id string) error { return d.inner.Confirm(id) }

// FalsePositive records a false positive for the given detection id,
// tightening thresholds slightly for the stream.
func (d *Detector) FalsePositive(id string) error { return d.inner.FalsePositive(id) }

// SaveState serialises the detector's window contents and current
// thresholds for later restoration via LoadState.
func (d *Detector) SaveState() ([]byte, error) { return d.inner.SaveState() }

// LoadState restores window contents and thresholds previously produced
// by SaveState.
func (d *Detector) LoadState(data []byte) error { return d.inner.LoadState(data) }
