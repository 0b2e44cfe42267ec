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

package decision

import (
	"sync"

	"github.com/shannon-labs/cbad/internal/cbad/calibration"
)

// AdaptiveGate tracks recent composite scores and, once warmed up, reports
// an effective composite threshold at the (1 - AdaptiveTargetFPR) quantile
// of that history instead of the profile's fixed Thresholds.Composite.
// This lets the composite gate track drift in a stream's normal baseline
// without a full recalibration pass. Every score in the ring is weighted
// equally, so slow drift is absorbed into the quantile rather than flagged.
type AdaptiveGate struct {
	mu     sync.Mutex
	ring   *calibration.Ring
	warmup int
}

// NewAdaptiveGate builds a gate with the given history capacity and the
// number of observations required before the quantile is trusted over the
// static fallback.
func NewAdaptiveGate(historyCap, warmupWindows int) *AdaptiveGate {
	return &AdaptiveGate{ring: calibration.NewRing(historyCap), warmup: warmupWindows}
}

// Observe records one cycle's composite score.
func (g *AdaptiveGate) Observe(score float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ring.Record(calibration.ScoredSample{Score: score})
}

// Effective returns the gate's current composite threshold: the quantile
// of observed history once warmup is satisfied, otherwise fallback.
func (g *AdaptiveGate) Effective(targetFPR, fallback float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ring.Len() < g.warmup {
		return fallback
	}
	return calibration.Quantile(g.ring.Scores(), 1.0-targetFPR)
}

// EffectiveComposite resolves the composite threshold to use for one
// Decide call: the adaptive gate's quantile when cfg.AdaptiveEnabled and
// warmed up, otherwise cfg.Thresholds.Composite.
func EffectiveComposite(cfg Config, gate *AdaptiveGate) float64 {
	if !cfg.AdaptiveEnabled || gate == nil {
		return cfg.Thresholds.Composite
	}
	return gate.Effective(cfg.AdaptiveTargetFPR, cfg.Thresholds.Composite)
}
