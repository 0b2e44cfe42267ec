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

// Package calibration maintains a ring of recent composite scores (with
// optional truth labels) and derives a composite threshold from them via
// FprTarget, F1Max, or a manual override.
package calibration

import "sort"

// ScoredSample is one composite score plus an optional label: true means
// "known anomaly", false means "known normal", and a sample with no label
// is treated as normal for FprTarget purposes (consistent with the
// reference calibration state, which only requires labels for F1Max).
type ScoredSample struct {
	Score   float64
	Labeled bool
	Anomaly bool
}

// Ring is a bounded FIFO of recent scored samples, used both for global
// calibration and for the decision core's adaptive threshold gate.
type Ring struct {
	cap     int
	samples []ScoredSample
}

// NewRing builds a ring with the given capacity (adaptive_history_cap).
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Ring{cap: capacity}
}

// Record appends a sample, evicting the oldest once at capacity.
func (r *Ring) Record(s ScoredSample) {
	r.samples = append(r.samples, s)
	if len(r.samples) > r.cap {
		r.samples = r.samples[len(r.samples)-r.cap:]
	}
}

// Len returns the number of samples currently held.
func (r *Ring) Len() int { return len(r.samples) }

// Scores returns a copy of the raw scores, oldest first.
func (r *Ring) Scores() []float64 {
	out := make([]float64, len(r.samples))
	for i, s := range r.samples {
		out[i] = s.Score
	}
	return out
}

// NormalScores returns scores for samples not labelled as anomalies
// (unlabeled samples count as normal).
func (r *Ring) NormalScores() []float64 {
	var out []float64
	for _, s := range r.samples {
		if !s.Labeled || !s.Anomaly {
			out = append(out, s.Score)
		}
	}
	return out
}

// Quantile returns the empirical q-quantile (0<=q<=1) of the ring's raw
// scores using nearest-rank interpolation over the sorted values.
func Quantile(scores []float64, q float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	idx := int(round(float64(len(sorted)-1) * q))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func round(f float64) float64 {
	if f < 0 {
		return float64(int(f - 0.5))
	}
	return float64(int(f + 0.5))
}
