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

package metrics

import (
	"github.com/shannon-labs/cbad/internal/cbad/cbaderr"
	"github.com/shannon-labs/cbad/internal/cbad/compression"
)

// CompositeWeights weights NCD, statistical significance, and compression
// drop into the composite score. Must sum to (approximately) 1 and be
// non-negative.
type CompositeWeights struct {
	NCD  float64
	P    float64
	Drop float64
}

// DefaultWeights give NCD half the weight and split the rest evenly
// between the p-value and compression-drop signals.
func DefaultWeights() CompositeWeights { return CompositeWeights{NCD: 0.5, P: 0.25, Drop: 0.25} }

// HighPrecisionWeights shift weight toward statistical significance to
// reduce false positives.
func HighPrecisionWeights() CompositeWeights { return CompositeWeights{NCD: 0.4, P: 0.4, Drop: 0.2} }

// HighRecallWeights shift weight toward NCD to catch more true positives
// at the cost of precision.
func HighRecallWeights() CompositeWeights { return CompositeWeights{NCD: 0.6, P: 0.2, Drop: 0.2} }

// Validate checks the weights sum to ~1 and are all non-negative.
func (w CompositeWeights) Validate() error {
	if w.NCD < 0 || w.P < 0 || w.Drop < 0 {
		return cbaderr.New(cbaderr.KindInvalidConfig, "composite weights must be non-negative")
	}
	sum := w.NCD + w.P + w.Drop
	if sum < 0.99 || sum > 1.01 {
		return cbaderr.New(cbaderr.KindInvalidConfig, "composite weights must sum to 1.0")
	}
	return nil
}

// Metrics is the pure function output of one detection cycle: a function
// of (baseline bytes, window bytes, seed) alone.
type Metrics struct {
	NCD                    float64
	PValue                 float64
	BaselineRatio          float64
	WindowRatio            float64
	DeltaRatio             float64
	BaselineEntropy        float64
	WindowEntropy          float64
	DeltaEntropy           float64
	DeltaBits              int
	Composite              float64
	PermutationCount       int
	Confidence             float64
}

// Compute runs the full metrics cycle: compression ratios, entropy, NCD,
// permutation p-value, and the composite score, in that order, mirroring
// the reference compute_metrics orchestration.
func Compute(baseline, window []byte, adapter compression.Adapter, permutations int, seed uint64, weights CompositeWeights) (Metrics, error) {
	if len(baseline) == 0 || len(window) == 0 {
		return Metrics{}, cbaderr.Wrap(cbaderr.KindInvalidInput, "metrics require non-empty baseline and window", nil)
	}

	bc, err := adapter.Compress(baseline)
	if err != nil {
		return Metrics{}, cbaderr.Wrap(cbaderr.KindCompressionFailed, "compress baseline", err)
	}
	wc, err := adapter.Compress(window)
	if err != nil {
		return Metrics{}, cbaderr.Wrap(cbaderr.KindCompressionFailed, "compress window", err)
	}
	combined := make([]byte, 0, len(baseline)+len(window))
	combined = append(combined, baseline...)
	combined = append(combined, window...)
	bwc, err := adapter.Compress(combined)
	if err != nil {
		return Metrics{}, cbaderr.Wrap(cbaderr.KindCompressionFailed, "compress concatenation", err)
	}

	m := Metrics{}
	m.BaselineRatio = CompressionRatio(len(baseline), len(bc))
	m.WindowRatio = CompressionRatio(len(window), len(wc))
	m.DeltaRatio = DeltaRatio(m.BaselineRatio, m.WindowRatio)

	m.BaselineEntropy = Entropy(baseline)
	m.WindowEntropy = Entropy(window)
	m.DeltaEntropy = DeltaEntropy(m.BaselineEntropy, m.WindowEntropy)

	m.DeltaBits = DeltaBits(len(bc), len(wc), len(bwc))
	m.NCD = ncdFromSizes(len(bc), len(wc), len(bwc))

	perm, err := TestNCDSignificance(baseline, window, adapter, permutations, seed)
	if err != nil {
		return Metrics{}, err
	}
	m.PValue = perm.PValue
	m.PermutationCount = permutations
	m.Confidence = 1 - m.PValue

	if err := weights.Validate(); err != nil {
		return Metrics{}, err
	}
	m.Composite = CompositeScore(m, weights)

	return m, nil
}

// CompositeScore combines NCD, statistical significance, and compression
// drop into a single [0,1]-ish score: w_ncd*NCD + w_p*(1-p) +
// w_c*max(0,-Δratio).
func CompositeScore(m Metrics, w CompositeWeights) float64 {
	drop := 0.0
	if m.DeltaRatio < 0 {
		drop = -m.DeltaRatio
	}
	return w.NCD*m.NCD + w.P*(1-m.PValue) + w.Drop*drop
}
