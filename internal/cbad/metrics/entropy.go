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

// Package metrics computes NCD, compression ratio change, Shannon entropy
// change and the permutation p-value, which the decision core compares
// against thresholds, plus the delta-bits diagnostic (reported, not
// thresholded), and combines them into a composite score and a templated
// explanation.
package metrics

import "math"

// Entropy returns the Shannon entropy of data in bits/byte, in [0, 8].
// Empty input is defined as zero entropy.
func Entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var freq [256]int64
	for _, b := range data {
		freq[b]++
	}
	total := float64(len(data))
	var h float64
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		h -= p * math.Log2(p)
	}
	return h
}

// DeltaEntropy returns the relative entropy change of window against
// baseline, guarding against division by a near-zero baseline entropy.
func DeltaEntropy(baselineEntropy, windowEntropy float64) float64 {
	denom := baselineEntropy
	if denom < 1e-3 {
		denom = 1e-3
	}
	return (windowEntropy - baselineEntropy) / denom
}
