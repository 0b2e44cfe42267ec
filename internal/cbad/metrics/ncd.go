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

// NCD computes the Normalized Compression Distance between baseline B and
// window W under the given compressor: (C(B‖W) - min(C(B),C(W))) /
// max(C(B),C(W)), clamped to [0, 1]. Either empty slice is InvalidInput.
func NCD(baseline, window []byte, adapter compression.Adapter) (float64, error) {
	if len(baseline) == 0 || len(window) == 0 {
		return 0, cbaderr.Wrap(cbaderr.KindInvalidInput, "NCD requires non-empty baseline and window", nil)
	}
	cB, cW, cBW, err := compressedSizes(baseline, window, adapter)
	if err != nil {
		return 0, err
	}
	return ncdFromSizes(cB, cW, cBW), nil
}

// compressedSizes returns |C(B)|, |C(W)|, |C(B‖W)|.
func compressedSizes(baseline, window []byte, adapter compression.Adapter) (cB, cW, cBW int, err error) {
	b, err := adapter.Compress(baseline)
	if err != nil {
		return 0, 0, 0, cbaderr.Wrap(cbaderr.KindCompressionFailed, "compress baseline", err)
	}
	w, err := adapter.Compress(window)
	if err != nil {
		return 0, 0, 0, cbaderr.Wrap(cbaderr.KindCompressionFailed, "compress window", err)
	}
	combined := make([]byte, 0, len(baseline)+len(window))
	combined = append(combined, baseline...)
	combined = append(combined, window...)
	bw, err := adapter.Compress(combined)
	if err != nil {
		return 0, 0, 0, cbaderr.Wrap(cbaderr.KindCompressionFailed, "compress concatenation", err)
	}
	return len(b), len(w), len(bw), nil
}

// ncdFromSizes applies the NCD formula given already-computed compressed
// sizes. cB=0 or cW=0 is treated as NCD=0 per the numeric edge case rule.
func ncdFromSizes(cB, cW, cBW int) float64 {
	if cB == 0 || cW == 0 {
		return 0
	}
	minC := float64(cB)
	maxC := float64(cW)
	if cW < cB {
		minC, maxC = maxC, minC
	}
	ncd := (float64(cBW) - minC) / maxC
	if ncd < 0 {
		return 0
	}
	if ncd > 1 {
		return 1
	}
	return ncd
}

// Matrix computes pairwise NCD across sequences: symmetric, zero diagonal.
// Additive convenience with no caller inside this module; not part of the
// per-cycle detection contract.
func Matrix(sequences [][]byte, adapter compression.Adapter) ([][]float64, error) {
	n := len(sequences)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v, err := NCD(sequences[i], sequences[j], adapter)
			if err != nil {
				return nil, err
			}
			m[i][j] = v
			m[j][i] = v
		}
	}
	return m, nil
}
