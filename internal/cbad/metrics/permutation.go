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
	"math/rand/v2"

	"github.com/shannon-labs/cbad/internal/cbad/cbaderr"
	"github.com/shannon-labs/cbad/internal/cbad/compression"
)

// PermutationResult is the outcome of a permutation significance test.
type PermutationResult struct {
	PValue        float64
	ExtremeCount  int
	Permutations  int
	ObservedNCD   float64
	Significant   bool
}

// SignificanceThreshold is the conventional p < 0.05 cutoff used to mark a
// PermutationResult significant; exposed so callers can recompute
// Significant against a different threshold without rerunning the test.
const SignificanceThreshold = 0.05

// TestNCDSignificance reshuffles the concatenation of baseline and window
// K times, splitting back at len(baseline) each time, and counts how many
// shuffles produce an NCD at least as extreme as the one observed. The PRNG
// is seeded deterministically so identical inputs and seed reproduce
// identical p-values. Within one call the shuffles are NOT independent —
// each shuffle operates on the result of the previous one, not a fresh
// copy, matching the reference permutation tester this is grounded on.
// Each call starts from a fresh copy and a freshly seeded PRNG.
func TestNCDSignificance(baseline, window []byte, adapter compression.Adapter, permutations int, seed uint64) (PermutationResult, error) {
	if len(baseline) == 0 || len(window) == 0 {
		return PermutationResult{}, cbaderr.Wrap(cbaderr.KindInvalidInput, "permutation test requires non-empty baseline and window", nil)
	}

	observed, err := NCD(baseline, window, adapter)
	if err != nil {
		return PermutationResult{}, err
	}

	if permutations <= 0 {
		return PermutationResult{
			PValue:       1,
			Permutations: 0,
			ObservedNCD:  observed,
			Significant:  false,
		}, nil
	}

	combined := make([]byte, 0, len(baseline)+len(window))
	combined = append(combined, baseline...)
	combined = append(combined, window...)
	split := len(baseline)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	extreme := 0
	for i := 0; i < permutations; i++ {
		fisherYatesShuffle(combined, rng)
		permNCD, err := NCD(combined[:split], combined[split:], adapter)
		if err != nil {
			return PermutationResult{}, err
		}
		if permNCD >= observed {
			extreme++
		}
	}

	p := float64(1+extreme) / float64(1+permutations)
	return PermutationResult{
		PValue:       p,
		ExtremeCount: extreme,
		Permutations: permutations,
		ObservedNCD:  observed,
		Significant:  p < SignificanceThreshold,
	}, nil
}

// fisherYatesShuffle performs a uniform in-place Fisher-Yates shuffle.
func fisherYatesShuffle(data []byte, rng *rand.Rand) {
	for i := len(data) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		data[i], data[j] = data[j], data[i]
	}
}
