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

// Package decision implements the composite score, profile thresholds,
// and the strict/lenient decision rules that turn a cycle's Metrics into
// an is_anomaly verdict.
package decision

import "github.com/shannon-labs/cbad/internal/cbad/metrics"

// Profile names a threshold preset.
type Profile int

const (
	ProfileStrict Profile = iota
	ProfileBalanced
	ProfileSensitive
	ProfileCustom
)

// Thresholds are the five tunables the decision rule compares metrics
// against.
type Thresholds struct {
	NCD              float64 // τ_ncd
	PValue           float64 // τ_p
	Composite        float64 // τ_c
	CompressionDrop  float64 // τ_drop
	EntropyJump      float64 // τ_ent
}

// Config bundles the active thresholds, mode, profile, and permutation
// count for a detector cycle.
type Config struct {
	Profile                       Profile
	Thresholds                    Thresholds
	RequireStatisticalSignificance bool
	PermutationCount              int
	Weights                       metrics.CompositeWeights

	AdaptiveEnabled       bool
	AdaptiveTargetFPR     float64
	AdaptiveWarmupWindows int
}

// ForProfile returns the canonical Config for a named profile. Custom
// profiles must be constructed directly by the caller.
func ForProfile(p Profile) Config {
	switch p {
	case ProfileStrict:
		return Config{
			Profile: ProfileStrict,
			Thresholds: Thresholds{
				NCD: 0.4, PValue: 0.01, Composite: 0.6, CompressionDrop: 0.3, EntropyJump: 0.5,
			},
			RequireStatisticalSignificance: true,
			PermutationCount:               500,
			Weights:                        metrics.HighPrecisionWeights(),
		}
	case ProfileSensitive:
		return Config{
			Profile: ProfileSensitive,
			Thresholds: Thresholds{
				NCD: 0.2, PValue: 0.1, Composite: 0.3, CompressionDrop: 0.1, EntropyJump: 0.2,
			},
			RequireStatisticalSignificance: false,
			PermutationCount:               50,
			Weights:                        metrics.HighRecallWeights(),
		}
	case ProfileCustom:
		return Config{Profile: ProfileCustom}
	default: // ProfileBalanced
		return Config{
			Profile: ProfileBalanced,
			Thresholds: Thresholds{
				NCD: 0.3, PValue: 0.05, Composite: 0.45, CompressionDrop: 0.2, EntropyJump: 0.3,
			},
			RequireStatisticalSignificance: true,
			PermutationCount:               100,
			Weights:                        metrics.DefaultWeights(),
		}
	}
}

// Decision is the verdict produced for one cycle.
type Decision struct {
	IsAnomaly  bool
	Confidence float64
}

// Decide applies the strict or lenient rule (per cfg.RequireStatisticalSignificance)
// against m, using the composite threshold supplied by the caller
// (effectiveComposite), which may come from cfg.Thresholds.Composite or
// from the adaptive gate's quantile.
func Decide(m metrics.Metrics, cfg Config, effectiveComposite float64) Decision {
	t := cfg.Thresholds
	ncdSignificant := m.NCD >= t.NCD && m.PValue <= t.PValue
	compressionDropped := m.DeltaRatio <= -t.CompressionDrop
	entropyJumped := m.DeltaEntropy >= t.EntropyJump
	compositeHigh := m.Composite >= effectiveComposite

	var isAnomaly bool
	if cfg.RequireStatisticalSignificance {
		isAnomaly = ncdSignificant || (compositeHigh && (compressionDropped || entropyJumped))
	} else {
		signalCount := 0
		if compressionDropped {
			signalCount++
		}
		if entropyJumped {
			signalCount++
		}
		if compositeHigh {
			signalCount++
		}
		isAnomaly = signalCount >= 2 || ncdSignificant
	}

	return Decision{
		IsAnomaly:  isAnomaly,
		Confidence: m.Confidence,
	}
}
