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

// Package synth generates synthetic event streams for exercising a
// detector without a live log source: a normal baseline plus five kinds
// of injected anomaly, and a helper that interleaves the two into one
// mixed dataset with known anomaly positions.
package synth

import (
	"fmt"
	"math/rand/v2"
)

// AnomalyType names one of the five synthetic anomaly shapes.
type AnomalyType int

const (
	VolumeSpike AnomalyType = iota
	RandomNoise
	PatternBreak
	DataCorruption
	GradualDrift
)

func (a AnomalyType) String() string {
	switch a {
	case VolumeSpike:
		return "volume_spike"
	case RandomNoise:
		return "random_noise"
	case PatternBreak:
		return "pattern_break"
	case DataCorruption:
		return "data_corruption"
	case GradualDrift:
		return "gradual_drift"
	default:
		return "unknown"
	}
}

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GenerateBaseline produces count synthetic "normal" API gateway log lines,
// deterministic given seed.
func GenerateBaseline(count int, seed uint64) [][]byte {
	rng := newRNG(seed)
	events := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		timestamp := fmt.Sprintf("2025-10-24T%02d:%02d:%02dZ", (i/3600)%24, (i%3600)/60, i%60)
		duration := 40 + rng.IntN(20)
		status := 200
		if rng.Float64() >= 0.95 {
			status = 500
		}
		line := fmt.Sprintf(
			"INFO %s service=api-gateway method=GET path=/api/users status=%d duration_ms=%d\n",
			timestamp, status, duration,
		)
		events = append(events, []byte(line))
	}
	return events
}

// GenerateAnomaly produces count synthetic anomalous events of the given
// shape, deterministic given seed.
func GenerateAnomaly(count int, kind AnomalyType, seed uint64) [][]byte {
	rng := newRNG(seed)
	var events [][]byte

	switch kind {
	case VolumeSpike:
		events = make([][]byte, 0, count*5)
		for i := 0; i < count*5; i++ {
			line := fmt.Sprintf(
				"ERROR 2025-10-24T12:00:00Z service=api-gateway msg=high_latency duration_ms=%d\n",
				1000+rng.IntN(5000),
			)
			events = append(events, []byte(line))
		}
	case RandomNoise:
		events = make([][]byte, 0, count)
		for i := 0; i < count; i++ {
			noise := make([]byte, 50)
			for j := range noise {
				noise[j] = alphanumeric[rng.IntN(len(alphanumeric))]
			}
			line := fmt.Sprintf(
				"INFO 2025-10-24T12:00:00Z service=api-gateway msg=random_noise data=%s\n",
				noise,
			)
			events = append(events, []byte(line))
		}
	case PatternBreak:
		events = make([][]byte, 0, count)
		for i := 0; i < count; i++ {
			stackTrace := fmt.Sprintf(
				"thread 'main' panicked at 'index out of bounds: the len is %d but the index is %d', src/main.rs:%d:5",
				10+rng.IntN(90), 100+rng.IntN(100), 1+rng.IntN(49),
			)
			line := fmt.Sprintf(
				"PANIC 2025-10-24T12:00:00Z service=api-gateway stack_trace=\"%s\"\n",
				stackTrace,
			)
			events = append(events, []byte(line))
		}
	case DataCorruption:
		events = make([][]byte, 0, count)
		for i := 0; i < count; i++ {
			corrupted := make([]byte, 100)
			for j := range corrupted {
				corrupted[j] = byte(rng.IntN(255))
			}
			events = append(events, corrupted)
		}
	case GradualDrift:
		events = make([][]byte, 0, count)
		for i := 0; i < count; i++ {
			driftFactor := float64(i) / float64(count)
			duration := int(40.0 + driftFactor*100.0)
			line := fmt.Sprintf(
				"INFO 2025-10-24T12:00:00Z service=api-gateway method=GET path=/api/users status=200 duration_ms=%d\n",
				duration,
			)
			events = append(events, []byte(line))
		}
	}

	return events
}

// GenerateMixedDataset interleaves normalCount baseline events with
// anomalyCount anomalous events of kind, returning the mixed stream and
// the indices at which anomalous events landed.
func GenerateMixedDataset(normalCount, anomalyCount int, kind AnomalyType, seed uint64) ([][]byte, []int) {
	rng := newRNG(seed)
	normal := GenerateBaseline(normalCount, seed+1)
	anomalous := GenerateAnomaly(anomalyCount, kind, seed+2)

	all := make([][]byte, 0, normalCount+anomalyCount)
	var indices []int

	normalIdx, anomalyIdx := 0, 0
	for i := 0; i < normalCount+anomalyCount; i++ {
		takeNormal := normalIdx < normalCount && (anomalyIdx >= len(anomalous) || rng.Float64() < 0.8)
		if takeNormal {
			all = append(all, normal[normalIdx])
			normalIdx++
			continue
		}
		if anomalyIdx < len(anomalous) {
			all = append(all, anomalous[anomalyIdx])
			indices = append(indices, i)
			anomalyIdx++
		}
	}
	return all, indices
}
