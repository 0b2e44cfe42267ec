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

import "testing"

func TestAdaptiveGateFallsBackDuringWarmup(t *testing.T) {
	gate := NewAdaptiveGate(100, 20)
	gate.Observe(0.9)
	if got := gate.Effective(0.05, 0.45); got != 0.45 {
		t.Fatalf("expected fallback 0.45 during warmup, got %v", got)
	}
}

func TestAdaptiveGateUsesQuantileAfterWarmup(t *testing.T) {
	gate := NewAdaptiveGate(100, 10)
	for i := 0; i < 10; i++ {
		gate.Observe(float64(i) / 10.0)
	}
	got := gate.Effective(0.1, 0.99)
	if got == 0.99 {
		t.Fatal("expected gate to stop using fallback once warmed up")
	}
}

func TestEffectiveCompositeDisabledUsesStaticThreshold(t *testing.T) {
	cfg := ForProfile(ProfileBalanced)
	cfg.AdaptiveEnabled = false
	gate := NewAdaptiveGate(100, 5)
	gate.Observe(0.99)
	if got := EffectiveComposite(cfg, gate); got != cfg.Thresholds.Composite {
		t.Fatalf("expected static threshold %v when adaptive disabled, got %v", cfg.Thresholds.Composite, got)
	}
}

func TestEffectiveCompositeNilGateUsesStaticThreshold(t *testing.T) {
	cfg := ForProfile(ProfileBalanced)
	cfg.AdaptiveEnabled = true
	if got := EffectiveComposite(cfg, nil); got != cfg.Thresholds.Composite {
		t.Fatalf("expected static threshold with nil gate, got %v", got)
	}
}
