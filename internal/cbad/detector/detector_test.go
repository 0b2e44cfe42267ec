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

package detector

import (
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shannon-labs/cbad/internal/cbad/calibration"
	"github.com/shannon-labs/cbad/internal/cbad/decision"
	"github.com/shannon-labs/cbad/internal/cbad/tokenizer"
	"github.com/shannon-labs/cbad/internal/cbad/window"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Name: "test-stream",
		WindowConfig: window.Config{
			BaselineSize: 5,
			WindowSize:   3,
			HopSize:      3,
			Capacity:     100,
		},
		TokenizerConfig:   tokenizer.DefaultConfig(),
		CompressionName:   "gzip",
		DecisionConfig:    decision.ForProfile(decision.ProfileSensitive),
		Seed:              7,
		CalibrationMethod: calibration.MethodFprTarget,
		CalibrationTarget: 0.1,
		CalibrationMinN:   5,
	}
}

func TestIngestNotReadyReturnsNilDetection(t *testing.T) {
	d, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("unexpected error constructing detector: %v", err)
	}
	det, err := d.Ingest([]byte("GET /api/users status=200 duration_ms=42"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if det != nil {
		t.Fatal("expected nil detection before window is ready")
	}
}

func TestIngestRejectsEmptyPayload(t *testing.T) {
	d, _ := New(testConfig(t))
	if _, err := d.Ingest(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestIngestProducesDetectionOnceReady(t *testing.T) {
	d, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	normal := "INFO 2025-10-24T00:00:00Z service=api-gateway method=GET path=/api/users status=200 duration_ms=42\n"
	var last *Detection
	for i := 0; i < 8; i++ {
		last, err = d.Ingest([]byte(normal))
		if err != nil {
			t.Fatalf("unexpected error on event %d: %v", i, err)
		}
	}
	if last == nil {
		t.Fatal("expected a detection once baseline+window sizes are satisfied")
	}
	if last.Explanation == "" {
		t.Fatal("expected a non-empty explanation")
	}
	if !strings.Contains(last.ID, "test-stream-") {
		t.Fatalf("expected id to be namespaced by stream, got %q", last.ID)
	}
}

func TestIngestFlagsStructuralBreak(t *testing.T) {
	d, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	normal := "INFO 2025-10-24T00:00:00Z service=api-gateway method=GET path=/api/users status=200 duration_ms=42\n"
	for i := 0; i < 5; i++ {
		if _, err := d.Ingest([]byte(normal)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	corrupted := "\x00\x01\xff\xfe binary garbage \x02\x03\x04 not a log line at all \x05\x06"
	var last *Detection
	for i := 0; i < 3; i++ {
		last, err = d.Ingest([]byte(corrupted))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if last == nil {
		t.Fatal("expected a detection once the window filled with corrupted data")
	}
}

func TestConfirmAndFalsePositiveAdjustThresholds(t *testing.T) {
	d, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var last *Detection
	for i := 0; i < 8; i++ {
		last, err = d.Ingest([]byte("INFO normal log line number value here\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if last == nil {
		t.Fatal("expected a detection to confirm against")
	}

	before := d.Thresholds()
	if err := d.Confirm(last.ID); err != nil {
		t.Fatalf("unexpected error confirming: %v", err)
	}
	after := d.Thresholds()
	if after.NCD >= before.NCD {
		t.Fatalf("expected NCD threshold to drop after confirm: before=%v after=%v", before.NCD, after.NCD)
	}
	if after.PValue <= before.PValue {
		t.Fatalf("expected p-value threshold to rise after confirm: before=%v after=%v", before.PValue, after.PValue)
	}

	beforeFP := d.Thresholds()
	if err := d.FalsePositive(last.ID); err != nil {
		t.Fatalf("unexpected error marking false positive: %v", err)
	}
	afterFP := d.Thresholds()
	if afterFP.NCD <= beforeFP.NCD {
		t.Fatalf("expected NCD threshold to rise after false positive: before=%v after=%v", beforeFP.NCD, afterFP.NCD)
	}
	if afterFP.PValue >= beforeFP.PValue {
		t.Fatalf("expected p-value threshold to shrink after false positive: before=%v after=%v", beforeFP.PValue, afterFP.PValue)
	}
}

func TestConfirmAndFalsePositiveIgnoreUnknownID(t *testing.T) {
	d, _ := New(testConfig(t))
	before := d.Thresholds()
	if err := d.Confirm("does-not-exist"); err != nil {
		t.Fatalf("expected unknown id to be ignored silently, got error: %v", err)
	}
	if err := d.FalsePositive("does-not-exist"); err != nil {
		t.Fatalf("expected unknown id to be ignored silently, got error: %v", err)
	}
	after := d.Thresholds()
	if after != before {
		t.Fatalf("expected thresholds unchanged by feedback on an unknown id: before=%+v after=%+v", before, after)
	}
}

// TestConcurrentIngestAndFeedbackDoNotRace drives Ingest from many
// goroutines alongside Confirm/FalsePositive calls racing against whatever
// detection ids have been produced so far, to exercise the single
// exclusive lock a detection cycle is supposed to hold for its duration.
// Run with -race to catch a regression.
func TestConcurrentIngestAndFeedbackDoNotRace(t *testing.T) {
	d, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const goroutines = 32
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < eventsPerGoroutine; i++ {
				payload := "INFO concurrent log line g=" + strconv.Itoa(g) + " i=" + strconv.Itoa(i) + "\n"
				det, err := d.Ingest([]byte(payload))
				if err != nil {
					t.Errorf("unexpected ingest error: %v", err)
					return
				}
				if det != nil {
					if err := d.Confirm(det.ID); err != nil {
						t.Errorf("unexpected confirm error: %v", err)
						return
					}
					if err := d.FalsePositive(det.ID); err != nil {
						t.Errorf("unexpected false positive error: %v", err)
						return
					}
				}
				// Feed in an id that is very unlikely to exist yet, to race
				// feedback lookups against concurrent Ingest calls filling
				// d.history.
				if err := d.Confirm("test-stream-999999"); err != nil {
					t.Errorf("unexpected error feeding an unknown id concurrently: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if !d.Ready() {
		t.Fatal("expected detector to be ready after many concurrent ingests")
	}
}

func TestSaveStateAndLoadStateRoundTrip(t *testing.T) {
	d, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 8; i++ {
		if _, err := d.Ingest([]byte("INFO restorable log line value\n")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	data, err := d.SaveState()
	if err != nil {
		t.Fatalf("unexpected error saving state: %v", err)
	}

	restored, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := restored.LoadState(data); err != nil {
		t.Fatalf("unexpected error loading state: %v", err)
	}
	if !restored.Ready() {
		t.Fatal("expected restored detector's window to report ready")
	}
}

func TestLoadStateRejectsCorruptData(t *testing.T) {
	d, _ := New(testConfig(t))
	if err := d.LoadState([]byte("not json")); err == nil {
		t.Fatal("expected error loading corrupt state")
	}
}
