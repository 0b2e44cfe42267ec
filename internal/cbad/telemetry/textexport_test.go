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

package telemetry

import (
	"strings"
	"testing"
)

func testSnapshot() Snapshot {
	return Snapshot{
		EventsProcessed:   10,
		AnomaliesDetected: 2,
		DetectionCycles:   10,
		CumulativeLatency: 500000,
		BytesSaved:        1200,
		TokenizerMatches:  map[string]uint64{"uuid": 3, "email": 1},
	}
}

func TestRenderIncludesHelpAndType(t *testing.T) {
	out := NewExporter("").Render(testSnapshot())
	if !strings.Contains(out, "# HELP cbad_events_processed_total") {
		t.Fatal("expected HELP line for events_processed")
	}
	if !strings.Contains(out, "# TYPE cbad_events_processed_total counter") {
		t.Fatal("expected TYPE line for events_processed")
	}
	if !strings.Contains(out, "cbad_events_processed_total 10\n") {
		t.Fatalf("expected bare counter value, got:\n%s", out)
	}
}

func TestRenderAttachesStreamLabel(t *testing.T) {
	out := NewExporter("api-logs").Render(testSnapshot())
	if !strings.Contains(out, `{stream="api-logs"}`) {
		t.Fatalf("expected stream label, got:\n%s", out)
	}
}

func TestRenderSortsTokenizerPatterns(t *testing.T) {
	out := NewExporter("").Render(testSnapshot())
	emailIdx := strings.Index(out, `pattern="email"`)
	uuidIdx := strings.Index(out, `pattern="uuid"`)
	if emailIdx == -1 || uuidIdx == -1 {
		t.Fatalf("expected both patterns present, got:\n%s", out)
	}
	if emailIdx > uuidIdx {
		t.Fatal("expected patterns in sorted order (email before uuid)")
	}
}

func TestEscapeLabelValue(t *testing.T) {
	got := escapeLabelValue(`has "quotes" and \backslash\ and` + "\nnewline")
	want := `has \"quotes\" and \\backslash\\ and` + `\n` + `newline`
	if got != want {
		t.Fatalf("escapeLabelValue mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestRenderDeterministicAcrossCalls(t *testing.T) {
	e := NewExporter("s1")
	snap := testSnapshot()
	first := e.Render(snap)
	second := e.Render(snap)
	if first != second {
		t.Fatal("expected identical output across repeated renders of the same snapshot")
	}
}
