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

package window

import (
	"bytes"
	"fmt"
	"regexp"
	"testing"
	"time"
)

func pushN(w *Window, n int) {
	for i := 0; i < n; i++ {
		w.Add(Event{Payload: []byte(fmt.Sprintf("event-%d", i)), ObservedAt: time.Unix(int64(i), 0)})
	}
}

func TestInsufficientData(t *testing.T) {
	w := New(Config{BaselineSize: 50, WindowSize: 20, HopSize: 5, Capacity: 1000})
	pushN(w, 5)
	if w.Ready() {
		t.Fatal("expected Ready() = false with only 5 events")
	}
	_, _, ok := w.BaselineAndWindow()
	if ok {
		t.Fatal("expected BaselineAndWindow to report not ready")
	}
	if w.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", w.Len())
	}
}

func TestTailAlignmentOnFirstReady(t *testing.T) {
	w := New(Config{BaselineSize: 10, WindowSize: 5, HopSize: 2, Capacity: 1000})
	pushN(w, 14)
	if w.Ready() {
		t.Fatal("expected not ready at 14 events (need 15)")
	}
	pushN(w, 1) // 15th event reaches baseline+window
	if !w.Ready() {
		t.Fatal("expected ready at 15 events")
	}
	if w.WindowStart() != 15-5 {
		t.Fatalf("WindowStart() = %d, want %d", w.WindowStart(), 15-5)
	}
	if w.BaselineStart() != w.WindowStart()-10 {
		t.Fatalf("BaselineStart() = %d, want %d", w.BaselineStart(), w.WindowStart()-10)
	}
}

func TestHopAdvance(t *testing.T) {
	w := New(Config{BaselineSize: 10, WindowSize: 5, HopSize: 2, Capacity: 1000})
	pushN(w, 20)
	if !w.Ready() {
		t.Fatal("expected ready")
	}
	_, win1, _ := w.BaselineAndWindow()
	firstStart := w.WindowStart()
	w.AdvanceAfterAnalysis()
	_, win2, _ := w.BaselineAndWindow()
	if bytes.Equal(win1, win2) {
		t.Fatal("expected window bytes to change after hop advance")
	}
	wantStart := firstStart + 2
	maxStart := w.Len() - 5
	if wantStart > maxStart {
		wantStart = maxStart
	}
	if w.WindowStart() != wantStart {
		t.Fatalf("WindowStart() after hop = %d, want %d", w.WindowStart(), wantStart)
	}
}

func TestWindowInvariantsAfterEviction(t *testing.T) {
	w := New(Config{BaselineSize: 5, WindowSize: 3, HopSize: 1, Capacity: 10})
	pushN(w, 30)
	if w.BaselineStart()+5 > w.WindowStart()+3 {
		t.Fatalf("invariant violated: baseline_start+baseline_size > window_start+window_size")
	}
	if w.WindowStart()+3 > w.Len() {
		t.Fatalf("invariant violated: window_start+window_size > len(events)")
	}
	if w.Len() > 10 {
		t.Fatalf("invariant violated: len(events) > capacity, got %d", w.Len())
	}
}

func TestSnapshotRestore(t *testing.T) {
	w := New(Config{BaselineSize: 4, WindowSize: 2, HopSize: 1, Capacity: 100})
	pushN(w, 10)
	snap := w.Snapshot()

	restored := New(Config{BaselineSize: 4, WindowSize: 2, HopSize: 1, Capacity: 100})
	restored.Restore(snap)

	if restored.Len() != w.Len() {
		t.Fatalf("Len mismatch after restore: %d vs %d", restored.Len(), w.Len())
	}
	if restored.TotalEvents() != w.TotalEvents() {
		t.Fatalf("TotalEvents mismatch after restore")
	}
	if restored.Aligned() != w.Aligned() {
		t.Fatalf("Aligned mismatch after restore")
	}
	if restored.BaselineStart() != w.BaselineStart() || restored.WindowStart() != w.WindowStart() {
		t.Fatalf("position mismatch after restore")
	}
}

func TestPrivacyRedactionFieldValue(t *testing.T) {
	payload := []byte(`{"user":"alice@example.com","action":"login"}`)
	out, ok := Redact(PrivacyConfig{FieldNames: []string{"user"}}, payload)
	if !ok {
		t.Fatal("expected event to remain accepted")
	}
	if bytes.Contains(out, []byte("alice@example.com")) {
		t.Fatalf("expected field value redacted, got %q", out)
	}
	if !bytes.Contains(out, []byte(redactedSentinel)) {
		t.Fatalf("expected sentinel present, got %q", out)
	}
}

func TestPrivacyRedactionPatternRemovesMatch(t *testing.T) {
	payload := []byte(`ssn=123-45-6789`)
	cfg := PrivacyConfig{
		Patterns:         []*regexp.Regexp{regexp.MustCompile(`\d{3}-\d{2}-\d{4}`)},
		DropNonCompliant: true,
	}
	out, ok := Redact(cfg, payload)
	if !ok {
		t.Fatal("expected event accepted once the offending pattern is redacted away")
	}
	if bytes.Contains(out, []byte("123-45-6789")) {
		t.Fatalf("expected SSN redacted, got %q", out)
	}
}
