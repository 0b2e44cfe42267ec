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

import "sync"

// ThreadSafe wraps a Window behind a single exclusive lock. Each method
// holds the lock for that one call only; a caller that needs a whole
// detection cycle (add, read baseline/window, advance) to be atomic holds
// its own lock around it, as detector.Detector does, or uses Lock/Raw/
// Unlock.
type ThreadSafe struct {
	mu sync.Mutex
	w  *Window
}

// NewThreadSafe builds a lock-guarded window under cfg.
func NewThreadSafe(cfg Config) *ThreadSafe {
	return &ThreadSafe{w: New(cfg)}
}

func (t *ThreadSafe) Add(e Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Add(e)
}

func (t *ThreadSafe) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Ready()
}

func (t *ThreadSafe) BaselineAndWindow() ([]byte, []byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.BaselineAndWindow()
}

func (t *ThreadSafe) AdvanceAfterAnalysis() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w.AdvanceAfterAnalysis()
}

func (t *ThreadSafe) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Snapshot()
}

func (t *ThreadSafe) Restore(s Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w.Restore(s)
}

// Lock/Unlock expose the guard directly for callers that need to hold it
// across a whole cycle spanning multiple window calls plus metrics
// computation.
func (t *ThreadSafe) Lock()   { t.mu.Lock() }
func (t *ThreadSafe) Unlock() { t.mu.Unlock() }

// Raw returns the underlying Window for use while the caller already
// holds the lock via Lock/Unlock.
func (t *ThreadSafe) Raw() *Window { return t.w }
