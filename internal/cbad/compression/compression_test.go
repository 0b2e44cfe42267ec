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

package compression

import (
	"bytes"
	"testing"
)

func TestAdaptersRoundTrip(t *testing.T) {
	data := []byte("INFO svc=api msg=ok dur=42\n")
	data = bytes.Repeat(data, 50)

	for _, name := range []string{"zstd", "lz4", "gzip", "flate"} {
		t.Run(name, func(t *testing.T) {
			a, err := New(name)
			if err != nil {
				t.Fatalf("New(%q): %v", name, err)
			}
			compressed, err := a.Compress(data)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			decompressed, err := a.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(data, decompressed) {
				t.Fatalf("round trip mismatch for %s", name)
			}
			if a.Name() != name {
				t.Fatalf("Name() = %q, want %q", a.Name(), name)
			}
			if a.CompressBound(len(data)) <= 0 {
				t.Fatalf("CompressBound returned non-positive value")
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	for _, name := range []string{"zstd", "lz4", "gzip", "flate"} {
		a, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		out, err := a.Compress(nil)
		if err != nil {
			t.Fatalf("Compress(nil): %v", err)
		}
		if len(out) != 0 {
			t.Fatalf("%s: expected empty output for empty input, got %d bytes", name, len(out))
		}
	}
}

func TestUnknownAdapter(t *testing.T) {
	if _, err := New("bz2"); err == nil {
		t.Fatal("expected error for unknown adapter name")
	}
}

func TestDeterministic(t *testing.T) {
	data := []byte("repeatable content for determinism check")
	a, _ := New("zstd")
	c1, _ := a.Compress(data)
	c2, _ := a.Compress(data)
	if !bytes.Equal(c1, c2) {
		t.Fatal("expected identical compressed output for identical input")
	}
}
