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

package storage

import "testing"

func TestNewDefaultsToInMemory(t *testing.T) {
	s, err := New("", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*InMemoryStore); !ok {
		t.Fatalf("expected *InMemoryStore, got %T", s)
	}
}

func TestNewRedisRequiresAddr(t *testing.T) {
	if _, err := New("redis", Options{}); err == nil {
		t.Fatal("expected error when RedisAddr is empty")
	}
}

func TestNewRedisBuildsStore(t *testing.T) {
	s, err := New("redis", Options{RedisAddr: "localhost:6379"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*RedisStore); !ok {
		t.Fatalf("expected *RedisStore, got %T", s)
	}
}

func TestNewRejectsUnenabledAdapters(t *testing.T) {
	for _, adapter := range []string{"kafka", "postgres", "bogus"} {
		if _, err := New(adapter, Options{}); err == nil {
			t.Fatalf("expected error for adapter %q", adapter)
		}
	}
}
