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

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shannon-labs/cbad/internal/cbad/detector"
)

// fakeRedis is an in-process stand-in for a *goredis.Client: Eval applies
// the same script semantics directly in Go, and ZRangeByScore reads back
// from the same map, so RedisStore can be exercised without a live
// server.
type fakeRedis struct {
	markers map[string]bool
	zsets   map[string]map[string]float64
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{markers: make(map[string]bool), zsets: make(map[string]map[string]float64)}
}

func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *goredis.Cmd {
	cmd := goredis.NewCmd(ctx)
	markerKey, zsetKey := keys[0], keys[1]
	payload := args[0].(string)
	score := args[1].(string)

	if f.markers[markerKey] {
		cmd.SetVal(int64(0))
		return cmd
	}
	f.markers[markerKey] = true
	if f.zsets[zsetKey] == nil {
		f.zsets[zsetKey] = make(map[string]float64)
	}
	f.zsets[zsetKey][payload] = parseFloat(score)
	cmd.SetVal(int64(1))
	return cmd
}

func parseFloat(s string) float64 {
	var f float64
	var neg bool
	i := 0
	if len(s) > 0 && s[0] == '-' {
		neg = true
		i++
	}
	for ; i < len(s); i++ {
		f = f*10 + float64(s[i]-'0')
	}
	if neg {
		f = -f
	}
	return f
}

func (f *fakeRedis) ZRangeByScore(ctx context.Context, key string, opt *goredis.ZRangeBy) *goredis.StringSliceCmd {
	cmd := goredis.NewStringSliceCmd(ctx)
	min := parseFloat(opt.Min)
	var out []string
	for payload, score := range f.zsets[key] {
		if score >= min {
			out = append(out, payload)
		}
	}
	cmd.SetVal(out)
	return cmd
}

func TestRedisStoreRecordIsIdempotent(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisStore(client)

	det := detector.Detection{ID: "s1-1", IsAnomaly: true, ObservedAt: time.Unix(0, 1000)}
	if err := store.Record("s1", det); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Record("s1", det); err != nil {
		t.Fatalf("unexpected error on duplicate record: %v", err)
	}

	results, err := store.Query(time.Unix(0, 0))
	if err != nil {
		t.Fatalf("unexpected error querying: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected duplicate record to be a no-op, got %d entries", len(results))
	}
}

func TestRedisStoreQueryFiltersBySince(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisStore(client)

	early := detector.Detection{ID: "s1-1", ObservedAt: time.Unix(0, 1000)}
	late := detector.Detection{ID: "s1-2", ObservedAt: time.Unix(0, 5000)}
	store.Record("s1", early)
	store.Record("s1", late)

	results, err := store.Query(time.Unix(0, 4000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Detection.ID != "s1-2" {
		t.Fatalf("expected only the late detection, got %+v", results)
	}
}
