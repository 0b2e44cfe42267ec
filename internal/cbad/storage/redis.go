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
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shannon-labs/cbad/internal/cbad/cbaderr"
	"github.com/shannon-labs/cbad/internal/cbad/detector"
	"github.com/shannon-labs/cbad/internal/cbad/stream"
)

// RedisEvaler abstracts the minimal surface needed from a Redis client so
// tests can substitute a fake without a live server. *goredis.Client and
// *goredis.ClusterClient both satisfy it as-is.
type RedisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *goredis.Cmd
	ZRangeByScore(ctx context.Context, key string, opt *goredis.ZRangeBy) *goredis.StringSliceCmd
}

// redisRecordScript idempotently records one detection: SETNX a marker
// keyed by detection id, and only on the first write does it push the
// JSON payload onto the stream's sorted set, scored by Unix nanoseconds
// so range queries by time are a simple ZRANGEBYSCORE.
const redisRecordScript = `
local markerKey = KEYS[1]
local zsetKey = KEYS[2]
local payload = ARGV[1]
local score = tonumber(ARGV[2])
local ttlSeconds = tonumber(ARGV[3])
local set = redis.call('SETNX', markerKey, 1)
if set == 1 then
  redis.call('ZADD', zsetKey, score, payload)
  if ttlSeconds and ttlSeconds > 0 then
    redis.call('EXPIRE', markerKey, ttlSeconds)
  end
  return 1
else
  return 0
end
`

const redisAllStreamsKey = "cbad:anomalies:all"

// markerTTL bounds the lifetime of idempotency markers; it must exceed
// any plausible retry window for a single detection id.
const markerTTL = 24 * time.Hour

// RedisStore persists recorded anomalies into Redis, using a Lua script
// to make duplicate Record calls for the same detection id a no-op.
type RedisStore struct {
	client RedisEvaler
}

// NewRedisStore builds a store over client, typically a *goredis.Client
// pointed at the deployment's Redis instance.
func NewRedisStore(client RedisEvaler) *RedisStore {
	return &RedisStore{client: client}
}

func markerKey(streamName, id string) string {
	return fmt.Sprintf("cbad:marker:%s:%s", streamName, id)
}

// Record writes det under streamName's sorted set and the global index,
// idempotently keyed by det.ID.
func (s *RedisStore) Record(streamName string, det detector.Detection) error {
	payload, err := json.Marshal(recordEnvelope{Stream: streamName, Detection: det})
	if err != nil {
		return cbaderr.Wrap(cbaderr.KindStateCorrupt, "marshal recorded anomaly", err)
	}

	ctx := context.Background()
	score := float64(det.ObservedAt.UnixNano())

	keys := []string{markerKey(streamName, det.ID), streamKey(streamName)}
	if _, err := s.client.Eval(ctx, redisRecordScript, keys, string(payload), fmt.Sprintf("%.0f", score), int(markerTTL.Seconds())).Result(); err != nil {
		return cbaderr.Wrap(cbaderr.KindCompressionFailed, "record anomaly to redis", err)
	}

	keysAll := []string{markerKey("__all__", det.ID), redisAllStreamsKey}
	if _, err := s.client.Eval(ctx, redisRecordScript, keysAll, string(payload), fmt.Sprintf("%.0f", score), int(markerTTL.Seconds())).Result(); err != nil {
		return cbaderr.Wrap(cbaderr.KindCompressionFailed, "record anomaly to global index", err)
	}
	return nil
}

func streamKey(streamName string) string {
	return fmt.Sprintf("cbad:anomalies:%s", streamName)
}

type recordEnvelope struct {
	Stream    string             `json:"stream"`
	Detection detector.Detection `json:"detection"`
}

// Query returns every anomaly recorded at or after since, across all
// streams, ordered oldest first (ZRANGEBYSCORE is score-ascending).
func (s *RedisStore) Query(since time.Time) ([]stream.RecordedAnomaly, error) {
	opt := &goredis.ZRangeBy{
		Min: fmt.Sprintf("%d", since.UnixNano()),
		Max: "+inf",
	}
	raw, err := s.client.ZRangeByScore(context.Background(), redisAllStreamsKey, opt).Result()
	if err != nil {
		return nil, cbaderr.Wrap(cbaderr.KindCompressionFailed, "query redis anomaly index", err)
	}

	out := make([]stream.RecordedAnomaly, 0, len(raw))
	for _, v := range raw {
		var env recordEnvelope
		if err := json.Unmarshal([]byte(v), &env); err != nil {
			return nil, cbaderr.Wrap(cbaderr.KindStateCorrupt, "unmarshal recorded anomaly", err)
		}
		out = append(out, stream.RecordedAnomaly{Stream: env.Stream, Detection: env.Detection})
	}
	return out, nil
}
