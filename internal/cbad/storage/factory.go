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
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shannon-labs/cbad/internal/cbad/cbaderr"
)

// Options carries the adapter-specific settings New needs to build a Store.
type Options struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New builds a Store from a string selector. Supported adapters:
//   - "", "memory": process-local InMemoryStore (default)
//   - "redis": RedisStore over a *goredis.Client dialed from opts.RedisAddr
//
// "kafka" and "postgres" are named explicitly (rather than falling into the
// default case) so operators get a clear "not enabled" message instead of
// an unrelated "unknown adapter" one; nothing in this package talks to a
// message broker or a SQL database.
func New(adapter string, opts Options) (Store, error) {
	switch adapter {
	case "", "memory":
		return NewInMemoryStore(), nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, cbaderr.New(cbaderr.KindInvalidConfig, "redis adapter requires RedisAddr")
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		return NewRedisStore(client), nil
	case "kafka":
		return nil, cbaderr.New(cbaderr.KindInvalidConfig, "kafka adapter is not enabled; anomaly records are range-queried by time, which a log-structured broker does not serve directly")
	case "postgres":
		return nil, cbaderr.New(cbaderr.KindInvalidConfig, "postgres adapter is not enabled; wire a real *sql.DB and table schema before enabling it")
	default:
		return nil, cbaderr.New(cbaderr.KindInvalidConfig, fmt.Sprintf("unknown storage adapter: %s", adapter))
	}
}
