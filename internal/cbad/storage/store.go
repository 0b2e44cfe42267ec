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

// Package storage persists anomalous detections for cross-stream
// correlation queries. Two backends are provided: an in-memory store for
// tests and single-process deployments, and a Redis-backed store for
// anything that needs to survive a restart or be shared across processes.
package storage

import (
	"time"

	"github.com/shannon-labs/cbad/internal/cbad/stream"
)

// Store is the full persistence contract: record anomalies as they are
// detected, and query them back by time for correlation.
type Store interface {
	stream.AnomalyRecorder
	stream.Correlator
}

// Filter describes a time-and-stream query. No Store method accepts it:
// Query takes only a since time and returns records from every stream.
type Filter struct {
	Since  time.Time
	Stream string
}
