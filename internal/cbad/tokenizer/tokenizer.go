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

// Package tokenizer normalises high-entropy fields so that identical
// structure with different random identifiers compresses similarly.
// Patterns are process-wide, compiled once, and applied in a fixed order:
// specific before general, so a UUID is never mistaken for a hash and a
// JWT is never mistaken for a base64 blob.
package tokenizer

import (
	"regexp"
	"sync/atomic"
)

var (
	reTimestamp = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?`)
	reJWT       = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\b`)
	reUUID      = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	reHash      = regexp.MustCompile(`(?i)\b[0-9a-f]{32,64}\b`)
	reCloud     = regexp.MustCompile(`\barn:[A-Za-z0-9:/_.+=,@-]+`)
	reEmail     = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	reURL       = regexp.MustCompile(`\bhttps?://[^\s"'<>]+`)
	reDomain    = regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}\b`)
	reIPv4      = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`)
	reIPv6      = regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){2,7}[0-9a-fA-F]{1,4}\b`)
	reBase64    = regexp.MustCompile(`\b[A-Za-z0-9+/]{20,}={0,2}\b`)
	reNum       = regexp.MustCompile(`\b\d{4,}\b`)
)

// Pattern identifies one of the twelve recognised normaliser steps, in
// application order.
type Pattern int

const (
	PatternJSONCanon Pattern = iota
	PatternTimestamp
	PatternJWT
	PatternUUID
	PatternHash
	PatternCloud
	PatternEmail
	PatternURL
	PatternDomain
	PatternIP
	PatternBase64
	PatternNumber
	patternCount
)

var patternNames = [patternCount]string{
	PatternJSONCanon: "json_canon",
	PatternTimestamp: "timestamp",
	PatternJWT:       "jwt",
	PatternUUID:      "uuid",
	PatternHash:      "hash",
	PatternCloud:     "cloud",
	PatternEmail:     "email",
	PatternURL:       "url",
	PatternDomain:    "domain",
	PatternIP:        "ip",
	PatternBase64:    "base64",
	PatternNumber:    "number",
}

// Config enables or disables each normaliser step independently. The zero
// value disables every step; DefaultConfig enables them all.
type Config struct {
	EnableJSONCanonicalization bool
	EnableTimestamp            bool
	EnableJWT                  bool
	EnableUUID                 bool
	EnableHash                 bool
	EnableCloud                bool
	EnableEmail                bool
	EnableURL                  bool
	EnableDomain               bool
	EnableIP                   bool
	EnableBase64               bool
	EnableNumber               bool
}

// DefaultConfig enables every normaliser step.
func DefaultConfig() Config {
	return Config{
		EnableJSONCanonicalization: true,
		EnableTimestamp:            true,
		EnableJWT:                  true,
		EnableUUID:                 true,
		EnableHash:                 true,
		EnableCloud:                true,
		EnableEmail:                true,
		EnableURL:                  true,
		EnableDomain:               true,
		EnableIP:                   true,
		EnableBase64:               true,
		EnableNumber:               true,
	}
}

func (c Config) anyEnabled() bool {
	return c.EnableJSONCanonicalization || c.EnableTimestamp || c.EnableJWT ||
		c.EnableUUID || c.EnableHash || c.EnableCloud || c.EnableEmail ||
		c.EnableURL || c.EnableDomain || c.EnableIP || c.EnableBase64 || c.EnableNumber
}

// Stats is a point-in-time read of the tokenizer's lock-free counters.
type Stats struct {
	MatchCounts [patternCount]uint64
	BytesSaved  uint64
}

// Tokenizer normalises byte payloads according to Config, returning the
// rewritten bytes rather than modifying its input. The compiled regexes are
// process-wide; the match counters are lock-free atomics owned by each
// Tokenizer instance and shared by every call on that instance.
type Tokenizer struct {
	cfg Config

	matchCounts [patternCount]atomic.Uint64
	bytesSaved  atomic.Uint64
}

// New builds a Tokenizer under cfg.
func New(cfg Config) *Tokenizer {
	return &Tokenizer{cfg: cfg}
}

// Tokenize applies the ordered pipeline. If no pattern is enabled, the
// input is returned unchanged (property 5: round-trip neutrality).
func (t *Tokenizer) Tokenize(input []byte) []byte {
	if !t.cfg.anyEnabled() {
		return input
	}

	before := len(input)
	out := input

	// The byte-level patterns below run over the canonicalised JSON, so
	// sentinels such as <UUID> can land inside quoted strings: the output
	// is not guaranteed to be valid JSON and is not re-parsed.
	if t.cfg.EnableJSONCanonicalization {
		if canon, ok := canonicalizeJSON(out); ok {
			out = canon
		}
	}
	out = t.apply(PatternTimestamp, t.cfg.EnableTimestamp, reTimestamp, out, "<TS>")
	out = t.apply(PatternJWT, t.cfg.EnableJWT, reJWT, out, "<JWT>")
	out = t.apply(PatternUUID, t.cfg.EnableUUID, reUUID, out, "<UUID>")
	out = t.apply(PatternHash, t.cfg.EnableHash, reHash, out, "<HASH>")
	out = t.apply(PatternCloud, t.cfg.EnableCloud, reCloud, out, "<CLOUD>")
	out = t.apply(PatternEmail, t.cfg.EnableEmail, reEmail, out, "<EMAIL>")
	out = t.apply(PatternURL, t.cfg.EnableURL, reURL, out, "<URL>")
	out = t.apply(PatternDomain, t.cfg.EnableDomain, reDomain, out, "<DOMAIN>")
	out = t.apply(PatternIP, t.cfg.EnableIP, reIPv4, out, "<IP>")
	out = t.apply(PatternIP, t.cfg.EnableIP, reIPv6, out, "<IP>")
	out = t.apply(PatternBase64, t.cfg.EnableBase64, reBase64, out, "<B64>")
	out = t.apply(PatternNumber, t.cfg.EnableNumber, reNum, out, "<NUM>")

	if len(out) < before {
		t.bytesSaved.Add(uint64(before - len(out)))
	}
	return out
}

func (t *Tokenizer) apply(p Pattern, enabled bool, re *regexp.Regexp, input []byte, token string) []byte {
	if !enabled {
		return input
	}
	matches := re.FindAll(input, -1)
	if len(matches) == 0 {
		return input
	}
	t.matchCounts[p].Add(uint64(len(matches)))
	return re.ReplaceAll(input, []byte(token))
}

// Stats returns a snapshot of the tokenizer's counters.
func (t *Tokenizer) Stats() Stats {
	var s Stats
	for i := range t.matchCounts {
		s.MatchCounts[i] = t.matchCounts[i].Load()
	}
	s.BytesSaved = t.bytesSaved.Load()
	return s
}

// PatternName returns the canonical name for a Pattern, used by
// observability exports.
func PatternName(p Pattern) string {
	if p < 0 || int(p) >= len(patternNames) {
		return "unknown"
	}
	return patternNames[p]
}
