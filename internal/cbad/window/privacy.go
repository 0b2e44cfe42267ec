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

import "regexp"

const redactedSentinel = "[REDACTED]"

// PrivacyConfig names sensitive field names and regex patterns redacted
// before an event is tokenized and appended to the window.
type PrivacyConfig struct {
	FieldNames       []string
	Patterns         []*regexp.Regexp
	DropNonCompliant bool
}

// Redact applies field-name substring scanning, then regex redaction, to
// payload. It returns the redacted bytes and whether the event remains
// acceptable: false only when DropNonCompliant is set and a configured
// pattern still matches after redaction (which should not normally occur,
// since redaction itself removes matches, but is checked defensively for
// patterns that overlap the sentinel itself).
func Redact(cfg PrivacyConfig, payload []byte) ([]byte, bool) {
	out := payload
	for _, field := range cfg.FieldNames {
		out = redactField(out, field)
	}
	for _, pattern := range cfg.Patterns {
		out = pattern.ReplaceAll(out, []byte(redactedSentinel))
	}
	if cfg.DropNonCompliant {
		for _, pattern := range cfg.Patterns {
			if pattern.Match(out) {
				return out, false
			}
		}
	}
	return out, true
}

// redactField is a best-effort substring scan: it finds the first
// occurrence of `"field":` and replaces the value that immediately
// follows (quoted or unquoted, up to the next comma or closing brace)
// with the redaction sentinel. This is intentionally a fallback, not a
// structured parse — a caller with a known schema should redact before
// handing bytes to the window.
func redactField(payload []byte, field string) []byte {
	needle := []byte(`"` + field + `":`)
	idx := indexOf(payload, needle)
	if idx < 0 {
		return payload
	}
	valueStart := idx + len(needle)
	if valueStart >= len(payload) {
		return payload
	}

	var valueEnd int
	if payload[valueStart] == '"' {
		// Quoted value: replace up to the closing quote, handling simple
		// backslash escapes.
		end := valueStart + 1
		for end < len(payload) {
			if payload[end] == '\\' {
				end += 2
				continue
			}
			if payload[end] == '"' {
				break
			}
			end++
		}
		if end < len(payload) {
			end++ // include closing quote
		}
		valueEnd = end
		replacement := []byte(`"` + redactedSentinel + `"`)
		return spliceBytes(payload, valueStart, valueEnd, replacement)
	}

	// Unquoted value: replace up to the next comma, closing brace/bracket.
	end := valueStart
	for end < len(payload) && payload[end] != ',' && payload[end] != '}' && payload[end] != ']' {
		end++
	}
	valueEnd = end
	replacement := []byte(redactedSentinel)
	return spliceBytes(payload, valueStart, valueEnd, replacement)
}

func indexOf(haystack, needle []byte) int {
	n, m := len(haystack), len(needle)
	if m == 0 || m > n {
		return -1
	}
outer:
	for i := 0; i <= n-m; i++ {
		for j := 0; j < m; j++ {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

func spliceBytes(src []byte, start, end int, replacement []byte) []byte {
	out := make([]byte, 0, len(src)-(end-start)+len(replacement))
	out = append(out, src[:start]...)
	out = append(out, replacement...)
	out = append(out, src[end:]...)
	return out
}
