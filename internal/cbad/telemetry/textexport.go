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

package telemetry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Exporter renders a Snapshot in the Prometheus text exposition format
// without depending on the client library: one write* function per metric
// family, sorted label keys for deterministic output across calls.
type Exporter struct {
	streamLabel string
}

// NewExporter builds an Exporter. streamLabel, if non-empty, is attached as
// a `stream` label to every series, letting per-detector exporters be
// distinguished when scraped through a shared endpoint.
func NewExporter(streamLabel string) *Exporter {
	return &Exporter{streamLabel: streamLabel}
}

// Render writes s as Prometheus text format (one family per counter, plus
// one counter series per nonzero tokenizer pattern).
func (e *Exporter) Render(s Snapshot) string {
	var sb strings.Builder

	e.writeCounter(&sb, "cbad_events_processed_total", "Total events ingested", float64(s.EventsProcessed))
	e.writeCounter(&sb, "cbad_anomalies_detected_total", "Total detection cycles that flagged an anomaly", float64(s.AnomaliesDetected))
	e.writeCounter(&sb, "cbad_detection_cycles_total", "Total detection cycles run", float64(s.DetectionCycles))
	e.writeCounter(&sb, "cbad_cumulative_latency_nanoseconds_total", "Cumulative wall-clock time spent in detection cycles", float64(s.CumulativeLatency))
	e.writeCounter(&sb, "cbad_bytes_saved_total", "Cumulative bytes elided by compression ratio savings", float64(s.BytesSaved))
	e.writeCounter(&sb, "cbad_tokenizer_bytes_saved_total", "Cumulative bytes elided by tokenizer normalisation", float64(s.TokenizerBytesSaved))

	e.writeTokenizerMatches(&sb, s.TokenizerMatches)

	return sb.String()
}

func (e *Exporter) writeCounter(sb *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(sb, "# HELP %s %s\n", name, help)
	fmt.Fprintf(sb, "# TYPE %s counter\n", name)
	fmt.Fprintf(sb, "%s%s %s\n", name, e.labelSuffix(nil), formatFloat(value))
}

func (e *Exporter) writeTokenizerMatches(sb *strings.Builder, matches map[string]uint64) {
	const name = "cbad_tokenizer_matches_total"
	fmt.Fprintf(sb, "# HELP %s Total matches per tokenizer pattern\n", name)
	fmt.Fprintf(sb, "# TYPE %s counter\n", name)

	patterns := make([]string, 0, len(matches))
	for p := range matches {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	for _, p := range patterns {
		fmt.Fprintf(sb, "%s%s %s\n", name, e.labelSuffix(map[string]string{"pattern": p}), formatFloat(float64(matches[p])))
	}
}

// labelSuffix renders a `{k="v",...}` label set with keys in sorted order,
// folding in the exporter's stream label if set. Returns "" when there are
// no labels at all, matching the bare-metric-name convention.
func (e *Exporter) labelSuffix(extra map[string]string) string {
	labels := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		labels[k] = v
	}
	if e.streamLabel != "" {
		labels["stream"] = e.streamLabel
	}
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(sb, "%s=\"%s\"", k, escapeLabelValue(labels[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}

// escapeLabelValue applies the Prometheus text-format escaping rules for
// label values: backslash, double quote, and newline.
func escapeLabelValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
