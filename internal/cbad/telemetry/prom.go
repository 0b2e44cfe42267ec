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
	"github.com/prometheus/client_golang/prometheus"
)

// PromCollector implements prometheus.Collector over a Counters instance,
// translating a Snapshot into first-class client_golang metric families on
// every scrape rather than duplicating the counters as a second set of
// atomics. Registering one of these lets a standard Prometheus server
// scrape /metrics/prom directly, alongside the hand-rolled Exporter.
type PromCollector struct {
	counters *Counters

	eventsProcessed   *prometheus.Desc
	anomaliesDetected *prometheus.Desc
	detectionCycles   *prometheus.Desc
	cumulativeLatency *prometheus.Desc
	bytesSaved        *prometheus.Desc
	tokenizerMatches  *prometheus.Desc
}

// NewPromCollector wraps counters for Prometheus registration.
func NewPromCollector(counters *Counters) *PromCollector {
	return &PromCollector{
		counters: counters,
		eventsProcessed: prometheus.NewDesc(
			"cbad_events_processed_total", "Total events ingested", nil, nil),
		anomaliesDetected: prometheus.NewDesc(
			"cbad_anomalies_detected_total", "Total detection cycles that flagged an anomaly", nil, nil),
		detectionCycles: prometheus.NewDesc(
			"cbad_detection_cycles_total", "Total detection cycles run", nil, nil),
		cumulativeLatency: prometheus.NewDesc(
			"cbad_cumulative_latency_nanoseconds_total", "Cumulative wall-clock time spent in detection cycles", nil, nil),
		bytesSaved: prometheus.NewDesc(
			"cbad_bytes_saved_total", "Cumulative bytes elided by compression and tokenizer savings", nil, nil),
		tokenizerMatches: prometheus.NewDesc(
			"cbad_tokenizer_matches_total", "Total matches per tokenizer pattern", []string{"pattern"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (p *PromCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.eventsProcessed
	ch <- p.anomaliesDetected
	ch <- p.detectionCycles
	ch <- p.cumulativeLatency
	ch <- p.bytesSaved
	ch <- p.tokenizerMatches
}

// Collect implements prometheus.Collector, reading a fresh Snapshot on
// every scrape so the exposed values never drift from the live counters.
func (p *PromCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.counters.Snapshot()

	ch <- prometheus.MustNewConstMetric(p.eventsProcessed, prometheus.CounterValue, float64(s.EventsProcessed))
	ch <- prometheus.MustNewConstMetric(p.anomaliesDetected, prometheus.CounterValue, float64(s.AnomaliesDetected))
	ch <- prometheus.MustNewConstMetric(p.detectionCycles, prometheus.CounterValue, float64(s.DetectionCycles))
	ch <- prometheus.MustNewConstMetric(p.cumulativeLatency, prometheus.CounterValue, float64(s.CumulativeLatency))
	ch <- prometheus.MustNewConstMetric(p.bytesSaved, prometheus.CounterValue, float64(s.BytesSaved)+float64(s.TokenizerBytesSaved))

	for pattern, n := range s.TokenizerMatches {
		ch <- prometheus.MustNewConstMetric(p.tokenizerMatches, prometheus.CounterValue, float64(n), pattern)
	}
}

// Registry builds a fresh prometheus.Registry holding just this collector,
// suitable for promhttp.HandlerFor rather than the global DefaultRegisterer
// so that multiple Counters instances (one per process) never collide.
func Registry(counters *Counters) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewPromCollector(counters))
	return reg
}
