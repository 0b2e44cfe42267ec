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

// Package api implements the public-facing HTTP surface over a stream
// manager: ingesting events, managing streams, recording feedback, and
// exposing both metrics formats.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shannon-labs/cbad/internal/cbad/cbaderr"
	"github.com/shannon-labs/cbad/internal/cbad/detector"
	"github.com/shannon-labs/cbad/internal/cbad/stream"
	"github.com/shannon-labs/cbad/internal/cbad/telemetry"
)

// Server handles the HTTP requests for the detection service.
type Server struct {
	manager  *stream.Manager
	counters *telemetry.Counters
	exporter *telemetry.Exporter
	promReg  http.Handler
}

// NewServer builds a Server over an existing stream manager and counters,
// wiring counters into the manager so every ingest the manager routes
// updates the same atomics this server exposes on /metrics and
// /metrics/prom.
func NewServer(manager *stream.Manager, counters *telemetry.Counters) *Server {
	manager.SetCounters(counters)
	reg := telemetry.Registry(counters)
	return &Server{
		manager:  manager,
		counters: counters,
		exporter: telemetry.NewExporter(""),
		promReg:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
}

// RegisterRoutes wires every handler onto mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/streams", s.handleStreams)
	mux.HandleFunc("/streams/", s.handleStreamByName)
	mux.HandleFunc("/feedback", s.handleFeedback)
	mux.HandleFunc("/correlate", s.handleCorrelate)
	mux.HandleFunc("/metrics", s.handleTextMetrics)
	mux.Handle("/metrics/prom", s.promReg)
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return httpServer.ListenAndServe()
}

type ingestRequest struct {
	Stream  string `json:"stream"`
	Payload []byte `json:"payload"`
}

type ingestResponse struct {
	Ready     bool                `json:"ready"`
	Detection *detector.Detection `json:"detection,omitempty"`
}

// handleIngest routes POST /ingest {stream, payload} onto the named stream.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Stream == "" {
		http.Error(w, "stream is required", http.StatusBadRequest)
		return
	}

	det, err := s.manager.Ingest(req.Stream, req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Ready: det != nil, Detection: det})
}

// handleStreams routes GET /streams (list) and POST /streams (create).
func (s *Server) handleStreams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.manager.List())
	case http.MethodPost:
		var cfg detector.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if cfg.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		if err := s.manager.Create(cfg.Name, cfg); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleStreamByName routes DELETE /streams/{name}.
func (s *Server) handleStreamByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/streams/")
	if name == "" {
		http.Error(w, "stream name is required", http.StatusBadRequest)
		return
	}
	if !s.manager.Remove(name) {
		http.Error(w, "unknown stream", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type feedbackRequest struct {
	Stream          string `json:"stream"`
	DetectionID     string `json:"detection_id"`
	Confirm         bool   `json:"confirm"`
	FalsePositive   bool   `json:"false_positive"`
}

// handleFeedback routes POST /feedback {stream, detection_id, confirm|false_positive}.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	det, ok := s.manager.Get(req.Stream)
	if !ok {
		http.Error(w, "unknown stream", http.StatusNotFound)
		return
	}

	var err error
	switch {
	case req.Confirm:
		err = det.Confirm(req.DetectionID)
	case req.FalsePositive:
		err = det.FalsePositive(req.DetectionID)
	default:
		http.Error(w, "confirm or false_positive must be set", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCorrelate routes GET /correlate?window=5m over the manager's
// recorder, when the recorder also implements stream.Correlator.
func (s *Server) handleCorrelate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	windowParam := r.URL.Query().Get("window")
	d, err := time.ParseDuration(windowParam)
	if err != nil || d <= 0 {
		d = 5 * time.Minute
	}

	correlator, ok := s.manager.Recorder().(stream.Correlator)
	if !ok {
		http.Error(w, "correlation requires a store that supports Query", http.StatusNotImplemented)
		return
	}
	cw, err := stream.Correlate(correlator, d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cw)
}

// handleTextMetrics serves the hand-rolled exposition format.
func (s *Server) handleTextMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(s.exporter.Render(s.counters.Snapshot())))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), cbaderr.HTTPStatus(err))
}
