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

// Package main provides the entry point for cbaddetect, the compression-
// based anomaly detection service.
//
// This file orchestrates three subcommands:
//   - detect:         loads a JSON stream configuration and serves the HTTP
//                      API until terminated.
//   - bench:          runs a synthetic dataset through a detector and
//                      prints a detection summary, no HTTP server involved.
//   - export-metrics: fetches a running instance's text metrics endpoint
//                      and prints it to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shannon-labs/cbad/internal/cbad/api"
	"github.com/shannon-labs/cbad/internal/cbad/cbaderr"
	"github.com/shannon-labs/cbad/internal/cbad/decision"
	"github.com/shannon-labs/cbad/internal/cbad/detector"
	"github.com/shannon-labs/cbad/internal/cbad/storage"
	"github.com/shannon-labs/cbad/internal/cbad/stream"
	"github.com/shannon-labs/cbad/internal/cbad/synth"
	"github.com/shannon-labs/cbad/internal/cbad/telemetry"
	"github.com/shannon-labs/cbad/internal/cbad/tokenizer"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: cbaddetect <detect|bench|export-metrics> [flags]")
		os.Exit(cbaderr.ExitCode(cbaderr.ErrInvalidConfig))
	}

	var err error
	switch os.Args[1] {
	case "detect":
		err = runDetect(os.Args[2:])
	case "bench":
		err = runBench(os.Args[2:])
	case "export-metrics":
		err = runExportMetrics(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", os.Args[1])
		os.Exit(cbaderr.ExitCode(cbaderr.ErrInvalidConfig))
	}

	os.Exit(cbaderr.ExitCode(err))
}

// fileConfig is the JSON document `detect --config PATH` loads: where to
// listen, which storage adapter backs cross-stream correlation, and the
// detector configuration for each stream to create up front.
type fileConfig struct {
	HTTPAddr  string            `json:"http_addr"`
	Storage   string            `json:"storage"`
	RedisAddr string            `json:"redis_addr"`
	Streams   []detector.Config `json:"streams"`
}

func runDetect(args []string) error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a JSON stream configuration file")
	if err := fs.Parse(args); err != nil {
		return cbaderr.Wrap(cbaderr.KindInvalidConfig, "parse flags", err)
	}
	if *configPath == "" {
		return cbaderr.New(cbaderr.KindInvalidConfig, "--config is required")
	}

	raw, err := os.ReadFile(*configPath)
	if err != nil {
		return cbaderr.Wrap(cbaderr.KindInvalidInput, "read config file", err)
	}
	var cfg fileConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cbaderr.Wrap(cbaderr.KindInvalidConfig, "parse config file", err)
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8085"
	}

	store, err := storage.New(cfg.Storage, storage.Options{RedisAddr: cfg.RedisAddr})
	if err != nil {
		return err
	}

	manager := stream.New(store)
	for _, streamCfg := range cfg.Streams {
		if err := manager.Create(streamCfg.Name, streamCfg); err != nil {
			return err
		}
	}

	var tok *tokenizer.Tokenizer
	if len(cfg.Streams) > 0 {
		if d, ok := manager.Get(cfg.Streams[0].Name); ok {
			tok = d.Tokenizer()
		}
	}
	counters := telemetry.New(tok)
	apiServer := api.NewServer(manager, counters)

	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("cbaddetect listening on %s (%d streams, storage=%s)\n", cfg.HTTPAddr, len(cfg.Streams), cfg.Storage)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v", cfg.HTTPAddr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	scenario := fs.String("scenario", "pattern_break", "synthetic scenario: volume_spike|random_noise|pattern_break|data_corruption|gradual_drift")
	normalCount := fs.Int("normal", 100, "number of baseline events to generate")
	anomalyCount := fs.Int("anomalies", 20, "number of anomalous events to generate")
	seed := fs.Uint64("seed", 42, "deterministic generation seed")
	if err := fs.Parse(args); err != nil {
		return cbaderr.Wrap(cbaderr.KindInvalidConfig, "parse flags", err)
	}

	kind, err := parseScenario(*scenario)
	if err != nil {
		return err
	}

	events, anomalyIdx := synth.GenerateMixedDataset(*normalCount, *anomalyCount, kind, *seed)

	cfg := detector.Config{
		Name:            "bench",
		CompressionName: "gzip",
	}
	cfg.WindowConfig.BaselineSize = 20
	cfg.WindowConfig.WindowSize = 10
	cfg.WindowConfig.HopSize = 5
	cfg.WindowConfig.Capacity = len(events) + 1
	cfg.TokenizerConfig = tokenizer.DefaultConfig()
	cfg.DecisionConfig = decision.ForProfile(decision.ProfileBalanced)
	cfg.Seed = *seed
	cfg.CalibrationMinN = 20

	d, err := detector.New(cfg)
	if err != nil {
		return err
	}

	var flagged, truePositives int
	injected := make(map[int]bool, len(anomalyIdx))
	for _, idx := range anomalyIdx {
		injected[idx] = true
	}
	for i, ev := range events {
		det, err := d.Ingest(ev)
		if err != nil {
			return err
		}
		if det != nil && det.IsAnomaly {
			flagged++
			if injected[i] {
				truePositives++
			}
		}
	}

	fmt.Printf("scenario=%s events=%d injected=%d flagged=%d true_positives=%d\n",
		kind, len(events), len(anomalyIdx), flagged, truePositives)
	return nil
}

func parseScenario(name string) (synth.AnomalyType, error) {
	switch name {
	case "volume_spike":
		return synth.VolumeSpike, nil
	case "random_noise":
		return synth.RandomNoise, nil
	case "pattern_break":
		return synth.PatternBreak, nil
	case "data_corruption":
		return synth.DataCorruption, nil
	case "gradual_drift":
		return synth.GradualDrift, nil
	default:
		return 0, cbaderr.New(cbaderr.KindInvalidConfig, "unknown scenario: "+name)
	}
}

func runExportMetrics(args []string) error {
	fs := flag.NewFlagSet("export-metrics", flag.ExitOnError)
	url := fs.String("url", "http://localhost:8085/metrics", "metrics endpoint to fetch")
	if err := fs.Parse(args); err != nil {
		return cbaderr.Wrap(cbaderr.KindInvalidConfig, "parse flags", err)
	}

	resp, err := http.Get(*url)
	if err != nil {
		return cbaderr.Wrap(cbaderr.KindResourceExhausted, "fetch metrics", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cbaderr.Wrap(cbaderr.KindInvalidInput, "read metrics response", err)
	}
	fmt.Print(string(body))
	return nil
}
