package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/benchmark"
	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/util"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to YAML configuration file")
		outputDir  = flag.String("output", "./benchmark_results", "Output directory for results")
		candidates = flag.Int("candidates", 8400, "Rows per synthetic frame")
		frames     = flag.Int("frames", 200, "Timed frames per scenario")
		density    = flag.Float64("density", -1, "Fraction of rows above threshold; negative runs the default sweep")
		workers    = flag.Int("workers", 0, "NMS workers for a single-density run")
		timeout    = flag.Duration("timeout", 10*time.Minute, "Benchmark timeout duration")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Log.Debug)
	defer logger.Sync() //nolint:errcheck

	name := model.Name(cfg.Detector.Model)
	label := string(name)
	if label == "" {
		label = "custom_" + cfg.Detector.Layout
	}

	suite := benchmark.NewSuite(cfg.Detector, *outputDir, logger)
	if *density < 0 {
		for _, s := range benchmark.DefaultScenarios(name, *candidates, *frames) {
			suite.AddScenario(s)
		}
	} else {
		suite.AddScenario(benchmark.NewScenarioBuilder(fmt.Sprintf("%s_%d", label, *candidates)).
			WithModel(name).
			WithCandidates(*candidates, *density).
			WithNMSWorkers(*workers).
			WithIterations(*frames).
			Build())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	if err := suite.RunAllScenarios(ctx); err != nil {
		logger.Fatal("benchmark execution failed", zap.Error(err))
	}

	var best benchmark.PerformanceMetrics
	for _, r := range suite.GetResults() {
		if r.FramesPerSecond > best.FramesPerSecond {
			best = r
		}
	}
	logger.Info("benchmark completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("scenarios", len(suite.GetResults())),
		zap.String("best_scenario", best.Scenario.Name),
		zap.Float64("best_fps", best.FramesPerSecond))
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Decoding and suppression throughput over synthetic detection-head output.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -config ./detect.yaml\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  DETECT_DETECTOR_MODEL=yolov5 %s -candidates 25200 -density 0.01 -workers 4\n",
			filepath.Base(os.Args[0]))
	}
}
