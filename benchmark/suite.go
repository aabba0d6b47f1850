package benchmark

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/inference/detectors"
	"github.com/nvr-ai/go-detect/models/model"
)

// framePool is the number of distinct synthetic frames cycled per scenario.
const framePool = 8

// Suite manages and executes benchmark scenarios
type Suite struct {
	base      detectors.Config
	outputDir string
	logger    *zap.Logger

	mu        sync.RWMutex
	scenarios []Scenario
	results   []PerformanceMetrics
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - base: Thresholds shared by every scenario; Model and NMSWorkers are
//     overridden per scenario.
//   - outputDir: Where SaveResults writes; empty skips saving.
//   - logger: Optional; nil disables logging.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(base detectors.Config, outputDir string, logger *zap.Logger) *Suite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suite{
		base:      base,
		outputDir: outputDir,
		logger:    logger,
	}
}

// AddScenario adds a scenario to the suite.
func (s *Suite) AddScenario(scenario Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios = append(s.scenarios, scenario)
}

// RunScenario executes a single scenario.
func (s *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if scenario.Candidates <= 0 || scenario.Iterations <= 0 {
		return nil, errors.Errorf("scenario %s needs positive candidates and iterations", scenario.Name)
	}

	cfg := s.base
	cfg.NMSWorkers = scenario.NMSWorkers
	if scenario.Model != "" {
		cfg.Model = string(scenario.Model)
		cfg.Layout = ""
	}
	spec, err := resolveSpec(cfg)
	if err != nil {
		return nil, err
	}

	detector, err := detectors.NewDetector(cfg, detectors.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(scenario.Seed))
	frames := make([]*tensor.Dense, min(framePool, scenario.Iterations))
	for i := range frames {
		frames[i] = Synthesize(rng, spec, scenario.Candidates, scenario.Density)
	}

	detect := func(i int) (int, error) {
		got, err := detector.DetectDense(ctx, frames[i%len(frames)], scenario.FrameWidth, scenario.FrameHeight)
		return len(got), err
	}

	for i := 0; i < scenario.WarmupRuns; i++ {
		if _, err := detect(i); err != nil {
			break
		}
	}

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}
	failures := 0
	start := time.Now()
	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := detect(i)
		if err != nil {
			failures++
			continue
		}
		metrics.DetectionCount += n
	}
	metrics.TotalDuration = time.Since(start)

	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	metrics.AverageLatency = metrics.TotalDuration / time.Duration(scenario.Iterations)
	if secs := metrics.TotalDuration.Seconds(); secs > 0 {
		metrics.FramesPerSecond = float64(scenario.Iterations) / secs
	}
	metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
	}

	return metrics, nil
}

// resolveSpec returns the tensor shape a detector configuration expects,
// covering custom heads that name a layout but no registered model.
func resolveSpec(cfg detectors.Config) (model.Spec, error) {
	opts, err := cfg.Options()
	if err != nil {
		return model.Spec{}, err
	}
	return model.Spec{
		Name:        model.Name(cfg.Model),
		Layout:      opts.Layout,
		NumClasses:  opts.NumClasses,
		InputWidth:  opts.NetworkWidth,
		InputHeight: opts.NetworkHeight,
	}, nil
}

// RunAllScenarios executes every scenario and saves the results.
func (s *Suite) RunAllScenarios(ctx context.Context) error {
	s.mu.RLock()
	scenarios := make([]Scenario, len(s.scenarios))
	copy(scenarios, s.scenarios)
	s.mu.RUnlock()

	for _, scenario := range scenarios {
		metrics, err := s.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("scenario failed", zap.String("scenario", scenario.Name), zap.Error(err))
			continue
		}

		s.mu.Lock()
		s.results = append(s.results, *metrics)
		s.mu.Unlock()

		s.logger.Info("scenario completed",
			zap.String("scenario", scenario.Name),
			zap.Float64("fps", metrics.FramesPerSecond),
			zap.Duration("average_latency", metrics.AverageLatency),
			zap.Int("detections", metrics.DetectionCount))
	}

	if s.outputDir == "" {
		return nil
	}
	return s.SaveResults()
}

// GetResults returns all results so far.
func (s *Suite) GetResults() []PerformanceMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]PerformanceMetrics, len(s.results))
	copy(results, s.results)
	return results
}

// SaveResults writes the results as JSON and a CSV summary.
func (s *Suite) SaveResults() error {
	results := s.GetResults()

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(s.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write results file")
	}

	summaryFile := filepath.Join(s.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return errors.Wrap(err, "failed to save summary CSV")
	}

	s.logger.Info("results saved", zap.String("results", resultsFile), zap.String("summary", summaryFile))
	return nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{
		"scenario", "model", "candidates", "density", "nms_workers",
		"fps", "avg_latency_us", "detections", "error_rate",
	}); err != nil {
		return err
	}
	for _, r := range results {
		if err := w.Write([]string{
			r.Scenario.Name,
			string(r.Scenario.Model),
			strconv.Itoa(r.Scenario.Candidates),
			strconv.FormatFloat(r.Scenario.Density, 'f', 4, 64),
			strconv.Itoa(r.Scenario.NMSWorkers),
			strconv.FormatFloat(r.FramesPerSecond, 'f', 2, 64),
			strconv.FormatInt(r.AverageLatency.Microseconds(), 10),
			strconv.Itoa(r.DetectionCount),
			strconv.FormatFloat(r.ErrorRate, 'f', 4, 64),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
