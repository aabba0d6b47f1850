package benchmark

import (
	"fmt"

	"github.com/nvr-ai/go-detect/models/model"
)

// Scenario defines one benchmark run.
type Scenario struct {
	Name string `json:"name"`
	// Model selects the registered layout and class count. Empty uses the
	// suite's detector configuration as is.
	Model model.Name `json:"model"`
	// Candidates is the number of rows per frame, e.g. 8400 for YOLOv8 at 640.
	Candidates int `json:"candidates"`
	// Density is the fraction of rows scoring above the thresholds.
	Density float64 `json:"density"`
	// FrameWidth and FrameHeight are the source frame size.
	FrameWidth  int `json:"frame_width"`
	FrameHeight int `json:"frame_height"`
	// NMSWorkers is passed through to the detector.
	NMSWorkers int `json:"nms_workers"`
	Iterations int `json:"iterations"`
	WarmupRuns int `json:"warmup_runs"`
	// Seed makes the synthetic frames reproducible.
	Seed int64 `json:"seed"`
}

// ScenarioBuilder helps build scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a scenario with 1080p frames, 100 iterations and
// 10 warmup runs.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:        name,
			Model:       model.ModelNameYOLOv8,
			Candidates:  8400,
			Density:     0.01,
			FrameWidth:  1920,
			FrameHeight: 1080,
			Iterations:  100,
			WarmupRuns:  10,
			Seed:        1,
		},
	}
}

// WithModel sets the model family.
func (sb *ScenarioBuilder) WithModel(name model.Name) *ScenarioBuilder {
	sb.scenario.Model = name
	return sb
}

// WithCandidates sets the number of rows per frame and the fraction that
// survive the thresholds.
func (sb *ScenarioBuilder) WithCandidates(candidates int, density float64) *ScenarioBuilder {
	sb.scenario.Candidates = candidates
	sb.scenario.Density = density
	return sb
}

// WithFrame sets the source frame size.
func (sb *ScenarioBuilder) WithFrame(width, height int) *ScenarioBuilder {
	sb.scenario.FrameWidth = width
	sb.scenario.FrameHeight = height
	return sb
}

// WithNMSWorkers sets the NMS worker count.
func (sb *ScenarioBuilder) WithNMSWorkers(workers int) *ScenarioBuilder {
	sb.scenario.NMSWorkers = workers
	return sb
}

// WithIterations sets the number of timed iterations.
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of untimed iterations.
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured scenario.
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// DefaultScenarios returns one scenario per density and worker count for the
// given model. An empty name benchmarks the suite's own configuration.
func DefaultScenarios(name model.Name, candidates, iterations int) []Scenario {
	label := string(name)
	if label == "" {
		label = "custom"
	}
	densities := []float64{0.001, 0.01, 0.05}
	scenarios := make([]Scenario, 0, 2*len(densities))
	for _, density := range densities {
		for _, workers := range []int{0, 4} {
			scenarios = append(scenarios, NewScenarioBuilder(
				fmt.Sprintf("%s_%d_d%.3f_w%d", label, candidates, density, workers)).
				WithModel(name).
				WithCandidates(candidates, density).
				WithNMSWorkers(workers).
				WithIterations(iterations).
				Build())
		}
	}
	return scenarios
}
