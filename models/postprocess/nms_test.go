package postprocess

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
)

func box(x1, y1, x2, y2, conf float32, class, index int) ScaledBox {
	return ScaledBox{
		Box:        images.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2},
		Confidence: conf,
		ClassID:    class,
		Index:      index,
	}
}

func TestApplyGreedyNMS(t *testing.T) {
	tests := []struct {
		name     string
		boxes    []ScaledBox
		config   NMSConfig
		expected []float32 // confidences of kept boxes, in order
	}{
		{
			name: "overlapping duplicates keep the best",
			boxes: []ScaledBox{
				box(0, 0, 100, 100, 0.8, 0, 0),
				box(1, 1, 101, 101, 0.9, 0, 1),
			},
			config:   NMSConfig{IoUThreshold: 0.4},
			expected: []float32{0.9},
		},
		{
			name: "disjoint boxes all survive, highest first",
			boxes: []ScaledBox{
				box(0, 0, 10, 10, 0.5, 0, 0),
				box(100, 100, 110, 110, 0.7, 0, 1),
				box(200, 200, 210, 210, 0.6, 0, 2),
			},
			config:   NMSConfig{IoUThreshold: 0.4},
			expected: []float32{0.7, 0.6, 0.5},
		},
		{
			name: "IoU equal to threshold is not suppressed",
			boxes: []ScaledBox{
				box(0, 0, 100, 100, 0.9, 0, 0),
				box(25, 25, 75, 75, 0.8, 0, 1), // IoU 0.25
			},
			config:   NMSConfig{IoUThreshold: 0.25},
			expected: []float32{0.9, 0.8},
		},
		{
			name: "chain: suppressed box does not suppress others",
			boxes: []ScaledBox{
				box(0, 0, 100, 100, 0.9, 0, 0),
				box(30, 0, 130, 100, 0.8, 0, 1), // IoU with first 0.538
				box(60, 0, 160, 100, 0.7, 0, 2), // IoU with first 0.25, with second 0.538
			},
			config:   NMSConfig{IoUThreshold: 0.4},
			expected: []float32{0.9, 0.7},
		},
		{
			name: "zero-area boxes neither suppress nor are suppressed",
			boxes: []ScaledBox{
				box(50, 50, 50, 50, 0.95, 0, 0),
				box(0, 0, 100, 100, 0.9, 0, 1),
				box(10, 10, 10, 90, 0.5, 0, 2),
			},
			config:   NMSConfig{IoUThreshold: 0.0},
			expected: []float32{0.95, 0.9, 0.5},
		},
		{
			name: "max detections",
			boxes: []ScaledBox{
				box(0, 0, 10, 10, 0.5, 0, 0),
				box(100, 100, 110, 110, 0.7, 0, 1),
				box(200, 200, 210, 210, 0.6, 0, 2),
			},
			config:   NMSConfig{IoUThreshold: 0.4, MaxDetections: 2},
			expected: []float32{0.7, 0.6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyGreedyNMS(tt.boxes, &tt.config)
			confidences := make([]float32, len(got))
			for i, d := range got {
				confidences[i] = d.Confidence
			}
			assert.Equal(t, tt.expected, confidences)
		})
	}
}

// TestApplyGreedyNMSClassPolicy documents that suppression ignores class ids
// unless ClassAware is set.
func TestApplyGreedyNMSClassPolicy(t *testing.T) {
	boxes := []ScaledBox{
		box(0, 0, 100, 100, 0.9, 0, 0),
		box(2, 2, 100, 100, 0.8, 1, 1),
		box(1, 1, 100, 100, 0.7, 0, 2),
	}

	agnostic := ApplyGreedyNMS(boxes, &NMSConfig{IoUThreshold: 0.4})
	require.Len(t, agnostic, 1)
	assert.Equal(t, 0, agnostic[0].ClassID)

	aware := ApplyGreedyNMS(boxes, &NMSConfig{IoUThreshold: 0.4, ClassAware: true})
	require.Len(t, aware, 2)
	assert.Equal(t, 0, aware[0].ClassID)
	assert.Equal(t, 1, aware[1].ClassID)
}

func TestApplyGreedyNMSStableTies(t *testing.T) {
	boxes := []ScaledBox{
		box(0, 0, 100, 100, 0.8, 3, 0),
		box(0, 0, 100, 100, 0.8, 7, 1),
		box(0, 0, 100, 100, 0.8, 5, 2),
	}
	got := ApplyGreedyNMS(boxes, &NMSConfig{IoUThreshold: 0.4})
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ClassID, "the earliest candidate wins a tie")
}

func TestApplyGreedyNMSEmpty(t *testing.T) {
	got := ApplyGreedyNMS(nil, &NMSConfig{IoUThreshold: 0.4})
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = ApplyNMS([]ScaledBox{}, &NMSConfig{IoUThreshold: 0.4, NumWorkers: 4})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyGreedyNMSDoesNotModifyInput(t *testing.T) {
	boxes := []ScaledBox{
		box(0, 0, 10, 10, 0.1, 0, 0),
		box(50, 50, 60, 60, 0.9, 0, 1),
	}
	before := append([]ScaledBox(nil), boxes...)
	ApplyGreedyNMS(boxes, nil)
	assert.Equal(t, before, boxes)
}

func TestApplyGreedyNMSMaterializesDetection(t *testing.T) {
	got := ApplyGreedyNMS([]ScaledBox{box(150, 150, 250, 250, 0.9, 2, 0)}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, Detection{Left: 150, Top: 150, Width: 100, Height: 100, ClassID: 2, Confidence: 0.9}, got[0])
}

func randomBoxes(rng *rand.Rand, n, classes int) []ScaledBox {
	boxes := make([]ScaledBox, n)
	for i := range boxes {
		x := rng.Float32() * 600
		y := rng.Float32() * 400
		w := 10 + rng.Float32()*120
		h := 10 + rng.Float32()*120
		// Quantized confidences produce plenty of ties.
		conf := float32(rng.Intn(20)+1) / 20
		boxes[i] = box(x, y, x+w, y+h, conf, rng.Intn(classes), i)
	}
	return boxes
}

// TestNMSProperties checks that suppression never grows the set, that no two
// kept boxes overlap above the threshold, and that the parallel sweep agrees
// with the greedy one.
func TestNMSProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		boxes := randomBoxes(rng, 50+rng.Intn(400), 3)
		for _, classAware := range []bool{false, true} {
			config := NMSConfig{IoUThreshold: 0.3 + rng.Float32()*0.4, ClassAware: classAware}

			greedy := ApplyGreedyNMS(boxes, &config)
			assert.LessOrEqual(t, len(greedy), len(boxes))

			for i := range greedy {
				for j := i + 1; j < len(greedy); j++ {
					assert.GreaterOrEqual(t, greedy[i].Confidence, greedy[j].Confidence)
					if classAware && greedy[i].ClassID != greedy[j].ClassID {
						continue
					}
					iou := images.CalculateIoU(greedy[i].Rect(), greedy[j].Rect())
					assert.LessOrEqual(t, iou, config.IoUThreshold+1e-4, "kept boxes %d and %d overlap", i, j)
				}
			}

			parallel := config
			parallel.NumWorkers = 4
			assert.Equal(t, greedy, ApplyNMS(boxes, &parallel))
			assert.Equal(t, greedy, Suppress(boxes, &parallel))
		}
	}
}

func TestNMSConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultNMSConfig().Validate())
	assert.NoError(t, (&NMSConfig{IoUThreshold: 0}).Validate())
	assert.NoError(t, (&NMSConfig{IoUThreshold: 1}).Validate())

	for _, c := range []NMSConfig{
		{IoUThreshold: -0.01},
		{IoUThreshold: 1.01},
		{IoUThreshold: 0.5, MaxDetections: -1},
		{IoUThreshold: 0.5, NumWorkers: -2},
	} {
		assert.ErrorIs(t, c.Validate(), ErrInvalidConfiguration, "%+v", c)
	}
}

func BenchmarkApplyGreedyNMS(b *testing.B) {
	boxes := randomBoxes(rand.New(rand.NewSource(1)), 2000, 80)
	config := &NMSConfig{IoUThreshold: 0.45}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ApplyGreedyNMS(boxes, config)
	}
}

func BenchmarkApplyNMS(b *testing.B) {
	boxes := randomBoxes(rand.New(rand.NewSource(1)), 2000, 80)
	config := &NMSConfig{IoUThreshold: 0.45, NumWorkers: 4}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ApplyNMS(boxes, config)
	}
}
