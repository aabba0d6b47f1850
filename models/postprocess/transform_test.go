package postprocess

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
)

func TestTransformer(t *testing.T) {
	tests := []struct {
		name     string
		network  [2]int
		source   [2]int
		box      images.CenterBox
		expected images.Rect
	}{
		{
			name:     "uniform upscale",
			network:  [2]int{640, 640},
			source:   [2]int{1280, 1280},
			box:      images.CenterBox{CX: 100, CY: 100, W: 50, H: 50},
			expected: images.Rect{X1: 150, Y1: 150, X2: 250, Y2: 250},
		},
		{
			name:     "non-uniform 1080p",
			network:  [2]int{640, 640},
			source:   [2]int{1920, 1080},
			box:      images.CenterBox{CX: 320, CY: 320, W: 64, H: 128},
			expected: images.Rect{X1: 864, Y1: 432, X2: 1056, Y2: 648},
		},
		{
			name:     "identity",
			network:  [2]int{416, 416},
			source:   [2]int{416, 416},
			box:      images.CenterBox{CX: 10, CY: 20, W: 4, H: 8},
			expected: images.Rect{X1: 8, Y1: 16, X2: 12, Y2: 24},
		},
		{
			name:     "not clamped to image bounds",
			network:  [2]int{640, 640},
			source:   [2]int{640, 640},
			box:      images.CenterBox{CX: 5, CY: 635, W: 20, H: 20},
			expected: images.Rect{X1: -5, Y1: 625, X2: 15, Y2: 645},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTransformer(tt.network[0], tt.network[1], tt.source[0], tt.source[1])
			require.NoError(t, err)

			got := tr.Transform(Candidate{Box: tt.box, Confidence: 0.5, ClassID: 3, Index: 9})
			assert.Equal(t, tt.expected, got.Box)
			assert.Equal(t, float32(0.5), got.Confidence)
			assert.Equal(t, 3, got.ClassID)
			assert.Equal(t, 9, got.Index)
		})
	}
}

func TestTransformerScale(t *testing.T) {
	tr, err := NewTransformer(640, 640, 1920, 1080)
	require.NoError(t, err)
	x, y := tr.Scale()
	assert.Equal(t, float32(3), x)
	assert.Equal(t, float32(1.6875), y)
}

func TestNewTransformerInvalid(t *testing.T) {
	for _, dims := range [][4]int{
		{0, 640, 1920, 1080},
		{640, -1, 1920, 1080},
		{640, 640, 0, 1080},
		{640, 640, 1920, 0},
	} {
		_, err := NewTransformer(dims[0], dims[1], dims[2], dims[3])
		assert.ErrorIs(t, err, ErrInvalidInput, "%v", dims)
	}
}

func TestConfidenceFilter(t *testing.T) {
	f := ConfidenceFilter{Threshold: 0.4}
	assert.True(t, f.Keep(Candidate{Confidence: 0.41}))
	assert.False(t, f.Keep(Candidate{Confidence: 0.4}))
	assert.False(t, f.Keep(Candidate{Confidence: 0.1}))

	in := slices.Values([]Candidate{
		{Confidence: 0.9, Index: 0},
		{Confidence: 0.2, Index: 1},
		{Confidence: 0.5, Index: 2},
	})
	var kept []int
	for c := range f.Filter(in) {
		kept = append(kept, c.Index)
	}
	assert.Equal(t, []int{0, 2}, kept)
}

func TestTransformAll(t *testing.T) {
	tr, err := NewTransformer(100, 100, 200, 100)
	require.NoError(t, err)

	in := slices.Values([]Candidate{
		{Box: images.CenterBox{CX: 10, CY: 10, W: 10, H: 10}},
		{Box: images.CenterBox{CX: 50, CY: 50, W: 20, H: 20}},
	})
	got := slices.Collect(tr.TransformAll(in))
	require.Len(t, got, 2)
	assert.Equal(t, images.Rect{X1: 10, Y1: 5, X2: 30, Y2: 15}, got[0].Box)
	assert.Equal(t, images.Rect{X1: 80, Y1: 40, X2: 120, Y2: 60}, got[1].Box)
}
