package benchmark

import (
	"math/rand"

	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Synthesize builds one frame of detection-head output for spec.
//
// Each row is a random box inside the network input. A density fraction of
// rows carry a 0.9 score (and objectness) for a random class; every other
// score is at most 0.05.
func Synthesize(rng *rand.Rand, spec model.Spec, candidates int, density float64) *tensor.Dense {
	width := spec.Layout.RowWidth(spec.NumClasses)
	data := make([]float32, width*candidates)

	row := make([]float32, width)
	for i := 0; i < candidates; i++ {
		row[0] = rng.Float32() * float32(spec.InputWidth)
		row[1] = rng.Float32() * float32(spec.InputHeight)
		row[2] = 8 + rng.Float32()*120
		row[3] = 8 + rng.Float32()*120

		scores := row[4:]
		if spec.Layout == postprocess.LayoutSeparateObjectness {
			scores = row[5:]
			row[4] = rng.Float32() * 0.05
		}
		for c := range scores {
			scores[c] = rng.Float32() * 0.05
		}
		if rng.Float64() < density {
			scores[rng.Intn(len(scores))] = 0.9
			if spec.Layout == postprocess.LayoutSeparateObjectness {
				row[4] = 0.9
			}
		}

		if spec.Layout == postprocess.LayoutSeparateObjectness {
			copy(data[i*width:], row)
			continue
		}
		for col, v := range row {
			data[col*candidates+i] = v
		}
	}

	if spec.Layout == postprocess.LayoutSeparateObjectness {
		return tensor.New(tensor.WithShape(1, candidates, width), tensor.WithBacking(data))
	}
	return tensor.New(tensor.WithShape(1, width, candidates), tensor.WithBacking(data))
}
