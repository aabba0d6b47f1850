package postprocess

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Layout identifies how a detection head arranges its output tensor.
type Layout int

const (
	// LayoutSeparateObjectness is the YOLOv4/v5 layout: one or more output
	// layers of shape [numCandidates][5 + numClasses], each row holding
	// [cx, cy, w, h, objectness, classScore_0..N].
	LayoutSeparateObjectness Layout = iota + 1
	// LayoutMerged is the YOLOv8/YOLO11 layout: a single [1][4 + numClasses][numCandidates]
	// tensor read transposed, each candidate holding [cx, cy, w, h, classScore_0..N].
	LayoutMerged
)

// ParseLayout resolves a layout name.
//
// Arguments:
//   - s: One of "a", "separate", "b" or "merged" (case-insensitive).
//
// Returns:
//   - The layout, or an ErrInvalidConfiguration error for unknown names.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "separate", "objectness":
		return LayoutSeparateObjectness, nil
	case "b", "merged":
		return LayoutMerged, nil
	default:
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown layout %q", s)
	}
}

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l == LayoutSeparateObjectness || l == LayoutMerged
}

// RowWidth returns the number of values each candidate carries.
func (l Layout) RowWidth(numClasses int) int {
	switch l {
	case LayoutSeparateObjectness:
		return 5 + numClasses
	case LayoutMerged:
		return 4 + numClasses
	default:
		return 0
	}
}

func (l Layout) String() string {
	switch l {
	case LayoutSeparateObjectness:
		return "separate"
	case LayoutMerged:
		return "merged"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}
