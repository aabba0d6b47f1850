// Package images - Box geometry shared by the decoding and suppression stages.
package images

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// Rect is a corner-form, axis-aligned bounding box.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// CenterBox is a center-form bounding box as emitted by YOLO-style heads.
type CenterBox struct {
	CX, CY, W, H float32
}

// Rect converts a center-form box to corner form.
//
// Returns:
//   - The corner-form box with right = left + w and bottom = top + h.
//
// Example:
//
// ```go
//
//	box := CenterBox{CX: 100, CY: 100, W: 50, H: 50}
//	r := box.Rect() // Rect{X1: 75, Y1: 75, X2: 125, Y2: 125}
//
// ```
func (c CenterBox) Rect() Rect {
	left := c.CX - c.W/2
	top := c.CY - c.H/2
	return Rect{
		X1: left,
		Y1: top,
		X2: left + c.W,
		Y2: top + c.H,
	}
}

// Center converts a corner-form box to center form.
func (r Rect) Center() CenterBox {
	w := r.X2 - r.X1
	h := r.Y2 - r.Y1
	return CenterBox{
		CX: r.X1 + w/2,
		CY: r.Y1 + h/2,
		W:  w,
		H:  h,
	}
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the box.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the box area, or zero for degenerate and inverted boxes.
func (r Rect) Area() float32 {
	w := r.Width()
	h := r.Height()
	if !(w > 0) || !(h > 0) {
		return 0
	}
	return w * h
}

// Scale multiplies the horizontal coordinates by xScale and the vertical
// coordinates by yScale.
//
// The factors are independent because the network input is resized without
// preserving aspect ratio.
//
// Arguments:
//   - xScale: Factor applied to X1 and X2.
//   - yScale: Factor applied to Y1 and Y2.
//
// Returns:
//   - The scaled box.
func (r Rect) Scale(xScale, yScale float32) Rect {
	return Rect{
		X1: r.X1 * xScale,
		Y1: r.Y1 * yScale,
		X2: r.X2 * xScale,
		Y2: r.Y2 * yScale,
	}
}

// ToRectangle converts the box to an image.Rectangle.
//
// This loses precision, but the box has already been scaled up to the source
// image's dimensions, so only fractional pixels around the edges are lost.
func (r Rect) ToRectangle() image.Rectangle {
	return image.Rect(int(r.X1), int(r.Y1), int(r.X2), int(r.Y2)).Canon()
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f, %.2f), (%.2f, %.2f)", r.X1, r.Y1, r.X2, r.Y2)
}

// CalculateIoU measures the overlap between two boxes as
// Area of Intersection / Area of Union.
//
//   - 1.0 means the boxes are identical.
//   - 0.0 means the boxes don't overlap at all.
//
// The intersection's top-left corner is the maximum of the two top-left
// corners and its bottom-right corner is the minimum of the two bottom-right
// corners. If the resulting width or height is not positive the boxes don't
// overlap and 0 is returned.
//
// The union uses inclusion-exclusion:
//
//	Area(Union) = Area(A) + Area(B) - Area(Intersection)
//
// A zero-area box has IoU 0 against everything, including itself, so it can
// neither suppress nor be suppressed.
//
// Arguments:
//   - r: The first box.
//   - o: The other box to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example Usage:
// ```go
//
//	rect1 := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	rect2 := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//
//	iouScore := CalculateIoU(rect1, rect2) // 25 / (100 + 100 - 25) = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	areaR := r.Area()
	areaO := o.Area()
	if areaR == 0 || areaO == 0 {
		return 0.0
	}

	interW := math32.Min(r.X2, o.X2) - math32.Max(r.X1, o.X1)
	interH := math32.Min(r.Y2, o.Y2) - math32.Max(r.Y1, o.Y1)
	if !(interW > 0) || !(interH > 0) {
		return 0.0
	}
	interArea := interW * interH

	unionArea := areaR + areaO - interArea
	if !(unionArea > 0) {
		return 0.0
	}

	return interArea / unionArea
}
