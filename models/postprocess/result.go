// Package postprocess - Decoding, filtering, rescaling and suppression of raw
// detection-head output.
package postprocess

import (
	"fmt"
	"image"

	"github.com/nvr-ai/go-detect/images"
)

// Candidate is one decoded tensor row in network-input coordinates.
type Candidate struct {
	// The center-form box in network-input space.
	Box images.CenterBox
	// The confidence score; objectness for LayoutSeparateObjectness, the best
	// class score for LayoutMerged.
	Confidence float32
	// The predicted class index, always within [0, numClasses).
	ClassID int
	// The position of the row in decode order, used to break ties.
	Index int
}

// ScaledBox is a corner-form box in source-image pixel coordinates.
type ScaledBox struct {
	// The corner-form box in source-image space.
	Box images.Rect
	// The confidence score carried over from the candidate.
	Confidence float32
	// The predicted class index.
	ClassID int
	// The position of the originating candidate in decode order.
	Index int
}

// Detection is a final, suppressed detection in source-image pixels.
type Detection struct {
	Left       float32 `json:"left"`
	Top        float32 `json:"top"`
	Width      float32 `json:"width"`
	Height     float32 `json:"height"`
	ClassID    int     `json:"class_id"`
	Confidence float32 `json:"confidence"`
}

// NewDetection materializes a kept box.
func NewDetection(b ScaledBox) Detection {
	return Detection{
		Left:       b.Box.X1,
		Top:        b.Box.Y1,
		Width:      b.Box.Width(),
		Height:     b.Box.Height(),
		ClassID:    b.ClassID,
		Confidence: b.Confidence,
	}
}

// Rect returns the corner-form box of the detection.
func (d Detection) Rect() images.Rect {
	return images.Rect{
		X1: d.Left,
		Y1: d.Top,
		X2: d.Left + d.Width,
		Y2: d.Top + d.Height,
	}
}

// ToRectangle converts the detection to an integral image.Rectangle for
// drawing. Coordinates are not clamped to the image bounds.
func (d Detection) ToRectangle() image.Rectangle {
	return d.Rect().ToRectangle()
}

func (d Detection) String() string {
	return fmt.Sprintf("Class %d (confidence %f): (%.2f, %.2f) %.2fx%.2f",
		d.ClassID, d.Confidence, d.Left, d.Top, d.Width, d.Height)
}
