// Package model - Detection model families and their output tensor layouts.
package model

import "github.com/nvr-ai/go-detect/models/postprocess"

// Name is the unique identifier of a model family.
type Name string

const (
	// ModelNameYOLOv4 is YOLOv4: three output layers with separate objectness.
	ModelNameYOLOv4 Name = "yolov4"
	// ModelNameYOLOv5 is YOLOv5: one output layer with separate objectness.
	ModelNameYOLOv5 Name = "yolov5"
	// ModelNameYOLOv8 is YOLOv8: merged box and class scores, no objectness.
	ModelNameYOLOv8 Name = "yolov8"
	// ModelNameYOLO11 is YOLO11, which shares the YOLOv8 head layout.
	ModelNameYOLO11 Name = "yolo11"
)

// Spec describes how to decode a model family's output.
type Spec struct {
	Name        Name               `json:"name" yaml:"name"`
	Layout      postprocess.Layout `json:"layout" yaml:"layout"`
	NumClasses  int                `json:"num_classes" yaml:"num_classes"`
	InputWidth  int                `json:"input_width" yaml:"input_width"`
	InputHeight int                `json:"input_height" yaml:"input_height"`
}
