package models

import "strings"

// ClassSet is an ordered list of labels indexed by class id.
type ClassSet struct {
	names     []string
	nameToIdx map[string]int
}

// NewClassSet builds a set from labels in class-id order. Surrounding
// whitespace is trimmed from each label.
func NewClassSet(names ...string) *ClassSet {
	s := &ClassSet{
		names:     make([]string, len(names)),
		nameToIdx: make(map[string]int, len(names)),
	}
	for i, n := range names {
		n = strings.TrimSpace(n)
		s.names[i] = n
		if _, dup := s.nameToIdx[n]; !dup {
			s.nameToIdx[n] = i
		}
	}
	return s
}

// Len returns the number of classes.
func (s *ClassSet) Len() int {
	return len(s.names)
}

// Name returns the label for a class id.
func (s *ClassSet) Name(idx int) (string, bool) {
	if idx < 0 || idx >= len(s.names) {
		return "", false
	}
	return s.names[idx], true
}

// Index returns the class id of a label.
func (s *ClassSet) Index(name string) (int, bool) {
	idx, ok := s.nameToIdx[name]
	return idx, ok
}

// YOLOClasses is the 80 COCO classes with no background entry. YOLO heads
// index directly into this zero-based list.
var YOLOClasses = NewClassSet(
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse",
	"sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie",
	"suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut",
	"cake", "chair", "couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator", "book",
	"clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
)
