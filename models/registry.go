// Package models - registry of known detection model families.
package models

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

var registry = map[model.Name]model.Spec{
	model.ModelNameYOLOv4: {
		Name:        model.ModelNameYOLOv4,
		Layout:      postprocess.LayoutSeparateObjectness,
		NumClasses:  80,
		InputWidth:  608,
		InputHeight: 608,
	},
	model.ModelNameYOLOv5: {
		Name:        model.ModelNameYOLOv5,
		Layout:      postprocess.LayoutSeparateObjectness,
		NumClasses:  80,
		InputWidth:  640,
		InputHeight: 640,
	},
	model.ModelNameYOLOv8: {
		Name:        model.ModelNameYOLOv8,
		Layout:      postprocess.LayoutMerged,
		NumClasses:  80,
		InputWidth:  640,
		InputHeight: 640,
	},
	model.ModelNameYOLO11: {
		Name:        model.ModelNameYOLO11,
		Layout:      postprocess.LayoutMerged,
		NumClasses:  80,
		InputWidth:  640,
		InputHeight: 640,
	},
}

// Lookup returns the decoding defaults of a model family.
//
// Arguments:
//   - name: The model family name; matched case-insensitively.
//
// Returns:
//   - model.Spec: The layout, class count and input resolution of the family.
//   - error: An ErrInvalidConfiguration error if the family is unknown.
//
// Example:
//
// ```go
//
//	spec, err := Lookup("yolov8")
//	if err != nil {
//	    log.Fatalf("unknown model: %v", err)
//	}
//	fmt.Println(spec.Layout) // merged
//
// ```
func Lookup(name model.Name) (model.Spec, error) {
	spec, ok := registry[model.Name(strings.ToLower(string(name)))]
	if !ok {
		return model.Spec{}, errors.Wrapf(postprocess.ErrInvalidConfiguration,
			"unsupported model name %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return spec, nil
}

// Names lists the registered model families in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}
