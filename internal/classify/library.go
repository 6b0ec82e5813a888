package classify

import (
	"errors"
	"fmt"
	"path/filepath"

	"gocv.io/x/gocv"
)

// ErrTemplateMissing is returned when a reference template cannot be read.
var ErrTemplateMissing = errors.New("template missing")

// Labels are the icon categories, in evaluation order.
var Labels = []string{
	"accident", "bomb", "car", "casualty", "electricity", "fire", "fireBrigade",
	"flood", "gas", "injury", "paramedics", "person", "police", "roadBlock",
}

// Sizes are the size markers, in evaluation order.
var Sizes = []string{"large", "medium", "small"}

// Template is a named reference image with its precomputed features.
type Template struct {
	Name     string
	Features Features
}

// Library holds label and size templates. It is read-only after loading
// and may be shared between goroutines.
type Library struct {
	labels []Template
	sizes  []Template
}

// LoadLibrary reads <dir>/<name>.png for every label and size and extracts
// their features. A missing or unreadable file fails with ErrTemplateMissing.
func LoadLibrary(dir string, p Params) (*Library, error) {
	lib := &Library{}
	var err error
	if lib.labels, err = loadTemplates(dir, Labels, p); err != nil {
		return nil, err
	}
	if lib.sizes, err = loadTemplates(dir, Sizes, p); err != nil {
		lib.Close()
		return nil, err
	}
	return lib, nil
}

func loadTemplates(dir string, names []string, p Params) ([]Template, error) {
	out := make([]Template, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name+".png")
		img := gocv.IMRead(path, gocv.IMReadColor)
		if img.Empty() {
			img.Close()
			closeAll(out)
			return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, path)
		}
		out = append(out, Template{Name: name, Features: Detect(img, p)})
		img.Close()
	}
	return out, nil
}

// Close releases template descriptors.
func (l *Library) Close() {
	closeAll(l.labels)
	closeAll(l.sizes)
	l.labels, l.sizes = nil, nil
}

func closeAll(ts []Template) {
	for i := range ts {
		ts[i].Features.Close()
	}
}
