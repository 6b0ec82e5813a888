// Package classify identifies the icon and size marker in a reference
// region by keypoint matching against a template library.
package classify

import (
	"context"
	"log/slog"

	"form-snippets/internal/logging"

	"gocv.io/x/gocv"
)

// Classifier scores regions against a shared Library.
type Classifier struct {
	lib    *Library
	params Params
	log    *slog.Logger
}

// New returns a classifier over lib. A nil logger discards output.
func New(lib *Library, p Params, log *slog.Logger) *Classifier {
	if log == nil {
		log = logging.Nop()
	}
	return &Classifier{lib: lib, params: p, log: log}
}

// Scores matches region against every label and size template. Rotation is
// estimated for labels only.
func (c *Classifier) Scores(region gocv.Mat) (labels, sizes []Scored) {
	feats := Detect(region, c.params)
	defer feats.Close()

	labels = make([]Scored, 0, len(c.lib.labels))
	for i := range c.lib.labels {
		t := &c.lib.labels[i]
		labels = append(labels, Scored{Name: t.Name, MatchResult: Match(&feats, &t.Features, true, c.params)})
	}
	sizes = make([]Scored, 0, len(c.lib.sizes))
	for i := range c.lib.sizes {
		t := &c.lib.sizes[i]
		sizes = append(sizes, Scored{Name: t.Name, MatchResult: Match(&feats, &t.Features, false, c.params)})
	}
	return labels, sizes
}

// Classify returns the selected label and size for region. An empty region
// yields an empty Result.
func (c *Classifier) Classify(region gocv.Mat) Result {
	if region.Empty() {
		return Result{}
	}
	labels, sizes := c.Scores(region)
	res := Result{
		Label: SelectLabel(labels, c.params),
		Size:  SelectSize(sizes, c.params.SizeFloor),
	}
	if c.log.Enabled(context.Background(), slog.LevelDebug) {
		for _, s := range labels {
			c.log.Debug("label score", "template", s.Name, "ratio", s.Ratio, "rotation", s.Rotation)
		}
		for _, s := range sizes {
			c.log.Debug("size score", "template", s.Name, "ratio", s.Ratio)
		}
		c.log.Debug("classified region", "size_px", regionSize(region), "label", res.Label, "marker", res.Size)
	}
	return res
}
