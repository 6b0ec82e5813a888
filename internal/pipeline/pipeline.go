// Package pipeline turns scanned forms into labelled snippets: locate the
// grid, identify the form, classify each row's reference icon and save the
// row's cells.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"form-snippets/internal/classify"
	"form-snippets/internal/crop"
	"form-snippets/internal/dataset"
	"form-snippets/internal/image"
	"form-snippets/internal/logging"
	"form-snippets/internal/snippet"
	"form-snippets/pkg/geometry"

	"gocv.io/x/gocv"
)

// Classifier labels a reference region.
type Classifier interface {
	Classify(region gocv.Mat) classify.Result
}

// FormReader reads the form number printed in bounds.
type FormReader interface {
	ReadFormID(img gocv.Mat, bounds geometry.RectInt) (string, error)
}

// Sink receives run statistics.
type Sink interface {
	PutLabel(label string)
	ImageProcessed()
	ImageSkipped()
	ImageFailed()
	SnippetsSaved(n int)
}

// Loader decodes an image file into a BGR matrix.
type Loader func(path string) (gocv.Mat, error)

// Options configures a Pipeline.
type Options struct {
	InputDir       string // Root used to derive form numbers from paths
	ScripterDigits int
	Snippet        snippet.Params
	Crop           crop.Params
}

// DefaultOptions returns options for forms under inputDir.
func DefaultOptions(inputDir string) Options {
	return Options{
		InputDir:       inputDir,
		ScripterDigits: 2,
		Snippet:        snippet.DefaultParams(),
		Crop:           crop.DefaultParams(),
	}
}

// Pipeline processes form images. A Pipeline is safe for concurrent use as
// long as its Classifier, FormReader and Sink are.
type Pipeline struct {
	opts       Options
	classifier Classifier
	reader     FormReader
	writer     *crop.Writer
	sink       Sink
	registry   *dataset.Registry
	load       Loader
	log        *slog.Logger
}

// New returns a pipeline saving through w. reg and log may be nil.
func New(opts Options, c Classifier, w *crop.Writer, sink Sink, reg *dataset.Registry, log *slog.Logger) *Pipeline {
	if log == nil {
		log = logging.Nop()
	}
	if reg == nil {
		reg = dataset.NewRegistry()
	}
	return &Pipeline{
		opts:       opts,
		classifier: c,
		writer:     w,
		sink:       sink,
		registry:   reg,
		load:       image.LoadMat,
		log:        log,
	}
}

// WithFormReader enables reading form numbers from the image.
func (p *Pipeline) WithFormReader(r FormReader) *Pipeline {
	p.reader = r
	return p
}

// WithLoader replaces the image decoder.
func (p *Pipeline) WithLoader(l Loader) *Pipeline {
	p.load = l
	return p
}

// Registry returns the form registry filled while processing.
func (p *Pipeline) Registry() *dataset.Registry {
	return p.registry
}

// Outcome describes what happened to one image.
type Outcome struct {
	Path     string
	Form     dataset.FormID
	Located  bool // Grid found, rows were visited
	Skipped  bool // Too few snippets to locate a grid
	Failed   bool // Could not be loaded or searched
	Rows     int  // Rows in the located grid
	Labelled int  // Rows whose reference icon was recognised
	Saved    int  // Snippets written
}

// ProcessImage runs the whole chain on one image. Every image that gets
// past the initial context check is reported to the sink exactly once, as
// processed, skipped or failed.
func (p *Pipeline) ProcessImage(ctx context.Context, path string) (Outcome, error) {
	out := Outcome{Path: path}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	src, err := p.load(path)
	if err != nil {
		p.sink.ImageFailed()
		out.Failed = true
		return out, fmt.Errorf("load %s: %w", path, err)
	}
	defer src.Close()

	layout, err := snippet.LocateImage(src, p.opts.Snippet)
	if errors.Is(err, snippet.ErrInsufficientSnippets) {
		p.sink.ImageSkipped()
		p.log.Info("skipped", "image", path, "reason", err)
		out.Skipped = true
		return out, nil
	}
	if err != nil {
		p.sink.ImageFailed()
		out.Failed = true
		return out, fmt.Errorf("locate %s: %w", path, err)
	}
	p.sink.ImageProcessed()
	out.Located = true

	bounds := geometry.RectInt{Width: src.Cols(), Height: src.Rows()}
	out.Form = p.formID(src, layout, bounds, path)
	out.Rows = layout.Rows()
	p.registry.Put(out.Form.String(), path)

	for r := 0; r < layout.Rows(); r++ {
		if err := ctx.Err(); err != nil {
			p.sink.SnippetsSaved(out.Saved)
			return out, err
		}

		res, err := p.classifyRow(src, layout, r, bounds)
		if err != nil {
			p.log.Debug("no reference region", "image", path, "row", r, "err", err)
			continue
		}
		if res.Label == "" {
			continue
		}
		p.sink.PutLabel(res.Label)
		out.Labelled++

		meta := crop.Meta{
			Label:      res.Label,
			Size:       res.Size,
			ScripterID: out.Form.Scripter,
			PageID:     out.Form.Page,
		}
		n, err := crop.ExtractRow(src, layout, r, meta, p.opts.Crop, p.writer)
		out.Saved += n
		if errors.Is(err, crop.ErrEmptyRegion) {
			p.log.Warn("row partially cropped", "image", path, "row", r, "err", err)
			continue
		}
		if err != nil {
			p.sink.SnippetsSaved(out.Saved)
			return out, err
		}
	}

	p.sink.SnippetsSaved(out.Saved)
	p.log.Info("processed", "image", path, "form", out.Form.String(),
		"rows", out.Rows, "labelled", out.Labelled, "saved", out.Saved)
	return out, nil
}

func (p *Pipeline) classifyRow(src gocv.Mat, layout *snippet.Layout, row int, bounds geometry.RectInt) (classify.Result, error) {
	rect, err := layout.ReferenceRegion(row, bounds)
	if err != nil {
		return classify.Result{}, err
	}
	region := src.Region(rect.ToImage())
	defer region.Close()
	return p.classifier.Classify(region), nil
}

// formID reads the form number from the image when a reader is set and
// falls back to the digits of the path.
func (p *Pipeline) formID(src gocv.Mat, layout *snippet.Layout, bounds geometry.RectInt, path string) dataset.FormID {
	if p.reader != nil {
		if rect, err := layout.FormIDRegion(bounds); err == nil {
			text, err := p.reader.ReadFormID(src, rect)
			if err != nil {
				p.log.Warn("form number unreadable", "image", path, "err", err)
			} else if text != "" {
				return dataset.ParseFormID(text, p.opts.ScripterDigits)
			}
		}
	}
	return dataset.FormIDFromPath(p.opts.InputDir, path, p.opts.ScripterDigits)
}
