package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"form-snippets/internal/classify"
	"form-snippets/internal/crop"
	"form-snippets/internal/quality"
	"form-snippets/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type fixedClassifier struct{ res classify.Result }

func (f fixedClassifier) Classify(gocv.Mat) classify.Result { return f.res }

type fixedReader struct {
	text string
	err  error
}

func (f fixedReader) ReadFormID(gocv.Mat, geometry.RectInt) (string, error) { return f.text, f.err }

// drawForm paints a 4 x 5 grid of black squares on a white page.
func drawForm() gocv.Mat {
	page := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 600, 700, gocv.MatTypeCV8UC3)
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			x, y := 200+80*c, 100+80*r
			gocv.Rectangle(&page, image.Rect(x, y, x+40, y+40), color.RGBA{A: 255}, -1)
		}
	}
	return page
}

func blankPage() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 600, 700, gocv.MatTypeCV8UC3)
}

func fakeLoader(path string) (gocv.Mat, error) {
	switch filepath.Base(path) {
	case "blank.png":
		return blankPage(), nil
	case "bad.png":
		return gocv.NewMat(), errors.New("corrupt")
	default:
		return drawForm(), nil
	}
}

func newTestPipeline(t *testing.T, c Classifier) (*Pipeline, *quality.Checker, string) {
	t.Helper()
	out := t.TempDir()
	w, err := crop.NewWriter(out)
	require.NoError(t, err)

	checker := quality.NewChecker()
	p := New(DefaultOptions("in"), c, w, checker, nil, nil).WithLoader(fakeLoader)
	return p, checker, out
}

func TestProcessImageSavesLabelledRows(t *testing.T) {
	c := fixedClassifier{classify.Result{Label: "fire", Size: "small"}}
	p, checker, out := newTestPipeline(t, c)

	o, err := p.ProcessImage(context.Background(), "in/0123.png")
	require.NoError(t, err)
	assert.False(t, o.Skipped)
	assert.Equal(t, 4, o.Rows)
	assert.Equal(t, 4, o.Labelled)
	assert.Equal(t, 20, o.Saved)
	assert.Equal(t, "01", o.Form.Scripter)
	assert.Equal(t, "23", o.Form.Page)

	assert.Equal(t, 4, checker.LabelCount("fire"))
	assert.FileExists(t, filepath.Join(out, "fire_01_23_0_0.png"))
	assert.FileExists(t, filepath.Join(out, "fire_01_23_3_4.txt"))

	sidecar, err := os.ReadFile(filepath.Join(out, "fire_01_23_2_1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(sidecar), "size small\n")
	assert.Contains(t, string(sidecar), "row 2\ncolumn 1\n")

	src, ok := p.Registry().Path("0123")
	assert.True(t, ok)
	assert.Equal(t, "in/0123.png", src)
}

func TestProcessImageSkipsUnlabelledRows(t *testing.T) {
	p, checker, out := newTestPipeline(t, fixedClassifier{})

	o, err := p.ProcessImage(context.Background(), "in/0123.png")
	require.NoError(t, err)
	assert.Equal(t, 4, o.Rows)
	assert.Zero(t, o.Saved)
	assert.Zero(t, checker.TotalLabels())

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessImageSkipsPageWithoutGrid(t *testing.T) {
	p, checker, _ := newTestPipeline(t, fixedClassifier{classify.Result{Label: "fire"}})

	o, err := p.ProcessImage(context.Background(), "in/blank.png")
	require.NoError(t, err)
	assert.True(t, o.Skipped)

	r := checker.Report(time.Time{}, 0)
	assert.Equal(t, 1, r.Skipped)
	assert.Zero(t, r.Processed)
}

func TestProcessImageLoadError(t *testing.T) {
	p, checker, _ := newTestPipeline(t, fixedClassifier{})
	o, err := p.ProcessImage(context.Background(), "in/bad.png")
	assert.ErrorContains(t, err, "corrupt")
	assert.True(t, o.Failed)
	assert.False(t, o.Skipped)

	r := checker.Report(time.Time{}, 0)
	assert.Equal(t, 1, r.Failed)
	assert.Zero(t, r.Skipped)
	assert.Equal(t, 1, r.Images)
}

func TestProcessImageFormReader(t *testing.T) {
	c := fixedClassifier{classify.Result{Label: "car"}}

	p, _, out := newTestPipeline(t, c)
	p.WithFormReader(fixedReader{text: "98765"})
	o, err := p.ProcessImage(context.Background(), "in/0123.png")
	require.NoError(t, err)
	assert.Equal(t, "98", o.Form.Scripter)
	assert.Equal(t, "765", o.Form.Page)
	assert.FileExists(t, filepath.Join(out, "car_98_765_0_0.png"))

	// unreadable number falls back to the path
	p, _, _ = newTestPipeline(t, c)
	p.WithFormReader(fixedReader{err: errors.New("tesseract")})
	o, err = p.ProcessImage(context.Background(), "in/0123.png")
	require.NoError(t, err)
	assert.Equal(t, "0123", o.Form.String())
}

func TestRunWorkers(t *testing.T) {
	c := fixedClassifier{classify.Result{Label: "gas"}}
	paths := []string{"in/0123.png", "in/0124.png", "in/blank.png", "in/0125.png", "in/bad.png"}

	for _, workers := range []int{1, 3} {
		p, checker, _ := newTestPipeline(t, c)
		sum, err := p.Run(context.Background(), paths, workers)
		require.NoError(t, err)

		assert.Equal(t, Summary{Images: 5, Skipped: 1, Failed: 1, Labelled: 12, Saved: 60}, sum, "workers=%d", workers)
		assert.Equal(t, 12, checker.LabelCount("gas"))
		assert.Equal(t, 3, p.Registry().Len())

		r := checker.Report(time.Time{}, 0)
		assert.Equal(t, sum.Images, r.Images)
		assert.Equal(t, sum.Skipped, r.Skipped)
		assert.Equal(t, sum.Failed, r.Failed)
		assert.Equal(t, 3, r.Processed)
	}
}

func TestRunCancelled(t *testing.T) {
	p, checker, _ := newTestPipeline(t, fixedClassifier{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := p.Run(ctx, []string{"in/0123.png", "in/0124.png"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.Images)

	// workers may still receive a path, but none gets past the context check
	sum, err = p.Run(ctx, []string{"in/0123.png", "in/0124.png"}, 4)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Summary{}, sum)
	assert.Zero(t, checker.Report(time.Time{}, 0).Images)
}
