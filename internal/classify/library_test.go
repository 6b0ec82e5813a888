package classify

import (
	"image"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// texture draws a blocky random pattern with plenty of corners.
func texture(seed int64) gocv.Mat {
	rng := rand.New(rand.NewSource(seed))
	small := gocv.NewMatWithSize(16, 16, gocv.MatTypeCV8UC1)
	defer small.Close()
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if rng.Intn(2) == 0 {
				small.SetUCharAt(y, x, 255)
			} else {
				small.SetUCharAt(y, x, 0)
			}
		}
	}

	big := gocv.NewMat()
	defer big.Close()
	gocv.Resize(small, &big, image.Pt(256, 256), 0, 0, gocv.InterpolationNearestNeighbor)

	out := gocv.NewMat()
	gocv.CvtColor(big, &out, gocv.ColorGrayToBGR)
	return out
}

func writeTemplates(t *testing.T, dir string, names []string) {
	t.Helper()
	for i, name := range names {
		img := texture(int64(i + 1))
		require.True(t, gocv.IMWrite(filepath.Join(dir, name+".png"), img))
		img.Close()
	}
}

func TestLoadLibraryMissing(t *testing.T) {
	_, err := LoadLibrary(t.TempDir(), DefaultParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateMissing)
	assert.Contains(t, err.Error(), "accident.png")
}

func TestLoadLibraryMissingSize(t *testing.T) {
	dir := t.TempDir()
	writeTemplates(t, dir, Labels)

	_, err := LoadLibrary(dir, DefaultParams())
	assert.ErrorIs(t, err, ErrTemplateMissing)
	assert.Contains(t, err.Error(), "large.png")
}

func TestClassifySelf(t *testing.T) {
	dir := t.TempDir()
	writeTemplates(t, dir, append(append([]string{}, Labels...), Sizes...))

	p := DefaultParams()
	lib, err := LoadLibrary(dir, p)
	require.NoError(t, err)
	defer lib.Close()

	assert.Len(t, lib.labels, len(Labels))
	assert.Len(t, lib.sizes, len(Sizes))

	region := texture(1) // same pattern as the first label
	defer region.Close()

	c := New(lib, p, nil)
	labels, sizes := c.Scores(region)
	require.Len(t, labels, len(Labels))
	require.Len(t, sizes, len(Sizes))
	assert.Greater(t, labels[0].Ratio, 50.0)
	assert.Less(t, labels[0].Rotation, 1.0)

	res := c.Classify(region)
	assert.Equal(t, "accident", res.Label)
}

func TestClassifyEmptyRegion(t *testing.T) {
	c := New(&Library{}, DefaultParams(), nil)
	empty := gocv.NewMat()
	defer empty.Close()

	assert.Equal(t, Result{}, c.Classify(empty))
}
