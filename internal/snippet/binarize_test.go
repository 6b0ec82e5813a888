package snippet

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// drawForm paints rows x cols filled black squares on a white page.
func drawForm(rows, cols, size, step int) gocv.Mat {
	page := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 600, 700, gocv.MatTypeCV8UC3)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := 100+step*c, 100+step*r
			gocv.Rectangle(&page, image.Rect(x, y, x+size, y+size), color.RGBA{A: 255}, -1)
		}
	}
	return page
}

func TestBinarizeMarksInkWhite(t *testing.T) {
	page := drawForm(1, 1, 40, 80)
	defer page.Close()

	mask := Binarize(page, DefaultParams())
	defer mask.Close()

	require.Equal(t, 1, mask.Channels())
	assert.Equal(t, uint8(0), mask.GetUCharAt(10, 10), "blank paper stays black")
	assert.Equal(t, uint8(255), mask.GetUCharAt(101, 120), "square edge becomes white")
}

func TestLocateImageFindsDrawnGrid(t *testing.T) {
	page := drawForm(4, 5, 40, 80)
	defer page.Close()

	layout, err := LocateImage(page, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, 4, layout.Rows())
	for r := 0; r < 4; r++ {
		row, err := layout.Grid.Row(r)
		require.NoError(t, err)
		assert.Len(t, row, 5)
	}
	assert.InDelta(t, 80, layout.Right.X, 1)
	assert.InDelta(t, 80, layout.Down.Y, 1)

	first, err := layout.Cell(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100, first.Box.X, 1)
	assert.InDelta(t, 100, first.Box.Y, 1)
}

func TestLocateImageEmpty(t *testing.T) {
	_, err := LocateImage(gocv.NewMat(), DefaultParams())
	assert.Error(t, err)
}
