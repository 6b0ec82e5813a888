package crop

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"form-snippets/internal/snippet"
	"form-snippets/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestDeskewFoldsAngle(t *testing.T) {
	tests := []struct {
		name      string
		in        geometry.RotatedRect
		wantAngle float64
		wantSize  geometry.Size
	}{
		{"upright", geometry.RotatedRect{Size: geometry.Size{Width: 40, Height: 30}, Angle: 0}, 0, geometry.Size{Width: 40, Height: 30}},
		{"small tilt", geometry.RotatedRect{Size: geometry.Size{Width: 40, Height: 30}, Angle: -20}, -20, geometry.Size{Width: 40, Height: 30}},
		{"boundary kept", geometry.RotatedRect{Size: geometry.Size{Width: 40, Height: 30}, Angle: -45}, -45, geometry.Size{Width: 40, Height: 30}},
		{"below -45", geometry.RotatedRect{Size: geometry.Size{Width: 40, Height: 30}, Angle: -80}, 10, geometry.Size{Width: 30, Height: 40}},
		{"legacy upright", geometry.RotatedRect{Size: geometry.Size{Width: 40, Height: 30}, Angle: -90}, 0, geometry.Size{Width: 30, Height: 40}},
		{"modern upright", geometry.RotatedRect{Size: geometry.Size{Width: 40, Height: 30}, Angle: 90}, 0, geometry.Size{Width: 30, Height: 40}},
		{"modern tilt", geometry.RotatedRect{Size: geometry.Size{Width: 40, Height: 30}, Angle: 70}, -20, geometry.Size{Width: 30, Height: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deskew(tt.in)
			assert.InDelta(t, tt.wantAngle, got.Angle, 1e-9)
			assert.Equal(t, tt.wantSize, got.Size)
		})
	}
}

// fold maps an angle to its quarter-turn equivalent in (-45, 45].
func fold(deg float64) float64 {
	a := math.Mod(deg, 90)
	if a > 45 {
		a -= 90
	}
	if a <= -45 {
		a += 90
	}
	return a
}

// rotatedRect returns the outline of a w x h rectangle centred on center,
// turned by degrees.
func rotatedRect(center geometry.Point2D, w, h int, degrees float64) []image.Point {
	box := geometry.RectInt{X: int(center.X) - w/2, Y: int(center.Y) - h/2, Width: w, Height: h}
	return geometry.RotatePoints(geometry.RectOutline(box), center, degrees)
}

func fillPoly(t *testing.T, page *gocv.Mat, pts []image.Point, c color.RGBA) {
	t.Helper()
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(page, pv, c)
}

// stripeAngle measures the orientation of the largest light shape in img.
func stripeAngle(t *testing.T, img gocv.Mat) geometry.RotatedRect {
	t.Helper()
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, 128, 255, gocv.ThresholdBinary)

	contours := snippet.FindContours(mask)
	require.NotEmpty(t, contours)

	largest := contours[0]
	for _, c := range contours[1:] {
		if geometry.BoundingRect(c).Area() > geometry.BoundingRect(largest).Area() {
			largest = c
		}
	}
	return MinAreaRect(largest)
}

func TestCellRoundTripOrientation(t *testing.T) {
	center := geometry.Point2D{X: 250, Y: 250}

	for _, theta := range []float64{0, 15, 30, -60} {
		t.Run(fmt.Sprintf("theta=%v", theta), func(t *testing.T) {
			page := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 500, 500, gocv.MatTypeCV8UC3)
			defer page.Close()

			// dark 160x100 cell with a light 100x20 stripe along its long axis
			contour := rotatedRect(center, 160, 100, theta)
			fillPoly(t, &page, contour, color.RGBA{A: 255})
			fillPoly(t, &page, rotatedRect(center, 100, 20, theta), color.RGBA{R: 255, G: 255, B: 255, A: 255})

			out, _, err := Cell(page, contour, DefaultParams())
			require.NoError(t, err)
			defer out.Close()

			long, short := max(out.Cols(), out.Rows()), min(out.Cols(), out.Rows())
			assert.InDelta(t, 140, long, 3)
			assert.InDelta(t, 80, short, 3)

			stripe := stripeAngle(t, out)
			assert.InDelta(t, 0, fold(stripe.Angle), 1.5, "stripe tilted by %v", stripe.Angle)
			assert.InDelta(t, 100, math.Max(stripe.Size.Width, stripe.Size.Height), 4)
			assert.InDelta(t, 20, math.Min(stripe.Size.Width, stripe.Size.Height), 4)

			// only the stripe is light: 100*20 of a 139x79 crop
			mean := out.Mean()
			assert.InDelta(t, 255*2000.0/(139*79), mean.Val1, 8)
		})
	}
}

func TestCellTooSmallForMargin(t *testing.T) {
	page := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 100, 100, gocv.MatTypeCV8UC3)
	defer page.Close()

	contour := geometry.RectOutline(geometry.RectInt{X: 40, Y: 40, Width: 15, Height: 15})
	_, _, err := Cell(page, contour, DefaultParams())
	assert.True(t, errors.Is(err, ErrEmptyRegion))
}
