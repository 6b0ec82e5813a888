// Package crop cuts deskewed snippet images out of a form and persists them
// with their metadata.
package crop

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"form-snippets/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrEmptyRegion is returned when nothing remains of a cell after trimming.
var ErrEmptyRegion = errors.New("empty crop region")

// Params holds cropping parameters.
type Params struct {
	Margin        int                     // Pixels trimmed from every side after deskewing
	Interpolation gocv.InterpolationFlags // Warp interpolation
}

// DefaultParams returns the cropping parameters used for snippet extraction.
func DefaultParams() Params {
	return Params{
		Margin:        10,
		Interpolation: gocv.InterpolationCubic,
	}
}

// MinAreaRect returns the minimum-area rotated rectangle enclosing contour.
func MinAreaRect(contour []image.Point) geometry.RotatedRect {
	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	r := gocv.MinAreaRect(pv)
	return geometry.RotatedRect{
		Center: geometry.Point2D{X: float64(r.Center.X), Y: float64(r.Center.Y)},
		Size:   geometry.Size{Width: float64(r.Width), Height: float64(r.Height)},
		Angle:  r.Angle,
	}
}

// Deskew folds the rectangle angle into [-45, 45] degrees, swapping width
// and height whenever a quarter turn is added or removed. OpenCV reports
// angles in [-90, 0) before 4.5.1 and in (0, 90] after; both fold the same
// way.
func Deskew(rect geometry.RotatedRect) geometry.RotatedRect {
	switch {
	case rect.Angle < -45:
		rect.Angle += 90
		rect.Size.Width, rect.Size.Height = rect.Size.Height, rect.Size.Width
	case rect.Angle > 45:
		rect.Angle -= 90
		rect.Size.Width, rect.Size.Height = rect.Size.Height, rect.Size.Width
	}
	return rect
}

// Cell cuts the snippet enclosed by contour out of src: the minimum-area
// rectangle is deskewed, the image is rotated about its centre so the
// rectangle becomes upright, and Margin pixels are trimmed from each side.
// The caller owns the returned Mat.
func Cell(src gocv.Mat, contour []image.Point, params Params) (gocv.Mat, geometry.RotatedRect, error) {
	rect := Deskew(MinAreaRect(contour))

	// Only a patch around the cell needs rotating; its half-diagonal bounds
	// everything the upright rectangle can cover.
	reach := int(math.Ceil(math.Hypot(rect.Size.Width, rect.Size.Height)/2)) + 2
	cx := int(math.Round(rect.Center.X))
	cy := int(math.Round(rect.Center.Y))
	imgBounds := image.Rect(0, 0, src.Cols(), src.Rows())
	patchRect := image.Rect(cx-reach, cy-reach, cx+reach, cy+reach).Intersect(imgBounds)
	if patchRect.Empty() {
		return gocv.NewMat(), rect, fmt.Errorf("%w: cell centre (%d,%d) outside image", ErrEmptyRegion, cx, cy)
	}

	patch := src.Region(patchRect)
	defer patch.Close()

	local := image.Point{X: cx - patchRect.Min.X, Y: cy - patchRect.Min.Y}
	rot := gocv.GetRotationMatrix2D(local, rect.Angle, 1.0)
	defer rot.Close()

	rotated := gocv.NewMat()
	defer rotated.Close()
	gocv.WarpAffineWithParams(patch, &rotated, rot, image.Point{X: patch.Cols(), Y: patch.Rows()},
		params.Interpolation, gocv.BorderConstant, color.RGBA{})

	w := int(rect.Size.Width)
	h := int(rect.Size.Height)
	upright := image.Rect(local.X-w/2, local.Y-h/2, local.X-w/2+w, local.Y-h/2+h)
	trimmed := upright.Inset(params.Margin).Intersect(image.Rect(0, 0, rotated.Cols(), rotated.Rows()))
	if upright.Dx() <= 2*params.Margin || upright.Dy() <= 2*params.Margin || trimmed.Empty() {
		return gocv.NewMat(), rect, fmt.Errorf("%w: %dx%d cell with %dpx margin", ErrEmptyRegion, w, h, params.Margin)
	}

	region := rotated.Region(trimmed)
	defer region.Close()
	return region.Clone(), rect, nil
}
