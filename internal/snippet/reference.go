package snippet

import (
	"errors"
	"fmt"

	"form-snippets/pkg/geometry"
)

// ErrRegionOutsideImage is returned when a derived region does not overlap
// the image at all.
var ErrRegionOutsideImage = errors.New("region outside image")

// IconSize returns the side of the square reference icon printed left of
// each row.
func (l *Layout) IconSize() int {
	return abs(l.Right.X) + abs(l.Down.X)
}

// IconCenter returns the centre of the reference icon of row r.
func (l *Layout) IconCenter(r int) (geometry.PointInt, error) {
	cells, err := l.Grid.Row(r)
	if err != nil {
		return geometry.PointInt{}, err
	}
	start := l.Candidates[cells[0]].Center
	k := l.params.IconOffset
	return geometry.PointInt{
		X: int(float64(start.X) - float64(l.Right.X+l.Down.X)*k),
		Y: int(float64(start.Y) - float64(l.Right.Y)*k),
	}, nil
}

// ReferenceRegion returns the square region holding the reference icon of
// row r (and its size marker), clipped to bounds.
func (l *Layout) ReferenceRegion(r int, bounds geometry.RectInt) (geometry.RectInt, error) {
	center, err := l.IconCenter(r)
	if err != nil {
		return geometry.RectInt{}, err
	}
	center.X -= l.Right.X / l.params.IconShift
	return l.squareAround(center, bounds)
}

// FormIDRegion returns the region above the first reference icon where the
// form identifier is printed, clipped to bounds.
func (l *Layout) FormIDRegion(bounds geometry.RectInt) (geometry.RectInt, error) {
	center, err := l.IconCenter(0)
	if err != nil {
		return geometry.RectInt{}, err
	}
	center.X -= l.Right.X / l.params.IconShift
	center.Y -= l.Down.Y
	return l.squareAround(center, bounds)
}

func (l *Layout) squareAround(center geometry.PointInt, bounds geometry.RectInt) (geometry.RectInt, error) {
	side := float64(l.IconSize())
	region := geometry.RectInt{
		X:      int(float64(center.X) - side/2),
		Y:      int(float64(center.Y) - side/2),
		Width:  int(side),
		Height: int(side),
	}
	clipped := region.Intersect(bounds)
	if clipped.Empty() {
		return geometry.RectInt{}, fmt.Errorf("%w: %+v not in %+v", ErrRegionOutsideImage, region, bounds)
	}
	return clipped, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
