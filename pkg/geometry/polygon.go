package geometry

import (
	"image"
	"math"
)

// BoundingRect computes the upright bounding rectangle of a point set.
// Both extreme pixels are included, so a single point has size 1x1.
func BoundingRect(points []image.Point) RectInt {
	if len(points) == 0 {
		return RectInt{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// RotatePoints rotates points around center by degrees (positive turns
// clockwise on screen, since Y grows downward) and rounds to pixels.
func RotatePoints(points []image.Point, center Point2D, degrees float64) []image.Point {
	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	out := make([]image.Point, len(points))
	for i, p := range points {
		dx := float64(p.X) - center.X
		dy := float64(p.Y) - center.Y
		out[i] = image.Point{
			X: int(math.Round(center.X + dx*cos - dy*sin)),
			Y: int(math.Round(center.Y + dx*sin + dy*cos)),
		}
	}
	return out
}

// RectOutline returns the four corners of r in clockwise order starting at
// the top-left corner.
func RectOutline(r RectInt) []image.Point {
	x1, y1 := r.X+r.Width-1, r.Y+r.Height-1
	return []image.Point{{r.X, r.Y}, {x1, r.Y}, {x1, y1}, {r.X, y1}}
}
