// Package geometry provides basic geometric types used throughout the application.
package geometry

import "image"

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointInt represents a 2D point with integer coordinates.
// Lattice positions and displacements are kept in integer pixels.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the sum of two points.
func (p PointInt) Add(other PointInt) PointInt {
	return PointInt{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p PointInt) Sub(other PointInt) PointInt {
	return PointInt{X: p.X - other.X, Y: p.Y - other.Y}
}

// Mul returns the point scaled by an integer factor.
func (p PointInt) Mul(k int) PointInt {
	return PointInt{X: p.X * k, Y: p.Y * k}
}

// DistanceSq returns the squared Euclidean distance to another point.
func (p PointInt) DistanceSq(other PointInt) int64 {
	dx := int64(p.X - other.X)
	dy := int64(p.Y - other.Y)
	return dx*dx + dy*dy
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromImageRect converts an image.Rectangle.
func FromImageRect(r image.Rectangle) RectInt {
	return RectInt{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Contains reports whether p lies inside the rectangle. The left and top
// edges are inclusive, the right and bottom edges exclusive.
func (r RectInt) Contains(p PointInt) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Area returns width times height.
func (r RectInt) Area() int {
	return r.Width * r.Height
}

// Center returns the center of the rectangle, truncated to integer pixels.
func (r RectInt) Center() PointInt {
	return PointInt{
		X: int(float64(r.X) + float64(r.Width)/2),
		Y: int(float64(r.Y) + float64(r.Height)/2),
	}
}

// Intersect returns the overlap of two rectangles (zero size if disjoint).
func (r RectInt) Intersect(other RectInt) RectInt {
	return FromImageRect(r.ToImage().Intersect(other.ToImage()))
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ToImage converts to image.Rectangle.
func (r RectInt) ToImage() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RotatedRect is a rectangle of the given size centred on Center and
// rotated by Angle degrees.
type RotatedRect struct {
	Center Point2D `json:"center"`
	Size   Size    `json:"size"`
	Angle  float64 `json:"angle"`
}
