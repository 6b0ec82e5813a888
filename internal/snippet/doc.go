// Package snippet locates the grid of pictogram cells printed on a scanned
// form.
//
// Location is a chain of pure stages, each returning a value consumed by the
// next:
//
//	contours -> Filter -> TopLeft -> BasisVectors -> Walk -> Layout
//
// Only Binarize and FindContours touch OpenCV; everything after contour
// extraction works on plain Go values and can be exercised with synthetic
// candidates. A Layout belongs to one image and is never shared between
// images.
package snippet
