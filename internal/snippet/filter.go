package snippet

import (
	"errors"
	"image"
	"sort"

	"form-snippets/pkg/geometry"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientSnippets is returned when too few candidates survive the
// shape filter for a lattice to be built. The image should be skipped.
var ErrInsufficientSnippets = errors.New("insufficient snippets")

// Candidate is a detected blob that may be a snippet cell.
type Candidate struct {
	Contour []image.Point    // Boundary points as extracted
	Box     geometry.RectInt // Upright bounding box of the contour
	Center  geometry.PointInt
}

// NewCandidate derives the bounding box and centre of a contour.
func NewCandidate(contour []image.Point) Candidate {
	box := geometry.BoundingRect(contour)
	return Candidate{
		Contour: contour,
		Box:     box,
		Center:  box.Center(),
	}
}

// EstimateSnippetArea returns the expected area of a snippet cell: the mean
// bounding-box area over ranks [skip, skip+window) of the areas sorted in
// descending order. The largest shapes are page borders and boxes and are
// never part of the window. Returns 0 when the window is empty.
func EstimateSnippetArea(areas []float64, skip, window int) float64 {
	sorted := make([]float64, len(areas))
	copy(sorted, areas)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	lo := min(skip, len(sorted))
	hi := min(skip+window, len(sorted))
	if hi <= lo {
		return 0
	}
	return stat.Mean(sorted[lo:hi], nil)
}

// IsSquare reports whether height and width are within factor of each other.
// Both comparisons are strict.
func IsSquare(box geometry.RectInt, factor float64) bool {
	h := float64(box.Height)
	w := float64(box.Width)
	return h > factor*w && h*factor < w
}

// HasSnippetSize reports whether area is within factor of the snippet area.
// Both comparisons are strict.
func HasSnippetSize(area, snippetArea, factor float64) bool {
	return area > factor*snippetArea && area*factor < snippetArea
}

// Filter keeps the contours whose bounding box is near-square and of the
// estimated snippet area. Input order is preserved. It also returns the area
// estimate used.
func Filter(contours [][]image.Point, params Params) ([]Candidate, float64) {
	all := make([]Candidate, len(contours))
	areas := make([]float64, len(contours))
	for i, c := range contours {
		all[i] = NewCandidate(c)
		areas[i] = float64(all[i].Box.Area())
	}

	snippetArea := EstimateSnippetArea(areas, params.AreaSkip, params.AreaWindow)

	var kept []Candidate
	for i, c := range all {
		if IsSquare(c.Box, params.ErrorFactor) && HasSnippetSize(areas[i], snippetArea, params.ErrorFactor) {
			kept = append(kept, c)
		}
	}
	return kept, snippetArea
}
