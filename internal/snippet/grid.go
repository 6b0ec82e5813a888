package snippet

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"form-snippets/pkg/geometry"
)

// ErrRowOutOfRange is returned when a row index is beyond the located grid.
var ErrRowOutOfRange = errors.New("row out of range")

// Grid holds candidate indices row by row, left to right and top to bottom.
// Grid[0][0] is always the top-left candidate.
type Grid [][]int

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cells returns the total number of cells.
func (g Grid) Cells() int {
	n := 0
	for _, row := range g {
		n += len(row)
	}
	return n
}

// Row returns the candidate indices of row r.
func (g Grid) Row(r int) ([]int, error) {
	if r < 0 || r >= len(g) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrRowOutOfRange, r, len(g))
	}
	return g[r], nil
}

// CenterRank orders candidates by the sum of their centre coordinates.
type CenterRank struct {
	Index int // Position in the candidate slice
	Sum   int // Center.X + Center.Y
}

// TopLeft returns the index of the candidate whose centre minimises x+y.
// Ties go to the earliest candidate. Returns -1 for an empty slice.
func TopLeft(cands []Candidate) int {
	if len(cands) == 0 {
		return -1
	}
	ranks := make([]CenterRank, len(cands))
	for i, c := range cands {
		ranks[i] = CenterRank{Index: i, Sum: c.Center.X + c.Center.Y}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Sum < ranks[j].Sum
	})
	return ranks[0].Index
}

// BasisVectors derives the lattice steps from the two candidates nearest to
// the top-left one. The nearer neighbour with the greater x gives the
// rightward step, the other the downward step. Zero vectors are returned
// when fewer than two other candidates exist.
func BasisVectors(cands []Candidate, topLeft int) (right, down geometry.PointInt) {
	origin := cands[topLeft].Center

	first, second := -1, -1
	best, next := int64(math.MaxInt64), int64(math.MaxInt64)
	for i, c := range cands {
		if i == topLeft {
			continue
		}
		d := origin.DistanceSq(c.Center)
		switch {
		case d < best:
			second, next = first, best
			first, best = i, d
		case d < next:
			second, next = i, d
		}
	}
	if first < 0 || second < 0 {
		return geometry.PointInt{}, geometry.PointInt{}
	}

	p1 := cands[first].Center
	p2 := cands[second].Center
	if p1.X > p2.X {
		return p1.Sub(origin), p2.Sub(origin)
	}
	return p2.Sub(origin), p1.Sub(origin)
}

// IndexAt returns the first candidate whose bounding box contains p, or -1.
func IndexAt(cands []Candidate, p geometry.PointInt) int {
	for i, c := range cands {
		if c.Box.Contains(p) {
			return i
		}
	}
	return -1
}

// Walk builds the grid by visiting predicted lattice positions from the
// top-left candidate. A row ends at the first position that hits no candidate;
// the grid ends when the next row start is not found. A candidate is used
// at most once, which stops the walk on degenerate basis vectors.
func Walk(cands []Candidate, topLeft int, right, down geometry.PointInt) Grid {
	if topLeft < 0 || topLeft >= len(cands) {
		return nil
	}

	used := make([]bool, len(cands))
	origin := cands[topLeft].Center
	start := topLeft

	var grid Grid
	for r := 0; ; r++ {
		used[start] = true
		row := []int{start}
		rowOrigin := origin.Add(down.Mul(r))

		for c := 1; ; c++ {
			idx := IndexAt(cands, rowOrigin.Add(right.Mul(c)))
			if idx < 0 || used[idx] {
				break
			}
			used[idx] = true
			row = append(row, idx)
		}
		grid = append(grid, row)

		next := IndexAt(cands, origin.Add(down.Mul(r+1)))
		if next < 0 || used[next] {
			break
		}
		start = next
	}
	return grid
}
