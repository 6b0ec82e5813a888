package snippet

import (
	"fmt"
	"image"

	"form-snippets/pkg/geometry"
)

// Layout is the located lattice of one form image.
type Layout struct {
	Candidates  []Candidate
	SnippetArea float64
	TopLeft     int
	Right       geometry.PointInt // One lattice step to the right
	Down        geometry.PointInt // One lattice step down
	Grid        Grid
	params      Params
}

// Locate runs the shape filter and lattice reconstruction on the external
// contours of a binarized form.
func Locate(contours [][]image.Point, params Params) (*Layout, error) {
	cands, area := Filter(contours, params)
	if len(cands) < params.MinSnippets {
		return nil, fmt.Errorf("%w: found %d, need %d", ErrInsufficientSnippets, len(cands), params.MinSnippets)
	}

	topLeft := TopLeft(cands)
	right, down := BasisVectors(cands, topLeft)

	return &Layout{
		Candidates:  cands,
		SnippetArea: area,
		TopLeft:     topLeft,
		Right:       right,
		Down:        down,
		Grid:        Walk(cands, topLeft, right, down),
		params:      params,
	}, nil
}

// Rows returns the number of grid rows.
func (l *Layout) Rows() int {
	return l.Grid.Rows()
}

// Cell returns the candidate at (row, col).
func (l *Layout) Cell(row, col int) (Candidate, error) {
	cells, err := l.Grid.Row(row)
	if err != nil {
		return Candidate{}, err
	}
	if col < 0 || col >= len(cells) {
		return Candidate{}, fmt.Errorf("column %d of %d in row %d", col, len(cells), row)
	}
	return l.Candidates[cells[col]], nil
}
