package crop

import (
	"errors"
	"fmt"

	"form-snippets/internal/snippet"

	"gocv.io/x/gocv"
)

// ExtractRow crops every cell of one grid row and saves it under meta, with
// Row and Col filled in per cell. It returns the number of saved snippets.
// A cell that trims to nothing is skipped and the remaining cells are still
// saved; the skipped cells are reported together as ErrEmptyRegion. A row
// beyond the grid yields snippet.ErrRowOutOfRange and a write failure stops
// the row.
func ExtractRow(src gocv.Mat, layout *snippet.Layout, row int, meta Meta, params Params, w *Writer) (int, error) {
	cells, err := layout.Grid.Row(row)
	if err != nil {
		return 0, err
	}

	saved := 0
	var skipped []error
	for col, idx := range cells {
		out, _, err := Cell(src, layout.Candidates[idx].Contour, params)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("row %d col %d: %w", row, col, err))
			continue
		}

		m := meta
		m.Row = row
		m.Col = col
		_, err = w.Save(out, m)
		out.Close()
		if err != nil {
			return saved, errors.Join(append(skipped, err)...)
		}
		saved++
	}
	return saved, errors.Join(skipped...)
}
