package crop

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// Meta identifies a snippet and names its files.
type Meta struct {
	Label      string
	Size       string // Empty when the row has no size marker
	ScripterID string
	PageID     string
	Row        int
	Col        int
}

// Stem returns the file name without extension:
// <label>_<scripter>_<page>_<row>_<col>.
func (m Meta) Stem() string {
	return fmt.Sprintf("%s_%s_%s_%d_%d", m.Label, m.ScripterID, m.PageID, m.Row, m.Col)
}

// Form returns the form identifier, scripter followed by page.
func (m Meta) Form() string {
	return m.ScripterID + m.PageID
}

// WriteSidecar writes the key/value description of a snippet.
func WriteSidecar(w io.Writer, m Meta) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "label %s\n", m.Label)
	fmt.Fprintf(bw, "form %s\n", m.Form())
	fmt.Fprintf(bw, "scripter %s\n", m.ScripterID)
	fmt.Fprintf(bw, "page %s\n", m.PageID)
	fmt.Fprintf(bw, "row %d\n", m.Row)
	fmt.Fprintf(bw, "column %d\n", m.Col)
	fmt.Fprintf(bw, "size %s\n", m.Size)
	return bw.Flush()
}

// Writer saves snippets as <stem>.png plus a <stem>.txt sidecar.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Save writes the snippet image and its sidecar, returning the path stem.
func (w *Writer) Save(snippet gocv.Mat, m Meta) (string, error) {
	stem := filepath.Join(w.dir, m.Stem())

	if !gocv.IMWrite(stem+".png", snippet) {
		return "", fmt.Errorf("failed to write %s.png", stem)
	}

	f, err := os.Create(stem + ".txt")
	if err != nil {
		return "", fmt.Errorf("failed to create sidecar: %w", err)
	}
	if err := WriteSidecar(f, m); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write sidecar: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close sidecar: %w", err)
	}
	return stem, nil
}
