// Command gridtest locates the snippet grid of one form image and prints
// the layout, optionally drawing it over the image.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	formimage "form-snippets/internal/image"
	"form-snippets/internal/snippet"
	"form-snippets/pkg/geometry"

	"gocv.io/x/gocv"
)

func main() {
	imagePath := flag.String("image", "", "Path to form image")
	overlay := flag.String("overlay", "", "Write the image with the located grid drawn to this path")
	errFactor := flag.Float64("error-factor", snippet.DefaultParams().ErrorFactor, "Shape tolerance factor")
	minSnippets := flag.Int("min", snippet.DefaultParams().MinSnippets, "Minimum snippets for a valid page")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: gridtest -image <path> [-overlay out.png] [-error-factor 0.9] [-min 10]")
		os.Exit(1)
	}

	src, err := formimage.LoadMat(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()
	fmt.Printf("Loaded %dx%d pixels\n", src.Cols(), src.Rows())

	params := snippet.DefaultParams().WithErrorFactor(*errFactor).WithMinSnippets(*minSnippets)
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  Threshold: blur %d, block %d, C %.0f\n", params.BlurKernel, params.BlockSize, params.ThresholdC)
	fmt.Printf("  Error factor: %.2f\n", params.ErrorFactor)
	fmt.Printf("  Area window: skip %d, take %d\n", params.AreaSkip, params.AreaWindow)

	mask := snippet.Binarize(src, params)
	contours := snippet.FindContours(mask)
	mask.Close()
	fmt.Printf("\nContours: %d\n", len(contours))

	layout, err := snippet.Locate(contours, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Locate failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Snippets: %d (area %.0f px)\n", len(layout.Candidates), layout.SnippetArea)
	fmt.Printf("Top-left: #%d at %v\n", layout.TopLeft, layout.Candidates[layout.TopLeft].Center)
	fmt.Printf("Right: %v  Down: %v\n", layout.Right, layout.Down)
	fmt.Printf("Grid: %d rows, %d cells\n\n", layout.Rows(), layout.Grid.Cells())

	bounds := geometry.RectInt{Width: src.Cols(), Height: src.Rows()}
	fmt.Printf("%-5s %6s %22s\n", "Row", "Cells", "Reference")
	for r := 0; r < layout.Rows(); r++ {
		cells, _ := layout.Grid.Row(r)
		ref, err := layout.ReferenceRegion(r, bounds)
		refStr := fmt.Sprintf("(%d,%d %dx%d)", ref.X, ref.Y, ref.Width, ref.Height)
		if err != nil {
			refStr = err.Error()
		}
		fmt.Printf("%-5d %6d %22s\n", r, len(cells), refStr)
	}

	if *overlay == "" {
		return
	}

	green := color.RGBA{G: 200, A: 255}
	red := color.RGBA{R: 220, A: 255}
	blue := color.RGBA{B: 220, A: 255}

	for r := 0; r < layout.Rows(); r++ {
		cells, _ := layout.Grid.Row(r)
		for _, idx := range cells {
			gocv.Rectangle(&src, layout.Candidates[idx].Box.ToImage(), green, 2)
		}
		if ref, err := layout.ReferenceRegion(r, bounds); err == nil {
			gocv.Rectangle(&src, ref.ToImage(), red, 2)
		}
	}
	if id, err := layout.FormIDRegion(bounds); err == nil {
		gocv.Rectangle(&src, id.ToImage(), blue, 2)
	}

	if !gocv.IMWrite(*overlay, src) {
		fmt.Fprintf(os.Stderr, "Failed to write %s\n", *overlay)
		os.Exit(1)
	}
	fmt.Printf("\nOverlay written to %s\n", *overlay)
}
