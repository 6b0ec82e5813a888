// Command classifytest scores the reference icons of a form image against
// the template library and prints the per-template results.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"form-snippets/internal/classify"
	formimage "form-snippets/internal/image"
	"form-snippets/internal/snippet"
	"form-snippets/pkg/geometry"

	"gocv.io/x/gocv"
)

func main() {
	imagePath := flag.String("image", "", "Path to a form image, or a single icon with -icon")
	templates := flag.String("templates", "base2", "Template directory")
	icon := flag.Bool("icon", false, "Treat the image as one reference region")
	rule := flag.String("rule", "joint", "Label selection: joint or ratio-first")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: classifytest -image <path> [-templates base2] [-icon] [-rule joint|ratio-first]")
		os.Exit(1)
	}

	src, err := formimage.LoadMat(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	params := classify.DefaultParams().WithRule(classify.ParseLabelRule(*rule))
	fmt.Printf("Loading templates from %s...\n", *templates)
	lib, err := classify.LoadLibrary(*templates, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load templates: %v\n", err)
		os.Exit(1)
	}
	defer lib.Close()
	c := classify.New(lib, params, nil)

	fmt.Printf("\nParameters:\n")
	fmt.Printf("  ORB: %d features, scale %.2f, %d levels\n", params.MaxFeatures, params.ScaleFactor, params.Levels)
	fmt.Printf("  Lowe ratio: %.2f\n", params.LoweRatio)
	fmt.Printf("  Homography: >= %d matches, RANSAC %.1f px\n", params.MinHomographyMatches, params.RansacThreshold)
	fmt.Printf("  Size floor: %.0f%%  Rule: %s\n", params.SizeFloor, params.Rule)

	if *icon {
		report(c, src, params, "icon")
		return
	}

	layout, err := snippet.LocateImage(src, snippet.DefaultParams())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Locate failed: %v\n", err)
		os.Exit(1)
	}
	bounds := geometry.RectInt{Width: src.Cols(), Height: src.Rows()}

	for r := 0; r < layout.Rows(); r++ {
		rect, err := layout.ReferenceRegion(r, bounds)
		if err != nil {
			fmt.Printf("\nRow %d: %v\n", r, err)
			continue
		}
		region := src.Region(rect.ToImage())
		report(c, region, params, fmt.Sprintf("row %d", r))
		region.Close()
	}
}

func report(c *classify.Classifier, region gocv.Mat, params classify.Params, title string) {
	labels, sizes := c.Scores(region)

	fmt.Printf("\n=== %s (%dx%d) ===\n", title, region.Cols(), region.Rows())
	fmt.Printf("%-12s %8s %10s\n", "Template", "Ratio", "Rotation")
	fmt.Println(strings.Repeat("-", 32))
	for _, s := range labels {
		fmt.Printf("%-12s %7.1f%% %9.1f°\n", s.Name, s.Ratio, s.Rotation)
	}
	for _, s := range sizes {
		fmt.Printf("%-12s %7.1f%% %10s\n", s.Name, s.Ratio, "-")
	}

	label := classify.SelectLabel(labels, params)
	size := classify.SelectSize(sizes, params.SizeFloor)
	if label == "" {
		label = "(none)"
	}
	if size == "" {
		size = "(none)"
	}
	fmt.Printf("Label: %s  Size: %s\n", label, size)
}
