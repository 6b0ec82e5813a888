// Command auditview shows random snippets next to the scan they came from
// and asks whether the label is right, reporting the audited precision and
// per-label precision and recall.
package main

import (
	"flag"
	"fmt"
	goimage "image"
	"os"
	"path/filepath"
	"time"

	"form-snippets/internal/classify"
	"form-snippets/internal/config"
	"form-snippets/internal/dataset"
	formimage "form-snippets/internal/image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"gocv.io/x/gocv"
)

const previewSize = 600

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	outDir := flag.String("output", cfg.OutputDir, "Snipper output directory")
	rounds := flag.Int("n", 20, "Number of snippets to review")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	reportPath := flag.String("report", "", "Write the audit figures as a JSON report to this path")
	flag.Parse()
	started := time.Now()

	reg, err := dataset.LoadRegistry(filepath.Join(*outDir, dataset.RegistryFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load form registry: %v\n", err)
		os.Exit(1)
	}

	s := newSession(*outDir, reg, *rounds, *seed)

	a := app.New()
	w := a.NewWindow("Snippet audit")

	scanImg := canvas.NewImageFromImage(nil)
	scanImg.FillMode = canvas.ImageFillContain
	scanImg.SetMinSize(fyne.NewSize(previewSize, previewSize))

	snipImg := canvas.NewImageFromImage(nil)
	snipImg.FillMode = canvas.ImageFillContain
	snipImg.SetMinSize(fyne.NewSize(previewSize/2, previewSize/2))

	info := widget.NewLabel("")
	status := widget.NewLabel("")

	truth := widget.NewSelect(classify.Labels, nil)
	truth.PlaceHolder = "True label (optional)"

	finish := func() {
		msg := fmt.Sprintf("Reviewed %d snippets\nPrecision: %.1f%%\nMean label precision: %.1f%%\nMean label recall: %.1f%%",
			s.checker.AuditCount(), s.precision()*100, s.checker.TotalPrecision()*100, s.checker.TotalRecall()*100)
		fmt.Println(msg)
		if *reportPath != "" {
			if err := s.checker.Report(started, time.Since(started)).Write(*reportPath); err != nil {
				dialog.ShowError(fmt.Errorf("write report: %w", err), w)
				return
			}
		}
		dialog.ShowInformation("Audit complete", msg, w)
	}

	var yes, no *widget.Button
	show := func() {
		if s.done() {
			yes.Disable()
			no.Disable()
			finish()
			return
		}
		sample, sidecar, err := s.next()
		if err != nil {
			dialog.ShowError(err, w)
			yes.Disable()
			no.Disable()
			return
		}
		scanImg.Image = thumbnail(sample.SourcePath, previewSize)
		scanImg.Refresh()
		snipImg.Image = snippetPreview(sample.Snippet, previewSize/2)
		snipImg.Refresh()
		info.SetText(fmt.Sprintf("%s\n\n%s", filepath.Base(sample.Snippet), sidecar))
		status.SetText(fmt.Sprintf("%d / %d reviewed, precision %.1f%%",
			s.checker.AuditCount(), s.rounds, s.precision()*100))
	}

	yes = widget.NewButton("Yes", func() {
		s.answer(true, "")
		truth.ClearSelected()
		show()
	})
	no = widget.NewButton("No", func() {
		s.answer(false, truth.Selected)
		truth.ClearSelected()
		show()
	})

	question := widget.NewLabel("Is the snippet labelled correctly?")
	right := container.NewVBox(snipImg, info, question, truth, container.NewGridWithColumns(2, yes, no))
	content := container.NewBorder(nil, container.NewPadded(status), nil, right, scanImg)

	w.SetContent(content)
	show()
	w.ShowAndRun()
}

// thumbnail loads path scaled to fit size, or nil when it cannot be read.
func thumbnail(path string, size int) goimage.Image {
	scan, err := formimage.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", path, err)
		return nil
	}
	return scan.Thumbnail(size, size)
}

// snippetPreview reads a saved snippet through OpenCV, the way the pipeline
// wrote it, and scales it to fit size.
func snippetPreview(path string, size int) goimage.Image {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	img, err := formimage.MatThumbnail(mat, size, size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", path, err)
		return nil
	}
	return img
}
