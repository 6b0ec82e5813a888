package image

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// ToMat converts img to a BGR gocv.Mat.
func ToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)

	stripes(height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				mat.SetUCharAt(y, x*3+0, uint8(b>>8))
				mat.SetUCharAt(y, x*3+1, uint8(g>>8))
				mat.SetUCharAt(y, x*3+2, uint8(r>>8))
			}
		}
	})
	return mat, nil
}

// FromMat converts a BGR or grayscale gocv.Mat to an RGBA image.
func FromMat(mat gocv.Mat) (*image.RGBA, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty matrix")
	}
	h, w := mat.Rows(), mat.Cols()
	ch := mat.Channels()
	if ch != 1 && ch != 3 {
		return nil, fmt.Errorf("unsupported channel count %d", ch)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	stride := img.Stride

	stripes(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			rowOffset := y * stride
			for x := 0; x < w; x++ {
				p := rowOffset + x*4
				if ch == 1 {
					v := mat.GetUCharAt(y, x)
					img.Pix[p+0], img.Pix[p+1], img.Pix[p+2] = v, v, v
				} else {
					img.Pix[p+0] = mat.GetUCharAt(y, x*3+2)
					img.Pix[p+1] = mat.GetUCharAt(y, x*3+1)
					img.Pix[p+2] = mat.GetUCharAt(y, x*3+0)
				}
				img.Pix[p+3] = 255
			}
		}
	})
	return img, nil
}

// MatThumbnail converts mat and scales it to fit within w x h.
func MatThumbnail(mat gocv.Mat, w, h int) (image.Image, error) {
	img, err := FromMat(mat)
	if err != nil {
		return nil, err
	}
	return imaging.Fit(img, w, h, imaging.Lanczos), nil
}

// stripes runs fn over horizontal bands of rows in parallel.
func stripes(rows int, fn func(yStart, yEnd int)) {
	numWorkers := runtime.NumCPU()
	rowsPerWorker := (rows + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := min(startY+rowsPerWorker, rows)
		if startY >= rows {
			break
		}
		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			fn(yStart, yEnd)
		}(startY, endY)
	}
	wg.Wait()
}
