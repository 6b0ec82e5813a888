package snippet

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Binarize converts a form image to a binary mask where ink is white:
// grayscale, Gaussian blur, then an inverted mean adaptive threshold.
// The caller owns the returned Mat.
func Binarize(src gocv.Mat, params Params) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if src.Channels() == 1 {
		src.CopyTo(&gray)
	} else {
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := params.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Point{k, k}, 0, 0, gocv.BorderDefault)

	mask := gocv.NewMat()
	gocv.AdaptiveThreshold(blurred, &mask, 255,
		gocv.AdaptiveThresholdMean, gocv.ThresholdBinaryInv, params.BlockSize, float32(params.ThresholdC))
	return mask
}

// FindContours extracts the external contours of a binary mask as plain
// point slices, in the order OpenCV reports them.
func FindContours(mask gocv.Mat) [][]image.Point {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([][]image.Point, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		out[i] = contours.At(i).ToPoints()
	}
	return out
}

// LocateImage binarizes a form image and locates its snippet grid.
func LocateImage(src gocv.Mat, params Params) (*Layout, error) {
	if src.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	mask := Binarize(src, params)
	defer mask.Close()

	return Locate(FindContours(mask), params)
}
