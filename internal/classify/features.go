package classify

import (
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// methodRANSAC is cv::RANSAC.
const methodRANSAC = 8

// Features are the ORB keypoints and binary descriptors of an image.
type Features struct {
	Keypoints   []gocv.KeyPoint
	Descriptors gocv.Mat
}

// Close releases the descriptor matrix.
func (f *Features) Close() {
	f.Descriptors.Close()
}

// Empty reports whether no descriptors were extracted.
func (f *Features) Empty() bool {
	return f.Descriptors.Empty() || f.Descriptors.Rows() == 0
}

// Detect extracts ORB features from img.
func Detect(img gocv.Mat, p Params) Features {
	if img.Empty() {
		return Features{Descriptors: gocv.NewMat()}
	}
	orb := gocv.NewORBWithParams(p.MaxFeatures, p.ScaleFactor, p.Levels, p.EdgeThreshold,
		0, 2, gocv.ORBScoreTypeHarris, p.PatchSize, p.FastThreshold)
	defer orb.Close()

	gray := toGray(img)
	defer gray.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := orb.DetectAndCompute(gray, mask)
	return Features{Keypoints: kps, Descriptors: desc}
}

// Match compares region features against a template. The region
// descriptors are the query and the template descriptors the train set.
// When estimateRotation is set and enough matches survive, the rotation is
// read from the homography mapping template points onto region points.
func Match(region, tmpl *Features, estimateRotation bool, p Params) MatchResult {
	res := MatchResult{Rotation: p.DefaultRotation}
	if region.Empty() || tmpl.Empty() {
		return res
	}

	bf := gocv.NewBFMatcherWithParams(gocv.NormHamming, false)
	defer bf.Close()

	knn := bf.KnnMatch(region.Descriptors, tmpl.Descriptors, 2)
	good := loweFilter(knn, p.LoweRatio)
	res.Ratio = similarityRatio(len(good), len(knn))

	if estimateRotation && len(good) >= p.MinHomographyMatches {
		if h, ok := homography(good, region.Keypoints, tmpl.Keypoints, p); ok {
			res.Rotation = rotationFromHomography(h, p.DefaultRotation)
		}
	}
	return res
}

// loweFilter keeps pairs whose nearest distance is below ratio times the
// second nearest. Pairs with fewer than two neighbours are dropped.
func loweFilter(knn [][]gocv.DMatch, ratio float64) []gocv.DMatch {
	var good []gocv.DMatch
	for _, pair := range knn {
		if len(pair) < 2 {
			continue
		}
		if pair[0].Distance < ratio*pair[1].Distance {
			good = append(good, pair[0])
		}
	}
	return good
}

func similarityRatio(good, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(good) / float64(total) * 100
}

func homography(good []gocv.DMatch, regionKP, tmplKP []gocv.KeyPoint, p Params) (*mat.Dense, bool) {
	n := len(good)
	src := gocv.NewMatWithSize(n, 1, gocv.MatTypeCV64FC2)
	defer src.Close()
	dst := gocv.NewMatWithSize(n, 1, gocv.MatTypeCV64FC2)
	defer dst.Close()

	for i, m := range good {
		if m.TrainIdx >= len(tmplKP) || m.QueryIdx >= len(regionKP) {
			return nil, false
		}
		t := tmplKP[m.TrainIdx]
		r := regionKP[m.QueryIdx]
		src.SetDoubleAt(i, 0, t.X)
		src.SetDoubleAt(i, 1, t.Y)
		dst.SetDoubleAt(i, 0, r.X)
		dst.SetDoubleAt(i, 1, r.Y)
	}

	inliers := gocv.NewMat()
	defer inliers.Close()

	h := gocv.FindHomography(src, &dst, gocv.HomographyMethod(methodRANSAC), p.RansacThreshold,
		&inliers, p.RansacIterations, p.RansacConfidence)
	defer h.Close()

	if h.Empty() || h.Rows() != 3 || h.Cols() != 3 {
		return nil, false
	}

	data := make([]float64, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			data[r*3+c] = h.GetDoubleAt(r, c)
		}
	}
	return mat.NewDense(3, 3, data), true
}

// rotationFromHomography normalises the first column of h and returns
// |atan2(h10, h00)| in degrees.
func rotationFromHomography(h mat.Matrix, fallback float64) float64 {
	col := mat.Col(nil, 0, h)[:2]
	norm := floats.Norm(col, 2)
	if norm == 0 || math.IsNaN(norm) {
		return fallback
	}
	floats.Scale(1/norm, col)
	return math.Abs(math.Atan2(col[1], col[0]) * 180 / math.Pi)
}

// toGray returns a single channel copy of img.
func toGray(img gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}
	return gray
}

// regionSize reports the image size of m.
func regionSize(m gocv.Mat) image.Point {
	return image.Pt(m.Cols(), m.Rows())
}
