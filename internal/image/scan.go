// Package image loads scanned form pages and converts between Go images
// and OpenCV matrices.
package image

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for files whose extension is not a
// supported image type.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Scan is a decoded form page.
type Scan struct {
	Path  string      // Source file path
	Image image.Image // Decoded pixels, EXIF orientation applied
}

// Load decodes the image at path. JPEG orientation tags are honoured so
// phone photos come out upright.
func Load(path string) (*Scan, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Scan{Path: path, Image: img}, nil
}

// LoadMat decodes the image at path straight into a BGR matrix.
func LoadMat(path string) (gocv.Mat, error) {
	scan, err := Load(path)
	if err != nil {
		return gocv.NewMat(), err
	}
	return scan.Mat()
}

// Width returns the image width in pixels.
func (s *Scan) Width() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Scan) Height() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// Mat converts the scan to a BGR matrix. The caller owns the result.
func (s *Scan) Mat() (gocv.Mat, error) {
	if s.Image == nil {
		return gocv.NewMat(), fmt.Errorf("scan %s has no pixels", s.Path)
	}
	return ToMat(s.Image)
}

// Thumbnail returns a copy scaled to fit within w x h.
func (s *Scan) Thumbnail(w, h int) image.Image {
	return imaging.Fit(s.Image, w, h, imaging.Lanczos)
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg", ".bmp", ".gif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
