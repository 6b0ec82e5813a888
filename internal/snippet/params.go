package snippet

// Params holds the tunables of binarization, shape filtering and location.
type Params struct {
	// Binarization
	BlurKernel int     // Gaussian blur kernel size (odd)
	BlockSize  int     // Adaptive threshold neighbourhood (odd)
	ThresholdC float64 // Constant subtracted from the neighbourhood mean

	// Shape filtering
	ErrorFactor float64 // Tolerance for squareness and area, e.g. 0.9
	AreaSkip    int     // Largest bounding boxes ignored when estimating the snippet area
	AreaWindow  int     // Boxes averaged after the skipped ones
	MinSnippets int     // Fewer surviving candidates means the image is unusable

	// Reference icon geometry, relative to the lattice vectors
	IconOffset float64 // Distance of the icon centre left of the row start
	IconShift  int     // Divisor of the rightward vector for the final x shift
}

// DefaultParams returns the parameters tuned for the fixed form layout.
func DefaultParams() Params {
	return Params{
		BlurKernel: 3,
		BlockSize:  11,
		ThresholdC: 15,

		ErrorFactor: 0.9,
		AreaSkip:    3, // page borders and boxes
		AreaWindow:  5,
		MinSnippets: 10,

		IconOffset: 1.14,
		IconShift:  10,
	}
}

// WithErrorFactor returns a copy of params with a different tolerance.
func (p Params) WithErrorFactor(factor float64) Params {
	p.ErrorFactor = factor
	return p
}

// WithMinSnippets returns a copy of params with a different candidate floor.
func (p Params) WithMinSnippets(n int) Params {
	p.MinSnippets = n
	return p
}

// WithAreaWindow returns a copy of params averaging window boxes after
// skipping the skip largest ones.
func (p Params) WithAreaWindow(skip, window int) Params {
	p.AreaSkip = skip
	p.AreaWindow = window
	return p
}
