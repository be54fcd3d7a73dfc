package blockhash

import (
	"fmt"
	"io"
	"log"
	"math"
)

// Option configures a Fingerprint call.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger routes debug traces (grid size, block layout) to l.
// By default nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Fingerprint samples p and computes its block hash.
//
// Parameters:
//   - p: Decoded RGBA pixels (see PixelGrid).
//   - bits: Hash length. Must be a positive perfect square such as 16, 64 or 256.
//   - method: Quick or Precise.
//   - opts: Optional settings such as WithLogger.
//
// Returns:
//   - Hash: Exactly bits binary digits.
//   - error: ErrInvalidBitCount, ErrMalformedBuffer or ErrUnsupportedMethod.
//
// The call is synchronous and keeps no state between invocations.
func Fingerprint(p PixelGrid, bits int, method Method, opts ...Option) (Hash, error) {
	o := options{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(&o)
	}

	// Validate cheap parameters before touching the pixels.
	n, err := gridSize(bits)
	if err != nil {
		return Hash{}, err
	}
	if !method.Valid() {
		return Hash{}, fmt.Errorf("%w: %d", ErrUnsupportedMethod, int(method))
	}

	grid, err := Sample(p)
	if err != nil {
		return Hash{}, err
	}

	o.logger.Printf("blockhash: %dx%d image, %d bits (%dx%d blocks), method %s",
		grid.Width, grid.Height, bits, n, n, method)
	if method == Precise && (grid.Width%n != 0 || grid.Height%n != 0) {
		o.logger.Printf("blockhash: %dx%d is not divisible by %d, precise blocks are approximate",
			grid.Width, grid.Height, n)
	}

	return Compute(grid, bits, method)
}

// Compute derives the block hash of an intensity grid.
//
// Parameters:
//   - g: Intensity grid produced by Sample (or an equivalent caller-built grid).
//   - bits: Hash length. Must be a positive perfect square.
//   - method: Quick or Precise partitioning.
//
// Returns:
//   - Hash: Exactly bits binary digits, row-major over the N×N block grid.
//   - error: ErrInvalidBitCount, ErrUnsupportedMethod or ErrMalformedBuffer.
//
// # Thresholding
//
// The N×N block grid is split into four quadrants at N/2 (integer division) on both
// axes. For odd N the bottom quadrants get the extra row and the right quadrants get
// the extra column. Each block yields a 1 bit when its value is greater than or equal
// to the median of its own quadrant, otherwise 0.
func Compute(g *IntensityGrid, bits int, method Method) (Hash, error) {
	n, err := gridSize(bits)
	if err != nil {
		return Hash{}, err
	}
	if err := g.Validate(); err != nil {
		return Hash{}, err
	}

	var blocks []float64
	switch method {
	case Quick:
		blocks = quickBlocks(g, n)
	case Precise:
		blocks = preciseBlocks(g, n)
	default:
		return Hash{}, fmt.Errorf("%w: %d", ErrUnsupportedMethod, int(method))
	}

	return newHash(thresholdQuadrants(blocks, n)), nil
}

// gridSize returns N = sqrt(bits), or ErrInvalidBitCount if bits is not a positive
// perfect square.
func gridSize(bits int) (int, error) {
	if bits <= 0 {
		return 0, fmt.Errorf("%w: %d must be positive", ErrInvalidBitCount, bits)
	}
	n := int(math.Sqrt(float64(bits)))
	for n*n > bits {
		n--
	}
	for (n+1)*(n+1) <= bits {
		n++
	}
	if n*n != bits {
		return 0, fmt.Errorf("%w: %d is not a perfect square", ErrInvalidBitCount, bits)
	}
	return n, nil
}

// ValidateBits reports whether bits is usable as a hash length.
func ValidateBits(bits int) error {
	_, err := gridSize(bits)
	return err
}
