// Package blockhash computes perceptual block hashes of decoded raster images.
//
// A block hash partitions an image into an N×N grid of blocks, reduces every block
// to its mean intensity and thresholds each block against the median of the
// quadrant it lives in. Visually similar images produce identical or near-identical
// hashes regardless of re-encoding, mild resizing or compression artifacts.
//
// # Pipeline
//
//   - Sample: RGBA PixelGrid -> IntensityGrid (unweighted R+G+B, alpha ignored)
//   - Compute: IntensityGrid -> N×N block means -> quadrant median threshold -> Hash
//   - Fingerprint: Sample followed by Compute
//
// # Partitioning Methods
//
// Quick weights every pixel by the fraction of its unit square that overlaps each
// real-valued block boundary, so it works for any image size. Precise assigns every
// pixel to exactly one integer-sized block and is only exact when the image width
// and height are multiples of N; otherwise the last block row and column absorb the
// remaining pixels.
//
// # Bit Counts
//
// The number of bits must be a positive perfect square (16, 64, 144, 256, ...).
// N is its square root.
//
// # Thread Safety
//
// Every function in this package is a pure computation over its arguments. There is
// no package-level state, so concurrent calls are safe as long as callers do not
// mutate a PixelGrid while it is being hashed.
//
// # Error Handling
//
// Invalid input is reported with the sentinel errors ErrInvalidBitCount,
// ErrMalformedBuffer and ErrUnsupportedMethod, wrapped with context. Use errors.Is
// to test for them. No partial hash is ever returned alongside an error.
package blockhash
