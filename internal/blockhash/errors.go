package blockhash

import "errors"

var (
	// ErrInvalidBitCount is returned when bits is not a positive perfect square.
	ErrInvalidBitCount = errors.New("invalid bit count")

	// ErrMalformedBuffer is returned when a pixel or intensity buffer does not match
	// its declared dimensions.
	ErrMalformedBuffer = errors.New("malformed buffer")

	// ErrUnsupportedMethod is returned for a Method other than Quick or Precise.
	ErrUnsupportedMethod = errors.New("unsupported method")

	// ErrLengthMismatch is returned when comparing hashes of different lengths.
	ErrLengthMismatch = errors.New("hash length mismatch")

	// ErrInvalidHash is returned by ParseHash for malformed hex input.
	ErrInvalidHash = errors.New("invalid hash")
)
