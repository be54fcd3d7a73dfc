package blockhash

import (
	"fmt"
	"strings"
)

// Method selects the spatial partitioning strategy used to build the block grid.
//
// The zero value is not a valid method; Compute rejects it with ErrUnsupportedMethod.
type Method int

const (
	// Quick uses area-weighted partitioning with real-valued block boundaries.
	// It produces correct block averages for any image size.
	Quick Method = iota + 1

	// Precise uses integer block boundaries of floor(width/N) × floor(height/N)
	// pixels. Only exact when both dimensions are multiples of N.
	Precise
)

// String returns "quick" or "precise".
func (m Method) String() string {
	switch m {
	case Quick:
		return "quick"
	case Precise:
		return "precise"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Valid reports whether m is Quick or Precise.
func (m Method) Valid() bool {
	return m == Quick || m == Precise
}

// ParseMethod converts a method name to a Method.
//
// Accepted values (case-insensitive):
//   - "", "quick", "1", "false" -> Quick
//   - "precise", "2", "true"    -> Precise
//
// The numeric and boolean spellings keep compatibility with callers that still pass
// the historical method flag, where true selected the precise variant.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quick", "1", "false":
		return Quick, nil
	case "precise", "2", "true":
		return Precise, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMethod, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
