package blockhash

import (
	"fmt"
	"strings"

	"github.com/corona10/goimagehash"
)

const hexDigits = "0123456789abcdef"

// Hash is an immutable sequence of bits produced by Compute.
//
// Bits are packed most-significant first into 64-bit words, so bit 0 of the hash
// is the top bit of the first word.
type Hash struct {
	words []uint64
	n     int
}

func newHash(bits []bool) Hash {
	h := Hash{words: make([]uint64, (len(bits)+63)/64), n: len(bits)}
	for i, b := range bits {
		if b {
			h.words[i/64] |= 1 << (63 - uint(i%64))
		}
	}
	return h
}

// Len returns the number of bits in the hash.
func (h Hash) Len() int {
	return h.n
}

// IsZero reports whether h is the zero Hash (no bits).
func (h Hash) IsZero() bool {
	return h.n == 0
}

// Bit returns bit i (0-based, row-major over the block grid).
func (h Hash) Bit(i int) bool {
	if i < 0 || i >= h.n {
		panic(fmt.Sprintf("blockhash: bit index %d out of range [0,%d)", i, h.n))
	}
	return h.words[i/64]&(1<<(63-uint(i%64))) != 0
}

// Bits returns the hash as a string of '0' and '1' characters.
func (h Hash) Bits() string {
	var sb strings.Builder
	sb.Grow(h.n)
	for i := 0; i < h.n; i++ {
		if h.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// String returns the lowercase hex encoding of the hash, four bits per digit.
//
// When the bit count is not a multiple of four the final digit holds the remaining
// bits as its low-order bits, e.g. 9 bits "111111111" encode as "ff1".
func (h Hash) String() string {
	var sb strings.Builder
	sb.Grow((h.n + 3) / 4)
	for i := 0; i < h.n; i += 4 {
		var nibble byte
		for j := i; j < i+4 && j < h.n; j++ {
			nibble <<= 1
			if h.Bit(j) {
				nibble |= 1
			}
		}
		sb.WriteByte(hexDigits[nibble])
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler using the hex encoding.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Equal reports whether h and o hold the same bits.
func (h Hash) Equal(o Hash) bool {
	if h.n != o.n {
		return false
	}
	for i := range h.words {
		if h.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// Distance returns the Hamming distance between two hashes of the same length.
func (h Hash) Distance(o Hash) (int, error) {
	if h.n != o.n {
		return -1, fmt.Errorf("%w: %d bits vs %d bits", ErrLengthMismatch, h.n, o.n)
	}
	lhs := goimagehash.NewExtImageHash(h.words, goimagehash.Unknown, h.n)
	rhs := goimagehash.NewExtImageHash(o.words, goimagehash.Unknown, o.n)
	return lhs.Distance(rhs)
}

// ParseHash decodes a hex string produced by Hash.String.
//
// Parameters:
//   - s: Hex digits, case-insensitive.
//   - bits: The hash length the string encodes. Must be a positive perfect square.
//
// Returns ErrInvalidHash if s has the wrong length, holds a non-hex character, or
// sets bits beyond the hash length in its final digit.
func ParseHash(s string, bits int) (Hash, error) {
	if err := ValidateBits(bits); err != nil {
		return Hash{}, err
	}
	if want := (bits + 3) / 4; len(s) != want {
		return Hash{}, fmt.Errorf("%w: %d hex digits for %d bits, want %d", ErrInvalidHash, len(s), bits, want)
	}

	out := make([]bool, 0, bits)
	for i := 0; i < len(s); i++ {
		v := strings.IndexByte(hexDigits, lower(s[i]))
		if v < 0 {
			return Hash{}, fmt.Errorf("%w: invalid hex digit %q", ErrInvalidHash, s[i])
		}
		width := min(4, bits-len(out))
		if v>>width != 0 {
			return Hash{}, fmt.Errorf("%w: final digit %q exceeds %d bits", ErrInvalidHash, s[i], width)
		}
		for j := width - 1; j >= 0; j-- {
			out = append(out, v&(1<<j) != 0)
		}
	}

	return newHash(out), nil
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
