package blockhash

import "sort"

// thresholdQuadrants converts an n×n block grid into bits, comparing every block
// with the median of its quadrant. Bits are returned row-major.
func thresholdQuadrants(blocks []float64, n int) []bool {
	half := n / 2
	spans := [2][2]int{{0, half}, {half, n}}

	out := make([]bool, n*n)
	scratch := make([]float64, 0, (n-half)*(n-half))

	for _, rs := range spans {
		for _, cs := range spans {
			scratch = scratch[:0]
			for r := rs[0]; r < rs[1]; r++ {
				scratch = append(scratch, blocks[r*n+cs[0]:r*n+cs[1]]...)
			}
			// A quadrant is empty only when n == 1.
			if len(scratch) == 0 {
				continue
			}

			m := median(scratch)
			for r := rs[0]; r < rs[1]; r++ {
				for c := cs[0]; c < cs[1]; c++ {
					out[r*n+c] = blocks[r*n+c] >= m
				}
			}
		}
	}

	return out
}

// median sorts values in place and returns their median. For an even count it is
// the mean of the two middle values.
func median(values []float64) float64 {
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}
