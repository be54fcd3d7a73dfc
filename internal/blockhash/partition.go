package blockhash

// overlap is the share of one pixel that falls into one block along a single axis.
// weight is measured in units of 1/N pixel so that it stays an integer.
type overlap struct {
	block  int
	weight int64
}

// axisOverlaps maps every pixel along an axis of length size to the blocks it
// overlaps when the axis is split into n equal real-valued blocks.
//
// Scaled by n, pixel p spans [p*n, (p+1)*n) and block b spans [b*size, (b+1)*size),
// so all boundaries are integers and the overlaps are exact.
func axisOverlaps(size, n int) [][]overlap {
	spans := make([][]overlap, size)
	for p := 0; p < size; p++ {
		lo, hi := p*n, (p+1)*n
		for b := lo / size; b <= (hi-1)/size && b < n; b++ {
			w := min(hi, (b+1)*size) - max(lo, b*size)
			if w > 0 {
				spans[p] = append(spans[p], overlap{block: b, weight: int64(w)})
			}
		}
	}
	return spans
}

// quickBlocks reduces g to n×n area-weighted block means.
//
// Every pixel contributes to each block its unit square overlaps, weighted by the
// overlap area. When the dimensions are multiples of n every pixel lands wholly in
// one block and the result equals preciseBlocks.
func quickBlocks(g *IntensityGrid, n int) []float64 {
	cols := axisOverlaps(g.Width, n)
	rows := axisOverlaps(g.Height, n)

	sums := make([]int64, n*n)
	weights := make([]int64, n*n)

	for y := 0; y < g.Height; y++ {
		row := g.Values[y*g.Width : (y+1)*g.Width]
		for _, ry := range rows[y] {
			base := ry.block * n
			for x, v := range row {
				for _, cx := range cols[x] {
					w := ry.weight * cx.weight
					sums[base+cx.block] += int64(v) * w
					weights[base+cx.block] += w
				}
			}
		}
	}

	return means(sums, weights)
}

// preciseBlocks reduces g to n×n block means over integer-sized blocks of
// floor(width/n) × floor(height/n) pixels.
//
// Pixels past the last full block boundary are folded into the last block column
// and row. If a dimension is smaller than n the leading blocks on that axis are
// empty (mean 0) and the last block holds every pixel.
func preciseBlocks(g *IntensityGrid, n int) []float64 {
	colBlock := blockIndex(g.Width, n)
	rowBlock := blockIndex(g.Height, n)

	sums := make([]int64, n*n)
	counts := make([]int64, n*n)

	for y := 0; y < g.Height; y++ {
		base := rowBlock[y] * n
		row := g.Values[y*g.Width : (y+1)*g.Width]
		for x, v := range row {
			sums[base+colBlock[x]] += int64(v)
			counts[base+colBlock[x]]++
		}
	}

	return means(sums, counts)
}

// blockIndex returns the precise block index of every pixel along an axis.
func blockIndex(size, n int) []int {
	blockSize := size / n
	idx := make([]int, size)
	for p := range idx {
		if blockSize == 0 {
			idx[p] = n - 1
			continue
		}
		idx[p] = min(p/blockSize, n-1)
	}
	return idx
}

func means(sums, weights []int64) []float64 {
	out := make([]float64, len(sums))
	for i := range sums {
		if weights[i] > 0 {
			out[i] = float64(sums[i]) / float64(weights[i])
		}
	}
	return out
}
