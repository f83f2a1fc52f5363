// Package hypercube implements the layer arithmetic needed by the
// Target-Sum message encoding (spec §4.C): counting and enumerating
// vertices of {0,...,w-1}^v by coordinate-sum layer, and mapping
// between a layer-local rank and its vertex.
package hypercube

import (
	"math/big"
	"sync"
)

// LayerInfo holds the per-layer vertex counts for a fixed (w, v), plus
// their running totals.
type LayerInfo struct {
	Sizes      []*big.Int // number of vertices in each layer d
	prefixSums []*big.Int // cumulative vertex count across layers [0, d]
}

// NewLayerInfo computes layer info for hypercube {0,...,w-1}^v. Layer d
// contains every vertex whose coordinates sum to (w-1)*v - d, so layer
// 0 is the single all-(w-1) vertex and layer (w-1)*v is the all-zero one.
func NewLayerInfo(w, v int) *LayerInfo {
	maxLayer := v * (w - 1)
	info := &LayerInfo{
		Sizes:      make([]*big.Int, maxLayer+1),
		prefixSums: make([]*big.Int, maxLayer+1),
	}

	for layer := 0; layer <= maxLayer; layer++ {
		targetSum := (w-1)*v - layer
		info.Sizes[layer] = countWaysSum(w, v, targetSum)

		if layer == 0 {
			info.prefixSums[layer] = new(big.Int).Set(info.Sizes[layer])
		} else {
			info.prefixSums[layer] = new(big.Int).Add(info.prefixSums[layer-1], info.Sizes[layer])
		}
	}

	return info
}

// countVerticesWithSum counts vertices in {0,...,w-1}^v with coordinate
// sum s, via inclusion-exclusion over the stars-and-bars upper bound.
func countVerticesWithSum(w, v, s int) *big.Int {
	if s < 0 || s > (w-1)*v {
		return big.NewInt(0)
	}

	result := big.NewInt(0)

	for k := 0; k <= v; k++ {
		if s-k*w < 0 {
			break
		}

		term := binomial(v, k)
		term2 := binomial(s-k*w+v-1, v-1)
		term.Mul(term, term2)

		if k%2 == 0 {
			result.Add(result, term)
		} else {
			result.Sub(result, term)
		}
	}

	return result
}

// countWaysSum is countVerticesWithSum generalized to v == 0 positions,
// where the only valid sum is 0 (countVerticesWithSum's binomial(v-1,...)
// doesn't handle that boundary directly).
func countWaysSum(w, positions, s int) *big.Int {
	if positions == 0 {
		if s == 0 {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	}
	return countVerticesWithSum(w, positions, s)
}

// SizesSumInRange returns the sum of layer sizes over [start, end].
func (info *LayerInfo) SizesSumInRange(start, end int) *big.Int {
	if start == 0 {
		return new(big.Int).Set(info.prefixSums[end])
	}
	return new(big.Int).Sub(info.prefixSums[end], info.prefixSums[start-1])
}

var layerCache = struct {
	sync.RWMutex
	data map[int]map[int]*LayerInfo // map[base]map[dimension]*LayerInfo
}{
	data: make(map[int]map[int]*LayerInfo),
}

// GetLayerInfo returns cached layer info for the given base and dimension.
func GetLayerInfo(w, v int) *LayerInfo {
	layerCache.RLock()
	if baseMap, ok := layerCache.data[w]; ok {
		if info, ok := baseMap[v]; ok {
			layerCache.RUnlock()
			return info
		}
	}
	layerCache.RUnlock()

	layerCache.Lock()
	defer layerCache.Unlock()

	if baseMap, ok := layerCache.data[w]; ok {
		if info, ok := baseMap[v]; ok {
			return info
		}
	}

	info := NewLayerInfo(w, v)

	if layerCache.data[w] == nil {
		layerCache.data[w] = make(map[int]*LayerInfo)
	}
	layerCache.data[w][v] = info

	return info
}

// HypercubePartSize returns the number of vertices in layers [0, d],
// i.e. the size of the part of the hypercube the Target-Sum rejection
// loop samples uniformly from (spec §4.C).
func HypercubePartSize(w, v, d int) *big.Int {
	info := GetLayerInfo(w, v)
	return new(big.Int).Set(info.prefixSums[d])
}

// HypercubeFindLayer locates which layer a cumulative rank x (0-based,
// counting from layer 0 inclusive) falls into, returning that layer
// and x's rank within it.
func HypercubeFindLayer(w, v int, x *big.Int) (int, *big.Int) {
	info := GetLayerInfo(w, v)
	maxLayer := v * (w - 1)

	rem := new(big.Int).Set(x)
	for d := 0; d <= maxLayer; d++ {
		size := info.Sizes[d]
		if rem.Cmp(size) < 0 {
			return d, rem
		}
		rem.Sub(rem, size)
	}
	return maxLayer, rem
}

// MapToVertex unranks x (0-based, within layer d's Sizes[d] vertices)
// into its vertex, via the combinatorial number system: position by
// position, choosing the smallest coordinate value whose remaining
// completions cover x.
func MapToVertex(w, v, d int, x *big.Int) []byte {
	sumLeft := (w - 1) * v
	sumLeft -= d

	vertex := make([]byte, v)
	remaining := new(big.Int).Set(x)

	for i := 0; i < v; i++ {
		positionsLeft := v - i - 1
		for c := 0; c < w; c++ {
			count := countWaysSum(w, positionsLeft, sumLeft-c)
			if remaining.Cmp(count) < 0 {
				vertex[i] = byte(c)
				sumLeft -= c
				break
			}
			remaining.Sub(remaining, count)
		}
	}

	return vertex
}

// MapToInteger is the inverse of MapToVertex: given a, the vertex's
// layer-local rank.
func MapToInteger(w, v, d int, a []byte) *big.Int {
	sumLeft := (w-1)*v - d
	x := new(big.Int)

	for i := 0; i < v; i++ {
		positionsLeft := v - i - 1
		c := int(a[i])
		for cc := 0; cc < c; cc++ {
			count := countWaysSum(w, positionsLeft, sumLeft-cc)
			x.Add(x, count)
		}
		sumLeft -= c
	}

	return x
}

// CountVerticesTargetSum counts vertices with coordinate sum s whose
// layer falls within [minLayer, maxLayer].
func CountVerticesTargetSum(w, v, s, minLayer, maxLayer int) *big.Int {
	if s < 0 || minLayer > maxLayer || minLayer < 0 || maxLayer > v {
		return big.NewInt(0)
	}

	dp := make(map[int]map[int]*big.Int)

	dp[0] = make(map[int]*big.Int)
	dp[0][0] = big.NewInt(1)

	for layer := 1; layer <= maxLayer; layer++ {
		dp[layer] = make(map[int]*big.Int)

		for prevSum := range dp[layer-1] {
			if prevSum > s {
				continue
			}

			for val := 1; val < w; val++ {
				newSum := prevSum + val
				if newSum <= s {
					if dp[layer][newSum] == nil {
						dp[layer][newSum] = new(big.Int)
					}

					ways := new(big.Int).Set(dp[layer-1][prevSum])

					unusedPos := v - layer + 1
					ways.Mul(ways, big.NewInt(int64(unusedPos)))

					dp[layer][newSum].Add(dp[layer][newSum], ways)
				}
			}
		}
	}

	result := new(big.Int)
	for layer := minLayer; layer <= maxLayer; layer++ {
		if count, ok := dp[layer][s]; ok {
			result.Add(result, count)
		}
	}

	return result
}

// binomial computes "n choose k".
func binomial(n, k int) *big.Int {
	if k > n || k < 0 {
		return big.NewInt(0)
	}
	if k == 0 || k == n {
		return big.NewInt(1)
	}

	result := big.NewInt(1)
	for i := 0; i < k; i++ {
		result.Mul(result, big.NewInt(int64(n-i)))
		result.Div(result, big.NewInt(int64(i+1)))
	}

	return result
}

// ComputeIndexBounds computes the cumulative vertex-count bounds for
// layers [minLayer, maxLayer].
func ComputeIndexBounds(w, v, s, minLayer, maxLayer int) (*big.Int, *big.Int) {
	info := GetLayerInfo(w, v)

	lowerBound := new(big.Int)
	if minLayer > 0 {
		lowerBound = info.SizesSumInRange(0, minLayer-1)
	}

	upperBound := info.SizesSumInRange(0, maxLayer)

	return lowerBound, upperBound
}
