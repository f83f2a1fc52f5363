// Package merkle implements the sparse Merkle tree over a window of
// active epochs (spec §4.E): leaves are already-hashed epoch public
// keys, internal nodes use the tweakable hash's tree tweak, and odd
// boundaries are padded with a deterministic per-index placeholder so
// that two materializations of the same window produce the same root.
package merkle

import (
	"io"
	"sync"

	"github.com/koala-crypto/xmss-koalabear/th"
)

// HashTreeLayer represents a single layer in the sparse hash tree.
type HashTreeLayer struct {
	startIndex int
	nodes      []th.Domain
}

// GetStartIndex returns the start index of the layer.
func (l *HashTreeLayer) GetStartIndex() int {
	return l.startIndex
}

// GetNodes returns the nodes in the layer.
func (l *HashTreeLayer) GetNodes() []th.Domain {
	return l.nodes
}

// NewHashTreeLayer creates a new HashTreeLayer.
func NewHashTreeLayer(startIndex int, nodes []th.Domain) HashTreeLayer {
	return HashTreeLayer{
		startIndex: startIndex,
		nodes:      nodes,
	}
}

// placeholderNode deterministically derives the padding node for
// (level, index): tree_hash of an all-zero domain element under that
// index's tweak. Two calls with the same arguments always agree, so
// independently rematerialized windows produce identical roots.
func placeholderNode(thash th.TweakableHash, parameter th.Params, level uint8, index uint32) th.Domain {
	zero := make(th.Domain, thash.OutputLen())
	tweak := thash.TreeTweak(level, index)
	return thash.Apply(parameter, tweak, []th.Domain{zero})
}

// padded pads nodes so startIndex is even and the end index is odd,
// the alignment a binary tree layer needs to pair cleanly.
func (l *HashTreeLayer) padded(thash th.TweakableHash, parameter th.Params, level uint8, nodes []th.Domain, startIndex int) *HashTreeLayer {
	endIndex := startIndex + len(nodes) - 1

	needsFront := (startIndex & 1) == 1
	needsBack := (endIndex & 1) == 0

	actualStartIndex := startIndex
	if needsFront {
		actualStartIndex--
	}

	var paddedNodes []th.Domain

	if needsFront {
		paddedNodes = append(paddedNodes, placeholderNode(thash, parameter, level, uint32(actualStartIndex)))
	}

	paddedNodes = append(paddedNodes, nodes...)

	if needsBack {
		paddedNodes = append(paddedNodes, placeholderNode(thash, parameter, level, uint32(endIndex+1)))
	}

	return &HashTreeLayer{
		startIndex: actualStartIndex,
		nodes:      paddedNodes,
	}
}

// HashTree represents a sparse Merkle tree over an epoch window.
type HashTree struct {
	depth  int
	layers []HashTreeLayer
	th     th.TweakableHash
	params th.Params
}

// GetDepth returns the depth of the tree.
func (t *HashTree) GetDepth() int {
	return t.depth
}

// GetLayers returns the layers of the tree.
func (t *HashTree) GetLayers() []HashTreeLayer {
	return t.layers
}

// NewHashTreeFromLayers reconstructs a HashTree from serialized data.
func NewHashTreeFromLayers(depth int, layers []HashTreeLayer, params th.Params, thash th.TweakableHash) *HashTree {
	if thash == nil {
		panic("TweakableHash cannot be nil - required for tree operations")
	}
	return &HashTree{
		depth:  depth,
		layers: layers,
		params: params,
		th:     thash,
	}
}

// HashTreeOpening represents a Merkle authentication path.
type HashTreeOpening struct {
	CoPath []th.Domain
}

// NewHashTree builds a sparse hash tree over [startIndex, startIndex+len(leafHashes)).
// rng is accepted for call-site stability but unused: padding placeholders
// are now derived deterministically rather than drawn at random.
func NewHashTree(rng io.Reader, thash th.TweakableHash, depth int, startIndex int,
	parameter th.Params, leafHashes []th.Domain) *HashTree {

	if startIndex+len(leafHashes) > (1 << depth) {
		panic("not enough space for leaves")
	}

	layers := make([]HashTreeLayer, 0, depth+1)

	layer := (&HashTreeLayer{}).padded(thash, parameter, 0, leafHashes, startIndex)
	layers = append(layers, *layer)

	for level := 0; level < depth; level++ {
		prev := &layers[level]
		parentStart := prev.startIndex >> 1

		numParents := len(prev.nodes) / 2
		parents := make([]th.Domain, numParents)

		if numParents > 100 {
			var wg sync.WaitGroup
			wg.Add(numParents)

			for i := 0; i < numParents; i++ {
				go func(idx int) {
					defer wg.Done()
					posInLevel := uint32(parentStart + idx)
					tweak := thash.TreeTweak(uint8(level+1), posInLevel)
					children := []th.Domain{
						prev.nodes[2*idx],
						prev.nodes[2*idx+1],
					}
					parents[idx] = thash.Apply(parameter, tweak, children)
				}(i)
			}
			wg.Wait()
		} else {
			for i := 0; i < numParents; i++ {
				posInLevel := uint32(parentStart + i)
				tweak := thash.TreeTweak(uint8(level+1), posInLevel)
				children := []th.Domain{
					prev.nodes[2*i],
					prev.nodes[2*i+1],
				}
				parents[i] = thash.Apply(parameter, tweak, children)
			}
		}

		parentLayer := (&HashTreeLayer{}).padded(thash, parameter, uint8(level+1), parents, parentStart)
		layers = append(layers, *parentLayer)
	}

	return &HashTree{
		depth:  depth,
		layers: layers,
		th:     thash,
		params: parameter,
	}
}

// Root returns the root hash of the tree.
func (t *HashTree) Root() th.Domain {
	if len(t.layers) == 0 {
		return nil
	}
	rootLayer := &t.layers[len(t.layers)-1]
	if len(rootLayer.nodes) == 0 {
		return nil
	}
	return rootLayer.nodes[0]
}

// Path returns the authentication path for a given epoch.
func (t *HashTree) Path(epoch uint32) HashTreeOpening {
	leafIndex := int(epoch)
	coPath := make([]th.Domain, 0, t.depth)

	currentIndex := leafIndex

	for level := 0; level < t.depth; level++ {
		layer := &t.layers[level]

		relIndex := currentIndex - layer.startIndex
		siblingRelIndex := relIndex ^ 1

		if siblingRelIndex >= 0 && siblingRelIndex < len(layer.nodes) {
			coPath = append(coPath, layer.nodes[siblingRelIndex])
		} else {
			// Should not happen with proper padding: fall back to the
			// same deterministic placeholder padding would have used.
			siblingIndex := (currentIndex ^ 1)
			coPath = append(coPath, placeholderNode(t.th, t.params, uint8(level), uint32(siblingIndex)))
		}

		currentIndex = currentIndex >> 1
	}

	return HashTreeOpening{CoPath: coPath}
}

// VerifyPath verifies a Merkle authentication path against root.
func VerifyPath(thash th.TweakableHash, parameter th.Params, root th.Domain,
	epoch uint32, leaf []th.Domain, path HashTreeOpening) bool {

	leafTweak := thash.TreeTweak(0, epoch)
	current := thash.Apply(parameter, leafTweak, leaf)

	index := epoch
	for level := 0; level < len(path.CoPath); level++ {
		var children []th.Domain
		if (index & 1) == 0 {
			children = []th.Domain{current, path.CoPath[level]}
		} else {
			children = []th.Domain{path.CoPath[level], current}
		}

		parentIndex := index >> 1
		tweak := thash.TreeTweak(uint8(level+1), parentIndex)
		current = thash.Apply(parameter, tweak, children)

		index = parentIndex
	}

	if len(current) != len(root) {
		return false
	}
	for i := range current {
		if current[i] != root[i] {
			return false
		}
	}
	return true
}
