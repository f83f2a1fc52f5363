package message_hash

import (
	"math/big"

	"github.com/consensys/gnark-crypto/field/koalabear"

	"github.com/koala-crypto/xmss-koalabear/hypercube"
	"github.com/koala-crypto/xmss-koalabear/poseidon"
	"github.com/koala-crypto/xmss-koalabear/th"
)

// TopLevelPoseidonMessageHash implements the Target-Sum message hash
// (spec §4.C): it maps a message to a hypercube vertex drawn uniformly
// from the layers [0, finalLayer], by combining several Poseidon2
// compressions' outputs into one integer and using the hypercube
// package's layer arithmetic to unrank it.
type TopLevelPoseidonMessageHash struct {
	posOutputLenPerInvFE int
	posInvocations       int
	posOutputLenFE       int
	dimension            int
	base                 int
	finalLayer           int
	tweakLenFE           int
	msgLenFE             int
	parameterLen         int
	randLen              int
	width                poseidon.Width
	perm                 *poseidon.Poseidon2
}

// NewTopLevelPoseidonMessageHash creates a Target-Sum top-level message hash.
func NewTopLevelPoseidonMessageHash(
	posOutputLenPerInvFE, posInvocations, posOutputLenFE,
	dimension, base, finalLayer,
	tweakLenFE, msgLenFE, parameterLen, randLen int,
	width poseidon.Width,
) *TopLevelPoseidonMessageHash {
	if posOutputLenFE != posInvocations*posOutputLenPerInvFE {
		panic("POS_OUTPUT_LEN_FE must equal POS_INVOCATIONS * POS_OUTPUT_LEN_PER_INV_FE")
	}
	if posOutputLenPerInvFE > 15 {
		panic("POS_OUTPUT_LEN_PER_INV_FE must be at most 15")
	}
	if posInvocations > 256 {
		panic("POS_INVOCATIONS must be at most 256")
	}
	if base > 256 {
		panic("BASE must be at most 256")
	}

	return &TopLevelPoseidonMessageHash{
		posOutputLenPerInvFE: posOutputLenPerInvFE,
		posInvocations:       posInvocations,
		posOutputLenFE:       posOutputLenFE,
		dimension:            dimension,
		base:                 base,
		finalLayer:           finalLayer,
		tweakLenFE:           tweakLenFE,
		msgLenFE:             msgLenFE,
		parameterLen:         parameterLen,
		randLen:              randLen,
		width:                width,
		perm:                 poseidon.New(width),
	}
}

// Hash hashes a message and maps it into a hypercube vertex.
func (h *TopLevelPoseidonMessageHash) Hash(params th.Params, msg []byte, rand []byte, epoch uint32) []byte {
	paramFields := bytesToFieldElements(params, h.parameterLen)
	msgFields := bytesToFieldElements(msg, h.msgLenFE)
	randFields := bytesToFieldElements(rand, h.randLen)

	epochFields := h.encodeEpoch(epoch)

	allOutputs := make([]koalabear.Element, 0, h.posOutputLenFE)

	for inv := 0; inv < h.posInvocations; inv++ {
		input := make([]koalabear.Element, 0)

		var invElem koalabear.Element
		invElem.SetUint64(uint64(inv))
		input = append(input, invElem)

		input = append(input, paramFields...)
		input = append(input, epochFields...)
		input = append(input, randFields...)
		input = append(input, msgFields...)

		output := h.poseidonCompress(input, h.posOutputLenPerInvFE)

		allOutputs = append(allOutputs, output...)
	}

	vertex := h.mapIntoHypercubePart(allOutputs)

	return vertex
}

// OutputLen returns the output length (dimension of the hypercube vertex).
func (h *TopLevelPoseidonMessageHash) OutputLen() int {
	return h.dimension
}

// RandLen returns the randomness length in bytes.
func (h *TopLevelPoseidonMessageHash) RandLen() int {
	return h.randLen * 4
}

// Dimension returns the number of chunks.
func (h *TopLevelPoseidonMessageHash) Dimension() int {
	return h.dimension
}

// Base returns the base value.
func (h *TopLevelPoseidonMessageHash) Base() int {
	return h.base
}

// ChunkSize returns the chunk size in bits.
func (h *TopLevelPoseidonMessageHash) ChunkSize() int {
	chunkSize := 0
	base := h.base
	for base > 1 {
		base >>= 1
		chunkSize++
	}
	return chunkSize
}

// encodeEpoch encodes the epoch as field elements, with the
// message-hash domain separator packed in.
func (h *TopLevelPoseidonMessageHash) encodeEpoch(epoch uint32) []koalabear.Element {
	val := uint64(epoch)<<8 | 0x02 // MESSAGE_HASH separator

	result := make([]koalabear.Element, h.tweakLenFE)
	for i := 0; i < h.tweakLenFE; i++ {
		var e koalabear.Element
		e.SetUint64(val % fieldOrder)
		result[i] = e
		val /= fieldOrder
	}

	return result
}

// poseidonCompress applies a feed-forward Poseidon2 compression.
func (h *TopLevelPoseidonMessageHash) poseidonCompress(input []koalabear.Element, outputLen int) []koalabear.Element {
	width := int(h.width)

	padded := make([]koalabear.Element, width)
	copy(padded, input)

	state := make([]koalabear.Element, width)
	copy(state, padded)

	h.perm.Permute(state)

	for i := 0; i < width; i++ {
		var sum koalabear.Element
		sum.Add(&state[i], &padded[i])
		state[i] = sum
	}

	return state[:outputLen]
}

// mapIntoHypercubePart folds the Poseidon outputs into one integer,
// reduces it modulo the size of the rejection-sampled hypercube part,
// and unranks it into a vertex (spec §4.C).
func (h *TopLevelPoseidonMessageHash) mapIntoHypercubePart(fieldElements []koalabear.Element) []byte {
	acc := new(big.Int)
	orderU64 := new(big.Int).SetUint64(fieldOrder)

	for _, fe := range fieldElements {
		acc.Mul(acc, orderU64)
		feBig := fe.BigInt(new(big.Int))
		acc.Add(acc, feBig)
	}

	domSize := hypercube.HypercubePartSize(h.base, h.dimension, h.finalLayer)
	acc.Mod(acc, domSize)

	layer, offset := hypercube.HypercubeFindLayer(h.base, h.dimension, acc)

	return hypercube.MapToVertex(h.base, h.dimension, layer, offset)
}
