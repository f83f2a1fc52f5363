package message_hash

import (
	"math/big"

	"github.com/consensys/gnark-crypto/field/koalabear"

	"github.com/koala-crypto/xmss-koalabear/poseidon"
	"github.com/koala-crypto/xmss-koalabear/th"
)

// fieldOrder is the KoalaBear prime.
const fieldOrder = 2130706433

// PoseidonMessageHash implements the Winternitz-w message hash as a
// Poseidon2 sponge over KoalaBear field elements.
type PoseidonMessageHash struct {
	parameterLen int
	randLen      int
	msgHashLenFE int // message hash length in field elements
	numChunks    int
	base         int
	tweakLenFE   int
	msgLenFE     int // message length in field elements
	width        poseidon.Width
	perm         *poseidon.Poseidon2
}

// NewPoseidonMessageHash creates a Poseidon message hash at the given
// sponge width.
func NewPoseidonMessageHash(
	parameterLen, randLen, msgHashLenFE, numChunks, base, tweakLenFE, msgLenFE int, width poseidon.Width,
) *PoseidonMessageHash {
	return &PoseidonMessageHash{
		parameterLen: parameterLen,
		randLen:      randLen,
		msgHashLenFE: msgHashLenFE,
		numChunks:    numChunks,
		base:         base,
		tweakLenFE:   tweakLenFE,
		msgLenFE:     msgLenFE,
		width:        width,
		perm:         poseidon.New(width),
	}
}

// Hash hashes a message with parameters, randomness, and epoch.
func (h *PoseidonMessageHash) Hash(params th.Params, msg []byte, rand []byte, epoch uint32) []byte {
	msgFields := bytesToFieldElements(msg, h.msgLenFE)
	randFields := bytesToFieldElements(rand, h.randLen)
	paramFields := bytesToFieldElements(params, h.parameterLen)
	epochFields := h.epochToFieldElements(epoch)

	capacity := make([]koalabear.Element, 0)
	capacity = append(capacity, paramFields...)
	capacity = append(capacity, epochFields...)

	input := make([]koalabear.Element, 0)
	input = append(input, randFields...)
	input = append(input, msgFields...)

	result := h.poseidonSponge(capacity, input)

	return h.decodeToChunks(result[:h.msgHashLenFE])
}

// OutputLen returns the output length in bytes (number of chunks).
func (h *PoseidonMessageHash) OutputLen() int {
	return h.numChunks
}

// RandLen returns the randomness length in bytes.
func (h *PoseidonMessageHash) RandLen() int {
	return h.randLen * 4
}

// Dimension returns the number of chunks.
func (h *PoseidonMessageHash) Dimension() int {
	return h.numChunks
}

// Base returns the base value.
func (h *PoseidonMessageHash) Base() int {
	return h.base
}

// ChunkSize returns the chunk size in bits.
func (h *PoseidonMessageHash) ChunkSize() int {
	chunkSize := 0
	base := h.base
	for base > 1 {
		base >>= 1
		chunkSize++
	}
	return chunkSize
}

// epochToFieldElements converts epoch to field elements with the
// message-hash domain separator packed in.
func (h *PoseidonMessageHash) epochToFieldElements(epoch uint32) []koalabear.Element {
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

// poseidonSponge applies the absorb/squeeze sponge construction.
func (h *PoseidonMessageHash) poseidonSponge(capacity, input []koalabear.Element) []koalabear.Element {
	width := int(h.width)
	rate := width - len(capacity)

	state := make([]koalabear.Element, width)
	copy(state[rate:], capacity)

	for i := 0; i < len(input); i += rate {
		end := i + rate
		if end > len(input) {
			end = len(input)
		}

		for j := 0; j < end-i; j++ {
			var sum koalabear.Element
			sum.Add(&state[j], &input[i+j])
			state[j] = sum
		}

		h.perm.Permute(state)
	}

	output := make([]koalabear.Element, h.msgHashLenFE)
	copy(output, state[:h.msgHashLenFE])

	return output
}

// bytesToFieldElements interprets data as a little-endian integer and
// decomposes it in base fieldOrder.
func bytesToFieldElements(data []byte, numElements int) []koalabear.Element {
	acc := new(big.Int).SetBytes(reverseBytes(data))

	p := big.NewInt(fieldOrder)
	result := make([]koalabear.Element, numElements)

	for i := 0; i < numElements; i++ {
		digit := new(big.Int).Mod(acc, p)
		var e koalabear.Element
		e.SetBigInt(digit)
		result[i] = e
		acc.Div(acc, p)
	}

	return result
}

// fieldElementsToBytes reconstructs the base-fieldOrder-packed integer
// back into bytes.
func fieldElementsToBytes(elements []koalabear.Element) []byte {
	acc := new(big.Int)
	p := big.NewInt(fieldOrder)

	for i := len(elements) - 1; i >= 0; i-- {
		digit := elements[i].BigInt(new(big.Int))
		acc.Mul(acc, p)
		acc.Add(acc, digit)
	}

	bytes := acc.Bytes()

	expectedLen := (len(elements) * 31) / 8
	if expectedLen < 32 {
		expectedLen = 32
	}

	if len(bytes) < expectedLen {
		padded := make([]byte, expectedLen)
		copy(padded[expectedLen-len(bytes):], bytes)
		bytes = padded
	}

	return reverseBytes(bytes)
}

// reverseBytes reverses a byte slice.
func reverseBytes(b []byte) []byte {
	result := make([]byte, len(b))
	for i := range b {
		result[i] = b[len(b)-1-i]
	}
	return result
}

// decodeToChunks decodes field elements to chunks in base h.base.
func (h *PoseidonMessageHash) decodeToChunks(fieldElements []koalabear.Element) []byte {
	acc := new(big.Int)
	p := big.NewInt(fieldOrder)

	for _, fe := range fieldElements {
		feBig := fe.BigInt(new(big.Int))
		acc.Mul(acc, p)
		acc.Add(acc, feBig)
	}

	base := big.NewInt(int64(h.base))
	chunks := make([]byte, h.numChunks)

	for i := 0; i < h.numChunks; i++ {
		chunk := new(big.Int).Mod(acc, base)
		chunks[i] = byte(chunk.Int64())
		acc.Div(acc, base)
	}

	return chunks
}
