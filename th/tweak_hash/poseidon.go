// Package tweak_hash implements tweakable hashes usable as the
// TweakableHash abstraction (spec §4.A): a SHA3 test/interop backend
// and the production Poseidon2-over-KoalaBear backend.
package tweak_hash

import (
	"encoding/binary"
	"io"

	"github.com/consensys/gnark-crypto/field/koalabear"

	"github.com/koala-crypto/xmss-koalabear/poseidon"
	"github.com/koala-crypto/xmss-koalabear/th"
)

const (
	// Domain separators, consistent with the tweak package's byte encoding.
	TweakSeparatorChainHash   = 0x00
	TweakSeparatorTreeHash    = 0x01
	TweakSeparatorMessageHash = 0x02

	// DomainParametersLength is not read by PoseidonTweakHash; the
	// number of field elements a tweak packs down into is the tweakLen
	// constructor argument.
	DomainParametersLength = 4

	// P is the KoalaBear prime.
	P = 2130706433
)

// PoseidonTweakHash implements the tweakable hash over the KoalaBear
// field, using a Poseidon2 sponge whose width matches hash_variant
// (spec §3: Poseidon2W16 or Poseidon2W24).
type PoseidonTweakHash struct {
	parameterLen int
	hashLen      int
	tweakLen     int
	capacity     int
	numChunks    int
	width        poseidon.Width
	perm         *poseidon.Poseidon2
}

// NewPoseidonTweakHash creates a Poseidon2 tweakable hash at the given
// sponge width (poseidon.Width16 or poseidon.Width24).
func NewPoseidonTweakHash(parameterLen, hashLen, tweakLen, capacity, numChunks int, width poseidon.Width) *PoseidonTweakHash {
	return &PoseidonTweakHash{
		parameterLen: parameterLen,
		hashLen:      hashLen,
		tweakLen:     tweakLen,
		capacity:     capacity,
		numChunks:    numChunks,
		width:        width,
		perm:         poseidon.New(width),
	}
}

// RandParameter generates random parameters.
func (p *PoseidonTweakHash) RandParameter(rng io.Reader) th.Params {
	params := make([]byte, p.parameterLen*4) // 4 bytes per field element
	if _, err := io.ReadFull(rng, params); err != nil {
		panic("failed to generate parameters")
	}
	return params
}

// Apply computes the tweakable hash.
func (p *PoseidonTweakHash) Apply(params th.Params, tweak th.Tweak, data []th.Domain) th.Domain {
	paramFields := bytesToFieldElements(params, p.parameterLen)
	tweakFields := p.tweakToFieldElements(tweak)

	var dataFields []koalabear.Element
	for _, d := range data {
		dataFields = append(dataFields, bytesToFieldElements(d, p.hashLen)...)
	}

	capacityValue := p.computeCapacityValue(paramFields, tweakFields)

	result := p.poseidonSponge(capacityValue, dataFields)

	return fieldElementsToBytes(result)
}

// TreeTweak creates a tree tweak, packed for field-element conversion.
func (p *PoseidonTweakHash) TreeTweak(level uint8, posInLevel uint32) th.Tweak {
	tweak := make([]byte, 8)
	binary.LittleEndian.PutUint64(tweak, uint64(level)<<40|uint64(posInLevel)<<8|TweakSeparatorTreeHash)
	return tweak
}

// ChainTweak creates a chain tweak, packed for field-element conversion.
func (p *PoseidonTweakHash) ChainTweak(epoch uint32, chainIndex uint8, posInChain uint8) th.Tweak {
	tweak := make([]byte, 8)
	val := uint64(epoch)<<24 | uint64(chainIndex)<<16 | uint64(posInChain)<<8 | TweakSeparatorChainHash
	binary.LittleEndian.PutUint64(tweak, val)
	return tweak
}

// MessageTweak creates a message tweak for the given epoch.
func (p *PoseidonTweakHash) MessageTweak(epoch uint32) th.Tweak {
	tweak := make([]byte, 5)
	tweak[0] = TweakSeparatorMessageHash
	binary.LittleEndian.PutUint32(tweak[1:], epoch)
	return tweak
}

// OutputLen returns the output length in bytes.
func (p *PoseidonTweakHash) OutputLen() int {
	return p.hashLen * 4
}

// ParameterLen returns the parameter length in bytes.
func (p *PoseidonTweakHash) ParameterLen() int {
	return p.parameterLen * 4
}

// RandDomain generates a random domain element (used by tests, never
// for Merkle padding: padding placeholders are deterministic per-index,
// see merkle/tree.go).
func (p *PoseidonTweakHash) RandDomain(rng io.Reader) th.Domain {
	domain := make([]byte, p.OutputLen())
	if _, err := io.ReadFull(rng, domain); err != nil {
		panic("failed to generate random domain")
	}
	return domain
}

// tweakToFieldElements converts tweak bytes to field elements by
// decomposing the packed integer in base P.
func (p *PoseidonTweakHash) tweakToFieldElements(tweak th.Tweak) []koalabear.Element {
	separator := tweak[0]

	var acc uint64
	switch separator {
	case TweakSeparatorTreeHash, TweakSeparatorChainHash:
		acc = binary.LittleEndian.Uint64(tweak)
	case TweakSeparatorMessageHash:
		if len(tweak) >= 5 {
			epoch := binary.LittleEndian.Uint32(tweak[1:])
			acc = uint64(epoch)<<8 | TweakSeparatorMessageHash
		}
	}

	result := make([]koalabear.Element, p.tweakLen)
	for i := 0; i < p.tweakLen; i++ {
		var e koalabear.Element
		e.SetUint64(acc % P)
		result[i] = e
		acc /= P
	}

	return result
}

// computeCapacityValue combines params and tweak for domain separation.
func (p *PoseidonTweakHash) computeCapacityValue(params, tweak []koalabear.Element) []koalabear.Element {
	capacity := make([]koalabear.Element, 0, len(params)+len(tweak))
	capacity = append(capacity, params...)
	capacity = append(capacity, tweak...)
	return capacity
}

// poseidonSponge applies the absorb/squeeze sponge construction.
func (p *PoseidonTweakHash) poseidonSponge(capacity, input []koalabear.Element) []koalabear.Element {
	width := int(p.width)
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

		p.perm.Permute(state)
	}

	output := make([]koalabear.Element, p.hashLen)
	copy(output, state[:p.hashLen])

	return output
}

// bytesToFieldElements converts bytes to field elements, 4 bytes each.
func bytesToFieldElements(data []byte, numElements int) []koalabear.Element {
	result := make([]koalabear.Element, numElements)
	for i := 0; i < numElements; i++ {
		offset := i * 4
		if offset+4 <= len(data) {
			var e koalabear.Element
			e.SetBytes(data[offset : offset+4])
			result[i] = e
		} else if offset < len(data) {
			partial := make([]byte, 4)
			copy(partial, data[offset:])
			var e koalabear.Element
			e.SetBytes(partial)
			result[i] = e
		}
	}
	return result
}

// fieldElementsToBytes converts field elements to bytes, 4 bytes each.
func fieldElementsToBytes(elements []koalabear.Element) []byte {
	result := make([]byte, 0, len(elements)*4)
	for _, elem := range elements {
		b := elem.Bytes()
		result = append(result, b[:]...)
	}
	return result
}
