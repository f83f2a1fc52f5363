// Package th defines the tweakable-hash abstraction (spec §4.A) that
// underlies chain, tree, and message hashing, plus the chain-walk
// helper (spec §4.D "Construction 2").
package th

import "io"

// MessageLength is the fixed length of messages to sign, in bytes.
const MessageLength = 32

// Domain-separation tags, packed into the low byte of each tweak. The
// Poseidon2 backend converts the tweak to field elements and places
// them, with the public parameter, in the sponge's capacity segment;
// the tag is not written into the rate.
const (
	TweakSeparatorChainHash   = 0x00
	TweakSeparatorTreeHash    = 0x01
	TweakSeparatorMessageHash = 0x02
)

// Tweak is a domain-separated tweak value.
type Tweak []byte

// Params is a tweakable hash's randomized public parameter.
type Params []byte

// Domain is a hash-output-sized tuple of field elements, serialized.
type Domain []byte

// TweakableHash is Construction 1 from the reference paper.
type TweakableHash interface {
	RandParameter(rng io.Reader) Params
	RandDomain(rng io.Reader) Domain

	// TreeTweak returns tweak(l, i) for Merkle tree operations (Eq. 18).
	TreeTweak(level uint8, posInLevel uint32) Tweak
	// ChainTweak returns tweak(ep, i, k) for hash chain operations (Eq. 17).
	ChainTweak(epoch uint32, chainIndex uint8, posInChain uint8) Tweak

	// Apply computes H(P, T, M).
	Apply(parameter Params, tweak Tweak, message []Domain) Domain

	OutputLen() int
	ParameterLen() int
}

// MessageHasher computes the fixed-length chunk vector Thmsg from
// (message, epoch, rho) (spec §4.C).
type MessageHasher interface {
	DigestChunks(P Params, T Tweak, msg []byte, rho []byte, w, ell int) ([]uint32, error)
	RandRandomness(rng io.Reader) []byte
}

// Chain walks steps calls of the chain hash starting from start,
// beginning at position startPosInChain+1 (spec §4.D "Construction 2").
func Chain(thash TweakableHash, parameter Params, epoch uint32, chainIndex uint8,
	startPosInChain uint8, steps int, start Domain) Domain {

	current := make(Domain, len(start))
	copy(current, start)

	for j := 0; j < steps; j++ {
		tweak := thash.ChainTweak(epoch, chainIndex, startPosInChain+uint8(j)+1)
		current = thash.Apply(parameter, tweak, []Domain{current})
	}

	return current
}
