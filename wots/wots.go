// Package wots implements the per-epoch Winternitz one-time-signature
// chain layer (spec §4.D "Construction 2"): deriving each chain's
// starting node from the PRF, walking a chain by a bounded number of
// steps, and compressing an epoch's chain ends into its Merkle leaf.
//
// This factors out what the generalized scheme's KeyGen and Sign both
// do independently (derive every chain's head, then walk it) into one
// shared implementation.
package wots

import (
	"github.com/koala-crypto/xmss-koalabear/internal/prf"
	"github.com/koala-crypto/xmss-koalabear/th"
)

// Head derives the starting node of chainIndex's chain at epoch from
// the PRF key.
func Head(p prf.PRF, key []byte, epoch uint32, chainIndex uint64) th.Domain {
	return p.Apply(key, epoch, chainIndex)
}

// Walk advances a chain from its head by steps applications of the
// chain hash, stopping at an intermediate position rather than always
// the chain's end: callers that already hold a partial chain value
// (as Verify does, starting from the signed position) pass that value
// as start and the remaining step count.
func Walk(thash th.TweakableHash, parameter th.Params, epoch uint32, chainIndex uint8,
	startPosInChain uint8, steps int, start th.Domain) th.Domain {
	return th.Chain(thash, parameter, epoch, chainIndex, startPosInChain, steps, start)
}

// PublicVector derives and fully walks every chain for one epoch,
// returning the vector of chain ends used as KeyGen's leaf input.
func PublicVector(p prf.PRF, thash th.TweakableHash, key []byte, parameter th.Params,
	epoch uint32, numChains int, chainLength int) []th.Domain {

	ends := make([]th.Domain, numChains)
	for chainIndex := 0; chainIndex < numChains; chainIndex++ {
		head := Head(p, key, epoch, uint64(chainIndex))
		ends[chainIndex] = Walk(thash, parameter, epoch, uint8(chainIndex), 0, chainLength-1, head)
	}
	return ends
}

// CompressLeaf hashes an epoch's chain-end vector into the Merkle
// leaf for that epoch (tree tweak at level 0).
func CompressLeaf(thash th.TweakableHash, parameter th.Params, epoch uint32, chainEnds []th.Domain) th.Domain {
	leafTweak := thash.TreeTweak(0, epoch)
	return thash.Apply(parameter, leafTweak, chainEnds)
}

// SignChains derives the signer's codeword-dependent partial chain
// values: for each chain, walks from the PRF head to the position the
// codeword digit specifies.
func SignChains(p prf.PRF, thash th.TweakableHash, key []byte, parameter th.Params,
	epoch uint32, codeword []uint8) []th.Domain {

	numChains := len(codeword)
	hashes := make([]th.Domain, numChains)
	for chainIndex := 0; chainIndex < numChains; chainIndex++ {
		head := Head(p, key, epoch, uint64(chainIndex))
		steps := int(codeword[chainIndex])
		hashes[chainIndex] = Walk(thash, parameter, epoch, uint8(chainIndex), 0, steps, head)
	}
	return hashes
}

// VerifyChains completes each chain from its signed value to the
// chain's end, for comparison against the leaf computed at keygen.
func VerifyChains(thash th.TweakableHash, parameter th.Params, epoch uint32,
	chainLength int, codeword []uint8, signed []th.Domain) []th.Domain {

	numChains := len(codeword)
	ends := make([]th.Domain, numChains)
	for chainIndex := 0; chainIndex < numChains; chainIndex++ {
		xi := codeword[chainIndex]
		steps := chainLength - 1 - int(xi)
		ends[chainIndex] = Walk(thash, parameter, epoch, uint8(chainIndex), xi, steps, signed[chainIndex])
	}
	return ends
}
