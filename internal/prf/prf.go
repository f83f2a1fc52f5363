// Package prf implements the PRF abstraction that expands a 32-byte
// secret key into per-epoch, per-chain-index chain heads (spec §4.B),
// plus deterministic per-signature randomness derivation.
package prf

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/koala-crypto/xmss-koalabear/th"
)

// PRF expands (key, epoch, chainIndex) into a domain element.
type PRF interface {
	KeyGen(rng io.Reader) []byte
	Apply(key []byte, epoch uint32, chainIndex uint64) th.Domain
	OutputLen() int
}

// prfDomainSep separates this PRF's outputs from other hash uses.
var prfDomainSep = []byte{
	0x00, 0x01, 0x12, 0xff, 0x00, 0x01, 0xfa, 0xff,
	0x00, 0xaf, 0x12, 0xff, 0x01, 0xfa, 0xff, 0x00,
}

// SHA3PRF is a SHA3-256-based PRF, used by the SHA3 test/interop
// instantiations (not the Poseidon2/KoalaBear production path, which
// uses ShakePRFtoField instead).
type SHA3PRF struct {
	keyLen    int
	outputLen int
}

// NewSHA3PRF creates a SHA3-based PRF with the given key/output lengths.
func NewSHA3PRF(keyLen, outputLen int) *SHA3PRF {
	return &SHA3PRF{keyLen: keyLen, outputLen: outputLen}
}

// KeyGen draws a fresh key from rng.
func (p *SHA3PRF) KeyGen(rng io.Reader) []byte {
	key := make([]byte, p.keyLen)
	if _, err := io.ReadFull(rng, key); err != nil {
		panic("prf: failed to generate key: " + err.Error())
	}
	return key
}

// Apply computes SHA3-256(domain_sep || key || epoch || chainIndex),
// truncated to outputLen bytes.
func (p *SHA3PRF) Apply(key []byte, epoch uint32, chainIndex uint64) th.Domain {
	h := sha3.New256()
	h.Write(prfDomainSep)
	h.Write(key)

	epochBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(epochBytes, epoch)
	h.Write(epochBytes)

	chainBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(chainBytes, chainIndex)
	h.Write(chainBytes)

	full := h.Sum(nil)
	if len(full) > p.outputLen {
		return full[:p.outputLen]
	}
	return full
}

// OutputLen returns the truncated output length in bytes.
func (p *SHA3PRF) OutputLen() int {
	return p.outputLen
}

// DeriveRho deterministically derives per-signature randomness from
// (key, epoch, message, attempt) per spec §3 ("Seed rho ... derived
// deterministically from (K, epoch, message)") and §4.C (target-sum's
// bounded, deterministic rejection-sampling loop). attempt is the
// 0-based retry counter; two calls with the same inputs are identical.
func DeriveRho(key []byte, epoch uint32, message []byte, attempt uint32, outLen int) []byte {
	h := sha3.New256()
	h.Write([]byte{0x72, 0x68, 0x6f}) // "rho" domain tag
	h.Write(key)

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], epoch)
	h.Write(buf[:])

	binary.BigEndian.PutUint32(buf[:], attempt)
	h.Write(buf[:])

	h.Write(message)

	full := h.Sum(nil)
	if outLen <= len(full) {
		return full[:outLen]
	}
	// Expand via SHAKE128 if more randomness is required than SHA3-256 gives.
	shake := sha3.NewShake128()
	shake.Write([]byte{0x72, 0x68, 0x6f, 0x2b})
	shake.Write(full)
	out := make([]byte, outLen)
	shake.Read(out)
	return out
}
