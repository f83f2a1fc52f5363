package prf

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/koala-crypto/xmss-koalabear/field"
	"github.com/koala-crypto/xmss-koalabear/th"
)

// bytesPerFieldElement is the cross-implementation compatibility rule
// from spec §4.B/§9: 16 bytes of SHAKE128 output are consumed per
// field element (not the 8 a cryptographic minimum would need),
// packed little-endian, one element per 16-byte window. This must be
// reproduced exactly to interoperate with the reference.
const bytesPerFieldElement = 16

// shakePRFDomainSep separates this PRF's outputs from other hash uses.
var shakePRFDomainSep = []byte{
	0xae, 0xae, 0x22, 0xff, 0x00, 0x01, 0xfa, 0xff,
	0x21, 0xaf, 0x12, 0x00, 0x01, 0x11, 0xff, 0x00,
}

// ShakePRFtoField expands a 32-byte key into outputLenFE KoalaBear
// field elements via SHAKE128, one per 16-byte window (spec §4.B).
type ShakePRFtoField struct {
	keyLen      int
	outputLenFE int
}

// NewShakePRFtoField creates a SHAKE128-to-field PRF.
func NewShakePRFtoField(keyLen, outputLenFE int) *ShakePRFtoField {
	return &ShakePRFtoField{keyLen: keyLen, outputLenFE: outputLenFE}
}

// KeyGen draws a fresh key from rng.
func (p *ShakePRFtoField) KeyGen(rng io.Reader) []byte {
	key := make([]byte, p.keyLen)
	if _, err := io.ReadFull(rng, key); err != nil {
		panic("prf: failed to generate key: " + err.Error())
	}
	return key
}

// Apply computes PRF(key, epoch, chainIndex) -> outputLenFE field elements.
func (p *ShakePRFtoField) Apply(key []byte, epoch uint32, chainIndex uint64) th.Domain {
	shake := sha3.NewShake128()

	shake.Write(shakePRFDomainSep)
	shake.Write(key)

	var epochBytes [4]byte
	binary.BigEndian.PutUint32(epochBytes[:], epoch)
	shake.Write(epochBytes[:])

	var chainBytes [8]byte
	binary.BigEndian.PutUint64(chainBytes[:], chainIndex)
	shake.Write(chainBytes[:])

	raw := make([]byte, bytesPerFieldElement*p.outputLenFE)
	shake.Read(raw)

	result := make([]byte, 0, p.outputLenFE*4)
	for i := 0; i < p.outputLenFE; i++ {
		window := raw[i*bytesPerFieldElement : (i+1)*bytesPerFieldElement]
		// little-endian 128-bit value, reduced mod P.
		lo := binary.LittleEndian.Uint64(window[:8])
		hi := binary.LittleEndian.Uint64(window[8:])
		val := reduceWideLE(lo, hi, field.P)

		elem := field.NewElement(val)
		b := elem.Bytes()
		result = append(result, b[:]...)
	}

	return result
}

// OutputLen returns the output length in bytes (4 bytes per element).
func (p *ShakePRFtoField) OutputLen() int {
	return p.outputLenFE * 4
}

// reduceWideLE reduces a 128-bit little-endian value (lo, hi) mod m
// using binary long division, avoiding a big.Int allocation on this
// hot path (called NumChains times per epoch during keygen/sign).
func reduceWideLE(lo, hi, m uint64) uint64 {
	var rem uint64
	for i := 63; i >= 0; i-- {
		bit := (hi >> uint(i)) & 1
		rem = (rem << 1) | bit
		if rem >= m {
			rem -= m
		}
	}
	for i := 63; i >= 0; i-- {
		bit := (lo >> uint(i)) & 1
		rem = (rem << 1) | bit
		if rem >= m {
			rem -= m
		}
	}
	return rem
}
