// Package field wraps the KoalaBear prime field from gnark-crypto.
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/field/koalabear"
)

// P is the KoalaBear prime: 2^31 - 2^24 + 1.
const P uint64 = 2130706433

// Element is a field element in KoalaBear.
type Element = koalabear.Element

// NewElement builds an Element from a uint64, reducing mod P.
func NewElement(v uint64) Element {
	var e Element
	e.SetUint64(v)
	return e
}

// Zero returns the additive identity.
func Zero() Element {
	return koalabear.NewElement(0)
}

// One returns the multiplicative identity.
func One() Element {
	return koalabear.NewElement(1)
}

// FromBytes decodes a canonical big-endian encoding into an Element.
func FromBytes(b []byte) Element {
	var e Element
	e.SetBytes(b)
	return e
}

// ToBytes encodes e as a canonical 4-byte big-endian value.
func ToBytes(e Element) []byte {
	b := e.Bytes()
	return b[:]
}

// ToBigInt converts e to a big.Int in [0, P).
func ToBigInt(e Element) *big.Int {
	return e.BigInt(big.NewInt(0))
}
