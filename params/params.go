// Package params defines the immutable scheme configuration (spec §3,
// "Parameters P") shared by public keys, secret keys, and signatures,
// along with the single-byte tag used to serialize it (spec §6).
package params

import "fmt"

// HashVariant selects the Poseidon2 permutation width.
type HashVariant uint8

const (
	Poseidon2W16 HashVariant = iota
	Poseidon2W24
)

// Encoding selects the message-to-chunk encoding family.
type Encoding uint8

const (
	Winternitz Encoding = iota
	TargetSum
)

// recognized lifetime_log2 values per spec §3.
var recognizedLifetimes = [...]int{8, 10, 16, 18, 20, 28, 32}

// Parameters is the immutable configuration embedded in public/secret
// keys. All subsequent operations reject mismatched Parameters.
type Parameters struct {
	HashVariant       HashVariant
	LifetimeLog2      int
	ChainLength       int // w
	NumChains         int // v
	Encoding          Encoding
	FieldElemsPerHash int
	// TargetSum is only meaningful when Encoding == TargetSum.
	TargetSum int
}

// Validate rejects configurations outside the recognized option set.
func (p Parameters) Validate() error {
	if p.HashVariant != Poseidon2W16 && p.HashVariant != Poseidon2W24 {
		return fmt.Errorf("params: unrecognized hash variant %d", p.HashVariant)
	}
	ok := false
	for _, l := range recognizedLifetimes {
		if p.LifetimeLog2 == l {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("params: unrecognized lifetime_log2 %d", p.LifetimeLog2)
	}
	if p.ChainLength <= 1 || p.ChainLength > 65536 {
		return fmt.Errorf("params: chain length %d out of range", p.ChainLength)
	}
	if p.NumChains <= 0 || p.NumChains > 256 {
		return fmt.Errorf("params: num chains %d out of range", p.NumChains)
	}
	if p.Encoding != Winternitz && p.Encoding != TargetSum {
		return fmt.Errorf("params: unrecognized encoding %d", p.Encoding)
	}
	if p.FieldElemsPerHash <= 0 {
		return fmt.Errorf("params: field_elems_per_hash must be positive")
	}
	if p.Encoding == TargetSum {
		maxSum := p.NumChains * (p.ChainLength - 1)
		if p.TargetSum < 0 || p.TargetSum > maxSum {
			return fmt.Errorf("params: target sum %d out of range [0,%d]", p.TargetSum, maxSum)
		}
	}
	return nil
}

// Equal reports whether two Parameters describe the same configuration.
func (p Parameters) Equal(o Parameters) bool {
	return p == o
}

// namedVariant is a registry entry binding a wire tag to a concrete,
// named configuration (spec §6: "1-byte tag enumerating the variant").
type namedVariant struct {
	tag    byte
	params Parameters
}

// NumChains below is the total number of WOTS chains signed, i.e.
// message chunks plus checksum chunks (spec §4.D) — the figure that
// actually equals the encoding's Dimension(), not just its message
// part, since that is what Tag()/FromTag() must match exactly.
var registry = []namedVariant{
	{0x01, Parameters{HashVariant: Poseidon2W24, LifetimeLog2: 18, ChainLength: 2, NumChains: 163, Encoding: Winternitz, FieldElemsPerHash: 7}},
	{0x02, Parameters{HashVariant: Poseidon2W24, LifetimeLog2: 18, ChainLength: 4, NumChains: 82, Encoding: Winternitz, FieldElemsPerHash: 7}},
	{0x03, Parameters{HashVariant: Poseidon2W24, LifetimeLog2: 18, ChainLength: 16, NumChains: 42, Encoding: Winternitz, FieldElemsPerHash: 7}},
	{0x04, Parameters{HashVariant: Poseidon2W24, LifetimeLog2: 18, ChainLength: 256, NumChains: 32, Encoding: TargetSum, FieldElemsPerHash: 7, TargetSum: 768}},
	{0x05, Parameters{HashVariant: Poseidon2W16, LifetimeLog2: 8, ChainLength: 256, NumChains: 22, Encoding: TargetSum, FieldElemsPerHash: 8, TargetSum: 2310}},
	{0x06, Parameters{HashVariant: Poseidon2W24, LifetimeLog2: 10, ChainLength: 256, NumChains: 22, Encoding: TargetSum, FieldElemsPerHash: 8, TargetSum: 2310}},
}

// Tag returns the wire tag for p, or 0xFF if p is not a registered
// named variant (Tag is only meaningful for registered Parameters;
// serialize.EncodePublicKey rejects unregistered ones).
func (p Parameters) Tag() (byte, bool) {
	for _, v := range registry {
		if v.params == p {
			return v.tag, true
		}
	}
	return 0xFF, false
}

// FromTag reverses Tag, rejecting unknown tags per spec §7 Deserialization.
func FromTag(tag byte) (Parameters, error) {
	for _, v := range registry {
		if v.tag == tag {
			return v.params, nil
		}
	}
	return Parameters{}, fmt.Errorf("params: unknown parameter tag 0x%02x", tag)
}
