// Package poseidon wraps the Poseidon2 permutation over KoalaBear from
// gnark-crypto, exposing the two widths spec'd for hash_variant: 16 and 24.
package poseidon

import (
	"github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/poseidon2"
)

// Element is a KoalaBear field element.
type Element = koalabear.Element

// Width identifies which Poseidon2 instantiation to use.
type Width int

const (
	Width16 Width = 16
	Width24 Width = 24
)

// Poseidon2 wraps a single gnark-crypto Poseidon2 permutation instance.
type Poseidon2 struct {
	perm  *poseidon2.Permutation
	width int
}

// New2_16 builds the width-16 instantiation (external rounds 8, internal 20).
func New2_16() *Poseidon2 {
	return &Poseidon2{perm: poseidon2.NewPermutation(16, 8, 20), width: 16}
}

// New2_24 builds the width-24 instantiation (external rounds 8, internal 21).
func New2_24() *Poseidon2 {
	return &Poseidon2{perm: poseidon2.NewPermutation(24, 8, 21), width: 24}
}

// New builds the permutation matching the given width.
func New(w Width) *Poseidon2 {
	switch w {
	case Width16:
		return New2_16()
	case Width24:
		return New2_24()
	default:
		panic("poseidon: unsupported width")
	}
}

// Permute applies the permutation to state in place.
func (p *Poseidon2) Permute(state []Element) {
	if len(state) != p.width {
		panic("poseidon: state size mismatch")
	}
	if err := p.perm.Permutation(state); err != nil {
		panic("poseidon: permutation failed: " + err.Error())
	}
}

// PermuteNew applies the permutation and returns a fresh slice.
func (p *Poseidon2) PermuteNew(state []Element) []Element {
	out := make([]Element, len(state))
	copy(out, state)
	p.Permute(out)
	return out
}

// Width returns the permutation's state width.
func (p *Poseidon2) Width() int {
	return p.width
}
