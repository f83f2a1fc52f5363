package main

import (
	"fmt"

	"github.com/koala-crypto/xmss-koalabear/config"
	"github.com/koala-crypto/xmss-koalabear/params"
	"github.com/koala-crypto/xmss-koalabear/th"
	"github.com/koala-crypto/xmss-koalabear/xmss"
)

// variant binds a named, registered parameter set to the concrete
// GeneralizedXMSS constructor that realizes it, so the CLI's
// --variant flag can drive signing, verification, and serialization
// without the caller repeating every chain-length/dimension constant
// by hand.
type variant struct {
	name   string
	tag    byte
	new    func() *xmss.GeneralizedXMSS
	prfLen int
}

var variants = []variant{
	{name: "w1", tag: 0x01, new: xmss.NewPoseidonWinternitzW1, prfLen: 32},
	{name: "w2", tag: 0x02, new: xmss.NewPoseidonWinternitzW2, prfLen: 32},
	{name: "w4", tag: 0x03, new: xmss.NewPoseidonWinternitzW4, prfLen: 32},
	{name: "ts256", tag: 0x04, new: xmss.NewPoseidonTargetSumW256, prfLen: 32},
}

// lookupVariant resolves flagValue via config.ResolveVariant (explicit
// flag, else KOALASIG_VARIANT, else the default variant) and returns
// the matching entry.
func lookupVariant(flagValue string) (*variant, error) {
	name := config.ResolveVariant(flagValue)
	for i := range variants {
		if variants[i].name == name {
			return &variants[i], nil
		}
	}
	return nil, fmt.Errorf("unknown variant %q (choose one of w1, w2, w4, ts256)", name)
}

// parameters resolves the registered params.Parameters for v.
func (v *variant) parameters() (params.Parameters, error) {
	return params.FromTag(v.tag)
}

// scheme builds a fresh GeneralizedXMSS instance for v, alongside its
// tweakable hash (needed to size wire-format node fields).
func (v *variant) scheme() (*xmss.GeneralizedXMSS, th.TweakableHash) {
	s := v.new()
	return s, s.TweakableHash()
}
