package tweak_hash

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/field/koalabear"

	"github.com/koala-crypto/xmss-koalabear/poseidon"
	"github.com/koala-crypto/xmss-koalabear/th"
)

func TestPoseidonTweakHashApply(t *testing.T) {
	configs := []struct {
		name      string
		paramLen  int
		hashLen   int
		tweakLen  int
		capacity  int
		numChunks int
		width     poseidon.Width
	}{
		{"Width16", 4, 4, 2, 9, 32, poseidon.Width16},
		{"Width24", 3, 7, 2, 9, 32, poseidon.Width24},
	}

	for _, cfg := range configs {
		t.Run(cfg.name, func(t *testing.T) {
			pth := NewPoseidonTweakHash(
				cfg.paramLen,
				cfg.hashLen,
				cfg.tweakLen,
				cfg.capacity,
				cfg.numChunks,
				cfg.width,
			)

			params := pth.RandParameter(rand.Reader)
			msg1 := pth.RandDomain(rand.Reader)
			msg2 := pth.RandDomain(rand.Reader)

			treeTweak := pth.TreeTweak(1, 2)
			result1 := pth.Apply(params, treeTweak, []th.Domain{msg1, msg2})

			chainTweak := pth.ChainTweak(42, 3, 4)
			result2 := pth.Apply(params, chainTweak, []th.Domain{msg1})

			if bytes.Equal(result1, result2) {
				t.Error("Different tweaks produced same result")
			}

			result3 := pth.Apply(params, treeTweak, []th.Domain{msg1, msg2})
			if !bytes.Equal(result1, result3) {
				t.Error("Same inputs produced different results")
			}
		})
	}
}

func TestTreeTweakFieldElements(t *testing.T) {
	pth := NewPoseidonTweakHash(4, 4, 2, 9, 32, poseidon.Width16)

	level := uint8(1)
	posInLevel := uint32(2)
	sep := uint64(TweakSeparatorTreeHash)

	tweakBigint := new(big.Int)
	tweakBigint.SetUint64(uint64(level) << 40)
	temp := new(big.Int).SetUint64(uint64(posInLevel) << 8)
	tweakBigint.Add(tweakBigint, temp)
	tweakBigint.Add(tweakBigint, new(big.Int).SetUint64(sep))

	p := new(big.Int).SetUint64(P)
	expected := make([]koalabear.Element, 2)

	remainder := new(big.Int).Set(tweakBigint)
	for i := 0; i < 2; i++ {
		var e koalabear.Element
		digit := new(big.Int).Mod(remainder, p)
		e.SetBigInt(digit)
		expected[i] = e
		remainder.Div(remainder, p)
	}

	tweak := pth.TreeTweak(level, posInLevel)
	actual := pth.tweakToFieldElements(tweak)

	for i := 0; i < 2; i++ {
		if !actual[i].Equal(&expected[i]) {
			t.Errorf("Tree tweak field element %d mismatch", i)
		}
	}
}

func TestChainTweakFieldElements(t *testing.T) {
	pth := NewPoseidonTweakHash(4, 4, 2, 9, 32, poseidon.Width16)

	epoch := uint32(1)
	chainIndex := uint8(2)
	posInChain := uint8(3)
	sep := uint64(TweakSeparatorChainHash)

	tweakBigint := new(big.Int)
	tweakBigint.SetUint64(uint64(epoch) << 24)
	temp := new(big.Int).SetUint64(uint64(chainIndex) << 16)
	tweakBigint.Add(tweakBigint, temp)
	temp.SetUint64(uint64(posInChain) << 8)
	tweakBigint.Add(tweakBigint, temp)
	tweakBigint.Add(tweakBigint, new(big.Int).SetUint64(sep))

	p := new(big.Int).SetUint64(P)
	expected := make([]koalabear.Element, 2)

	remainder := new(big.Int).Set(tweakBigint)
	for i := 0; i < 2; i++ {
		var e koalabear.Element
		digit := new(big.Int).Mod(remainder, p)
		e.SetBigInt(digit)
		expected[i] = e
		remainder.Div(remainder, p)
	}

	tweak := pth.ChainTweak(epoch, chainIndex, posInChain)
	actual := pth.tweakToFieldElements(tweak)

	for i := 0; i < 2; i++ {
		if !actual[i].Equal(&expected[i]) {
			t.Errorf("Chain tweak field element %d mismatch", i)
		}
	}
}

func TestTweakMaxValues(t *testing.T) {
	pth := NewPoseidonTweakHash(4, 4, 2, 9, 32, poseidon.Width16)

	t.Run("TreeTweakMax", func(t *testing.T) {
		level := uint8(255)
		posInLevel := uint32(0xFFFFFFFF)

		tweak := pth.TreeTweak(level, posInLevel)
		fields := pth.tweakToFieldElements(tweak)

		if len(fields) != 2 {
			t.Errorf("Expected 2 field elements, got %d", len(fields))
		}
	})

	t.Run("ChainTweakMax", func(t *testing.T) {
		epoch := uint32(0xFFFFFFFF)
		chainIndex := uint8(255)
		posInChain := uint8(255)

		tweak := pth.ChainTweak(epoch, chainIndex, posInChain)
		fields := pth.tweakToFieldElements(tweak)

		if len(fields) != 2 {
			t.Errorf("Expected 2 field elements, got %d", len(fields))
		}
	})
}

func TestTweakInjectivity(t *testing.T) {
	pth := NewPoseidonTweakHash(4, 4, 2, 9, 32, poseidon.Width16)

	t.Run("TreeTweakInjective", func(t *testing.T) {
		seen := make(map[string]struct{})

		for i := 0; i < 10000; i++ {
			var level uint8
			var posInLevel uint32

			b := make([]byte, 5)
			rand.Read(b)
			level = b[0]
			posInLevel = uint32(b[1])<<24 | uint32(b[2])<<16 | uint32(b[3])<<8 | uint32(b[4])

			tweak := pth.TreeTweak(level, posInLevel)
			fields := pth.tweakToFieldElements(tweak)

			key := ""
			for _, f := range fields {
				key += f.String() + ","
			}

			if _, exists := seen[key]; exists {
				t.Fatalf("Collision found for level=%d, pos=%d", level, posInLevel)
			}
			seen[key] = struct{}{}
		}
	})

	t.Run("ChainTweakInjective", func(t *testing.T) {
		seen := make(map[string]struct{})

		for i := 0; i < 10000; i++ {
			var epoch uint32
			var chainIndex, posInChain uint8

			b := make([]byte, 6)
			rand.Read(b)
			epoch = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
			chainIndex = b[4]
			posInChain = b[5]

			tweak := pth.ChainTweak(epoch, chainIndex, posInChain)
			fields := pth.tweakToFieldElements(tweak)

			key := ""
			for _, f := range fields {
				key += f.String() + ","
			}

			if _, exists := seen[key]; exists {
				t.Fatalf("Collision found for epoch=%d, chain=%d, pos=%d",
					epoch, chainIndex, posInChain)
			}
			seen[key] = struct{}{}
		}
	})
}

func TestRandParameterNotAllSame(t *testing.T) {
	pth := NewPoseidonTweakHash(4, 4, 2, 9, 32, poseidon.Width16)

	allSameCount := 0
	trials := 10

	for i := 0; i < trials; i++ {
		params := pth.RandParameter(rand.Reader)

		if len(params) > 0 {
			first := params[0]
			allSame := true
			for _, b := range params[1:] {
				if b != first {
					allSame = false
					break
				}
			}
			if allSame {
				allSameCount++
			}
		}
	}

	if allSameCount == trials {
		t.Error("All random parameters had identical bytes")
	}
}

func TestRandDomainNotAllSame(t *testing.T) {
	pth := NewPoseidonTweakHash(4, 4, 2, 9, 32, poseidon.Width16)

	allSameCount := 0
	trials := 10

	for i := 0; i < trials; i++ {
		domain := pth.RandDomain(rand.Reader)

		if len(domain) > 0 {
			first := domain[0]
			allSame := true
			for _, b := range domain[1:] {
				if b != first {
					allSame = false
					break
				}
			}
			if allSame {
				allSameCount++
			}
		}
	}

	if allSameCount == trials {
		t.Error("All random domain elements had identical bytes")
	}
}
