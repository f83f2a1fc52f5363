package message_hash

import (
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/field/koalabear"

	"github.com/koala-crypto/xmss-koalabear/poseidon"
	"github.com/koala-crypto/xmss-koalabear/th"
)

func TestTopLevelPoseidonApply(t *testing.T) {
	const (
		BASE       = 12
		DIMENSION  = 40
		FINAL_LAYER = 175
	)

	mh := NewTopLevelPoseidonMessageHash(
		8,  // posOutputLenPerInvFE
		6,  // posInvocations
		48, // posOutputLenFE
		DIMENSION,
		BASE,
		FINAL_LAYER,
		3, // tweakLenFE
		9, // msgLenFE
		4, // parameterLen
		4, // randLen
		poseidon.Width24,
	)

	params := make(th.Params, 16)
	rand.Read(params)

	message := make([]byte, 32)
	rand.Read(message)

	randomness := make([]byte, 16)
	rand.Read(randomness)

	epoch := uint32(42)

	result := mh.Hash(params, message, randomness, epoch)

	if len(result) != DIMENSION {
		t.Errorf("Expected output length %d, got %d", DIMENSION, len(result))
	}

	for i, val := range result {
		if int(val) >= BASE {
			t.Errorf("Output[%d] = %d exceeds base %d", i, val, BASE)
		}
	}

	result2 := mh.Hash(params, message, randomness, epoch)
	for i := range result {
		if result[i] != result2[i] {
			t.Error("Same inputs produced different results")
			break
		}
	}
}

func TestMapIntoHypercubePart(t *testing.T) {
	const (
		BASE        = 4
		DIMENSION   = 8
		FINAL_LAYER = 10
	)

	mh := NewTopLevelPoseidonMessageHash(
		2, 2, 4, // smaller for testing
		DIMENSION,
		BASE,
		FINAL_LAYER,
		2, 9, 4, 4,
		poseidon.Width24,
	)

	for trial := 0; trial < 100; trial++ {
		fieldElems := make([]koalabear.Element, 4)
		for i := range fieldElems {
			var e koalabear.Element
			b := make([]byte, 4)
			rand.Read(b)
			val := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
			e.SetUint64(uint64(val % 1000000))
			fieldElems[i] = e
		}

		vertex := mh.mapIntoHypercubePart(fieldElems)

		if len(vertex) != DIMENSION {
			t.Errorf("Vertex has wrong dimension: %d", len(vertex))
		}

		for i, coord := range vertex {
			if int(coord) >= BASE {
				t.Errorf("Vertex[%d] = %d >= base %d", i, coord, BASE)
			}
		}

		sum := 0
		for _, coord := range vertex {
			sum += int(coord)
		}

		maxSum := (BASE - 1) * DIMENSION
		if sum > maxSum {
			t.Errorf("Vertex sum %d exceeds max %d", sum, maxSum)
		}
	}
}

func TestTopLevelPoseidonProperties(t *testing.T) {
	const (
		BASE        = 12
		DIMENSION   = 40
		FINAL_LAYER = 175
	)

	mh := NewTopLevelPoseidonMessageHash(
		8, 6, 48,
		DIMENSION,
		BASE,
		FINAL_LAYER,
		3, 9, 4, 4,
		poseidon.Width24,
	)

	params := make(th.Params, 16)
	rand.Read(params)

	randomness := make([]byte, 16)
	rand.Read(randomness)

	for epoch := uint32(0); epoch < 1000; epoch += 100 {
		message := make([]byte, 32)
		rand.Read(message)

		result := mh.Hash(params, message, randomness, epoch)

		if len(result) != DIMENSION {
			t.Fatalf("Wrong output dimension for epoch %d", epoch)
		}

		for i, val := range result {
			if int(val) >= BASE {
				t.Errorf("Invalid value at epoch %d, index %d: %d", epoch, i, val)
			}
		}
	}
}
