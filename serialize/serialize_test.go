package serialize

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koala-crypto/xmss-koalabear/encoding/winternitz"
	"github.com/koala-crypto/xmss-koalabear/internal/prf"
	"github.com/koala-crypto/xmss-koalabear/params"
	"github.com/koala-crypto/xmss-koalabear/th/message_hash"
	"github.com/koala-crypto/xmss-koalabear/th/tweak_hash"
	"github.com/koala-crypto/xmss-koalabear/xmss"
)

const testNodeLen = 24
const testParamLen = 24

// testParams is a registered variant so Tag()/FromTag() round-trip;
// the SHA3 test instantiation below doesn't actually use Poseidon2,
// but serialize only cares about lengths and tags, not the hash
// family that produced them.
var testParams = params.Parameters{
	HashVariant:       params.Poseidon2W24,
	LifetimeLog2:      18,
	ChainLength:       2,
	NumChains:         163,
	Encoding:          params.Winternitz,
	FieldElemsPerHash: 7,
}

func newWinternitzScheme(t *testing.T, logLifetime int) *xmss.GeneralizedXMSS {
	t.Helper()
	prfInstance := prf.NewSHA3PRF(testNodeLen, testNodeLen)
	thInstance := tweak_hash.NewSHA3TweakableHash(testNodeLen, testNodeLen)
	mhInstance := message_hash.NewSHA3MessageHash(testNodeLen, testNodeLen, 48, 4)
	encInstance := winternitz.NewWinternitzEncoding(mhInstance, 4, 3)
	return xmss.NewGeneralizedXMSS(prfInstance, encInstance, thInstance, logLifetime, testParams)
}

func TestPublicKeyRoundTrip(t *testing.T) {
	xm := newWinternitzScheme(t, 4)
	pk, _ := xm.KeyGen(rand.Reader, 0, 4)

	data, err := EncodePublicKey(pk, testParams)
	require.NoError(t, err)
	require.Len(t, data, testNodeLen+testParamLen+1)

	got, gotParams, err := DecodePublicKey(data, testNodeLen, testParamLen)
	require.NoError(t, err)
	require.Equal(t, testParams, gotParams)
	require.Equal(t, []byte(pk.Root), []byte(got.Root))
	require.Equal(t, []byte(pk.Parameter), []byte(got.Parameter))
}

func TestPublicKeyDecodeRejectsBadLength(t *testing.T) {
	_, _, err := DecodePublicKey(make([]byte, testNodeLen), testNodeLen, testParamLen)
	require.Error(t, err)
}

func TestPublicKeyDecodeRejectsUnknownTag(t *testing.T) {
	data := make([]byte, testNodeLen+testParamLen+1)
	data[testNodeLen+testParamLen] = 0xAB
	_, _, err := DecodePublicKey(data, testNodeLen, testParamLen)
	require.Error(t, err)
}

func TestSecretKeyMinimalRoundTrip(t *testing.T) {
	prfFn := prf.NewSHA3PRF(testNodeLen, testNodeLen)
	prfKey := prfFn.KeyGen(rand.Reader)
	thInstance := tweak_hash.NewSHA3TweakableHash(testParamLen, testNodeLen)
	parameter := thInstance.RandParameter(rand.Reader)

	sk := &xmss.SecretKey{
		PRFKey:          prfKey,
		Parameter:       parameter,
		ActivationEpoch: 5,
		NumActiveEpochs: 100,
	}

	data, err := EncodeSecretKeyMinimal(sk, testParams)
	require.NoError(t, err)

	got, gotParams, err := DecodeSecretKeyMinimal(data, len(prfKey), testParamLen)
	require.NoError(t, err)
	require.Equal(t, testParams, gotParams)
	require.Equal(t, sk.PRFKey, got.PRFKey)
	require.Equal(t, []byte(sk.Parameter), []byte(got.Parameter))
	require.Equal(t, sk.ActivationEpoch, got.ActivationEpoch)
	require.Equal(t, sk.NumActiveEpochs, got.NumActiveEpochs)
}

func TestSecretKeyMinimalDecodeRejectsBadLength(t *testing.T) {
	_, _, err := DecodeSecretKeyMinimal(make([]byte, 10), testNodeLen, testParamLen)
	require.Error(t, err)
}

func TestSecretKeyFullRoundTrip(t *testing.T) {
	xm := newWinternitzScheme(t, 4)
	thInstance := tweak_hash.NewSHA3TweakableHash(testParamLen, testNodeLen)
	_, sk := xm.KeyGen(rand.Reader, 0, 4)

	data, err := EncodeSecretKeyFull(sk, testParams)
	require.NoError(t, err)

	got, gotParams, err := DecodeSecretKeyFull(data, len(sk.PRFKey), testParamLen, testNodeLen, thInstance)
	require.NoError(t, err)
	require.Equal(t, testParams, gotParams)
	require.Equal(t, sk.PRFKey, got.PRFKey)
	require.Equal(t, []byte(sk.Parameter), []byte(got.Parameter))
	require.Equal(t, sk.ActivationEpoch, got.ActivationEpoch)
	require.Equal(t, sk.NumActiveEpochs, got.NumActiveEpochs)
	require.Equal(t, []byte(sk.Tree.Root()), []byte(got.Tree.Root()))
}

func TestSignatureRoundTrip(t *testing.T) {
	xm := newWinternitzScheme(t, 4)
	_, sk := xm.KeyGen(rand.Reader, 0, 4)

	sig, err := xm.Sign(rand.Reader, sk, 2, []byte("hello world, 32 bytes padding!!!"))
	require.NoError(t, err)

	data := EncodeSignature(2, sig)
	gotEpoch, gotSig, err := DecodeSignature(data, testNodeLen, len(sig.Rho))
	require.NoError(t, err)
	require.Equal(t, uint32(2), gotEpoch)

	require.Equal(t, len(sig.Path.CoPath), len(gotSig.Path.CoPath))
	for i := range sig.Path.CoPath {
		require.Equal(t, []byte(sig.Path.CoPath[i]), []byte(gotSig.Path.CoPath[i]))
	}
	require.Equal(t, sig.Rho, gotSig.Rho)

	require.Equal(t, len(sig.Hashes), len(gotSig.Hashes))
	for i := range sig.Hashes {
		require.Equal(t, []byte(sig.Hashes[i]), []byte(gotSig.Hashes[i]))
	}
}

func TestSignatureDecodeRejectsTamperedTrailingBytes(t *testing.T) {
	xm := newWinternitzScheme(t, 4)
	_, sk := xm.KeyGen(rand.Reader, 0, 4)

	sig, err := xm.Sign(rand.Reader, sk, 1, []byte("tamper me, need 32 bytes total!!"))
	require.NoError(t, err)

	data := EncodeSignature(1, sig)
	data = append(data, 0x00)

	_, _, err = DecodeSignature(data, testNodeLen, len(sig.Rho))
	require.Error(t, err)
}

func TestSignatureDecodeRejectsTruncation(t *testing.T) {
	xm := newWinternitzScheme(t, 4)
	_, sk := xm.KeyGen(rand.Reader, 0, 4)

	sig, err := xm.Sign(rand.Reader, sk, 1, []byte("truncate me, need 32 bytes total"))
	require.NoError(t, err)

	data := EncodeSignature(1, sig)
	_, _, err = DecodeSignature(data[:len(data)-1], testNodeLen, len(sig.Rho))
	require.Error(t, err)
}
