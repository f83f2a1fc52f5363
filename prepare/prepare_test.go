package prepare

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koala-crypto/xmss-koalabear/internal/prf"
	"github.com/koala-crypto/xmss-koalabear/th/tweak_hash"
)

func newTestEngine(t *testing.T, activation, numActive, window int, mode Mode) *Engine {
	t.Helper()
	thash := tweak_hash.NewSHA3TweakableHash(24, 24)
	parameter := thash.RandParameter(rand.Reader)
	prfFn := prf.NewSHA3PRF(24, 24)
	prfKey := prfFn.KeyGen(rand.Reader)

	return New(thash, prfFn, parameter, prfKey, 4, 4, 6, activation, numActive, window, mode)
}

func TestEnginePrepareThenAdvanceFull(t *testing.T) {
	engine := newTestEngine(t, 0, 16, 4, Full)

	require.Equal(t, Fresh, engine.State())
	require.NoError(t, engine.Prepare(rand.Reader))
	require.Equal(t, Prepared, engine.State())

	start, end := engine.Range()
	require.Equal(t, 0, start)
	require.Equal(t, 4, end)
	require.True(t, engine.Contains(0))
	require.True(t, engine.Contains(3))
	require.False(t, engine.Contains(4))

	require.NoError(t, engine.Advance(rand.Reader))
	require.Equal(t, Advanced, engine.State())

	start, end = engine.Range()
	require.Equal(t, 0, start, "full mode keeps the original start")
	require.Equal(t, 8, end)
	require.True(t, engine.Contains(0))
	require.True(t, engine.Contains(7))
	require.False(t, engine.Contains(8))
}

func TestEngineAdvanceMinimalDropsOldWindow(t *testing.T) {
	engine := newTestEngine(t, 0, 16, 4, Minimal)

	require.NoError(t, engine.Prepare(rand.Reader))
	require.NoError(t, engine.Advance(rand.Reader))

	start, end := engine.Range()
	require.Equal(t, 4, start, "minimal mode drops the previous window")
	require.Equal(t, 8, end)
	require.False(t, engine.Contains(0))
	require.True(t, engine.Contains(4))
}

func TestEngineExhaustsAtLifetimeEnd(t *testing.T) {
	engine := newTestEngine(t, 0, 8, 4, Full)

	require.NoError(t, engine.Prepare(rand.Reader))
	require.NoError(t, engine.Advance(rand.Reader))
	require.Equal(t, Exhausted, engine.State())

	err := engine.Advance(rand.Reader)
	require.Error(t, err)
}

func TestEnginePrepareTwiceFails(t *testing.T) {
	engine := newTestEngine(t, 0, 16, 4, Full)
	require.NoError(t, engine.Prepare(rand.Reader))
	require.Error(t, engine.Prepare(rand.Reader))
}
