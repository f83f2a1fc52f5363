// Package xmss implements the generalized XMSS signature scheme
// (Construction 3): a stateful hash-based signature built from a
// Winternitz-style one-time signature per epoch, authenticated by a
// Merkle tree over the activation window.
package xmss

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/koala-crypto/xmss-koalabear/encoding"
	"github.com/koala-crypto/xmss-koalabear/internal/prf"
	"github.com/koala-crypto/xmss-koalabear/merkle"
	"github.com/koala-crypto/xmss-koalabear/params"
	"github.com/koala-crypto/xmss-koalabear/prepare"
	"github.com/koala-crypto/xmss-koalabear/th"
	"github.com/koala-crypto/xmss-koalabear/wots"
	"github.com/koala-crypto/xmss-koalabear/xmsserr"
)

var log = zerolog.New(os.Stderr).With().Timestamp().Str("pkg", "xmss").Logger()

// PublicKey represents a generalized XMSS public key (spec §3: "Public
// key. {root, parameters: P}"). Parameters is the scheme's immutable
// configuration; Parameter is the per-keypair randomized tweakable
// hash input, a distinct and unrelated value of the same name's
// lowercase form in spec.md.
type PublicKey struct {
	Root       th.Domain
	Parameter  th.Params
	Parameters params.Parameters
}

// SecretKey represents a generalized XMSS secret key (spec §3). Tree
// holds the fully materialized Merkle subtree over the activation
// window; see the prepare package for incremental (windowed)
// materialization of lifetimes too large to build eagerly.
type SecretKey struct {
	PRFKey          []byte
	Tree            *merkle.HashTree
	Parameter       th.Params
	Parameters      params.Parameters
	ActivationEpoch int
	NumActiveEpochs int

	// Engine, when set, backs Tree with an incrementally materialized
	// sliding window (prepare.Engine) instead of a whole-lifetime
	// eager build. Sign consults it to reject epochs outside the
	// currently prepared window with ErrEpochNotPrepared rather than
	// reading out-of-range tree layers.
	Engine *prepare.Engine
}

// NewPreparedSecretKey wraps a key preparation engine's currently
// materialized window as a SecretKey. The engine must already have
// had Prepare called; Sign will track the engine's window as it is
// advanced.
func NewPreparedSecretKey(prfKey []byte, parameter th.Params, parameters params.Parameters, activationEpoch, numActiveEpochs int, engine *prepare.Engine) *SecretKey {
	return &SecretKey{
		PRFKey:          prfKey,
		Tree:            engine.Tree(),
		Parameter:       parameter,
		Parameters:      parameters,
		ActivationEpoch: activationEpoch,
		NumActiveEpochs: numActiveEpochs,
		Engine:          engine,
	}
}

// Signature represents a generalized XMSS signature.
type Signature struct {
	Path   merkle.HashTreeOpening
	Rho    []byte
	Hashes []th.Domain
}

// GeneralizedXMSS implements the generalized XMSS signature scheme
// (Construction 3).
type GeneralizedXMSS struct {
	prf         prf.PRF
	encoding    encoding.IncomparableEncoding
	th          th.TweakableHash
	logLifetime int
	parameters  params.Parameters
}

// NewGeneralizedXMSS creates a new generalized XMSS instance. parameters
// is the instance's own configuration (spec §3); KeyGen stamps it onto
// every PublicKey/SecretKey it produces, and Sign/Verify reject any
// key whose Parameters diverges from it with ParameterMismatch.
func NewGeneralizedXMSS(
	prf prf.PRF,
	encoding encoding.IncomparableEncoding,
	th th.TweakableHash,
	logLifetime int,
	parameters params.Parameters,
) *GeneralizedXMSS {
	if logLifetime > 32 {
		panic("lifetime beyond 2^32 not supported")
	}

	if encoding.Base() > 256 {
		panic("encoding base too large, must be at most 256")
	}
	if encoding.Dimension() > 256 {
		panic("encoding dimension too large, must be at most 256")
	}

	return &GeneralizedXMSS{
		prf:         prf,
		encoding:    encoding,
		th:          th,
		logLifetime: logLifetime,
		parameters:  parameters,
	}
}

// Lifetime returns the maximum number of epochs (L = 2^logLifetime).
func (g *GeneralizedXMSS) Lifetime() uint64 {
	return 1 << g.logLifetime
}

// Parameters returns the instance's own configuration, the value every
// PublicKey/SecretKey it produces is checked against.
func (g *GeneralizedXMSS) Parameters() params.Parameters {
	return g.parameters
}

// TweakableHash returns the instance's tweakable hash, so callers
// (notably serialize and cmd/koalasig) can size wire-format node
// fields without duplicating the instantiation's constants.
func (g *GeneralizedXMSS) TweakableHash() th.TweakableHash {
	return g.th
}

// Encoding returns the instance's message encoding, exposing
// Dimension/Base/RandLen for serialization and CLI tooling.
func (g *GeneralizedXMSS) Encoding() encoding.IncomparableEncoding {
	return g.encoding
}

// chainEndsForEpoch derives the Winternitz chain ends for one epoch:
// walks each of the Dimension() chains from its PRF-derived start to
// the chain's maximum position.
func (g *GeneralizedXMSS) chainEndsForEpoch(prfKey []byte, parameter th.Params, epoch uint32) []th.Domain {
	return wots.PublicVector(g.prf, g.th, prfKey, parameter, epoch, g.encoding.Dimension(), g.encoding.Base())
}

// KeyGen generates a new key pair active over
// [activationEpoch, activationEpoch+numActiveEpochs).
func (g *GeneralizedXMSS) KeyGen(rng io.Reader, activationEpoch, numActiveEpochs int) (*PublicKey, *SecretKey) {
	if activationEpoch+numActiveEpochs > int(g.Lifetime()) {
		panic("activation epoch and num active epochs invalid for this lifetime")
	}

	parameter := g.th.RandParameter(rng)
	prfKey := g.prf.KeyGen(rng)

	chainEndsHashes := make([]th.Domain, numActiveEpochs)

	if numActiveEpochs > 10 {
		var wg sync.WaitGroup
		wg.Add(numActiveEpochs)

		for i := 0; i < numActiveEpochs; i++ {
			go func(epochOffset int) {
				defer wg.Done()
				epoch := uint32(activationEpoch + epochOffset)
				chainEnds := g.chainEndsForEpoch(prfKey, parameter, epoch)
				chainEndsHashes[epochOffset] = wots.CompressLeaf(g.th, parameter, epoch, chainEnds)
			}(i)
		}
		wg.Wait()
	} else {
		for epochOffset := 0; epochOffset < numActiveEpochs; epochOffset++ {
			epoch := uint32(activationEpoch + epochOffset)
			chainEnds := g.chainEndsForEpoch(prfKey, parameter, epoch)
			chainEndsHashes[epochOffset] = wots.CompressLeaf(g.th, parameter, epoch, chainEnds)
		}
	}

	tree := merkle.NewHashTree(
		rng,
		g.th,
		g.logLifetime,
		activationEpoch,
		parameter,
		chainEndsHashes,
	)

	log.Debug().
		Int("activation_epoch", activationEpoch).
		Int("num_active_epochs", numActiveEpochs).
		Msg("generated key pair")

	pk := &PublicKey{
		Root:       tree.Root(),
		Parameter:  parameter,
		Parameters: g.parameters,
	}

	sk := &SecretKey{
		PRFKey:          prfKey,
		Tree:            tree,
		Parameter:       parameter,
		Parameters:      g.parameters,
		ActivationEpoch: activationEpoch,
		NumActiveEpochs: numActiveEpochs,
	}

	return pk, sk
}

// Sign produces a signature over message at epoch. rho is derived
// deterministically from (sk.PRFKey, epoch, message, attempt) rather
// than drawn from rng, so that two signing calls for the same epoch
// and message are reproducible (spec §3, §4.C); rng is accepted for
// call-site stability with constructions that need fresh randomness
// elsewhere but is not consulted for rho.
func (g *GeneralizedXMSS) Sign(rng io.Reader, sk *SecretKey, epoch uint32, message []byte) (*Signature, error) {
	if !sk.Parameters.Equal(g.parameters) {
		return nil, xmsserr.WrapParameterMismatch("secret key parameters diverge from scheme instance")
	}

	if int(epoch) < sk.ActivationEpoch || int(epoch) >= sk.ActivationEpoch+sk.NumActiveEpochs {
		return nil, xmsserr.WrapEpochOutOfRange(epoch, sk.ActivationEpoch, sk.NumActiveEpochs)
	}

	tree := sk.Tree
	if sk.Engine != nil {
		if !sk.Engine.Contains(epoch) {
			return nil, xmsserr.ErrEpochNotPrepared
		}
		tree = sk.Engine.Tree()
	}

	path := tree.Path(epoch)

	maxTries := g.encoding.MaxTries()
	randLen := g.encoding.RandLen()

	var codeword encoding.Codeword
	var rho []byte

	for attempts := 0; attempts < maxTries; attempts++ {
		rho = prf.DeriveRho(sk.PRFKey, epoch, message, uint32(attempts), randLen)

		var err error
		codeword, err = g.encoding.Encode(sk.Parameter, message, rho, epoch)
		if err == nil {
			break
		}

		if attempts == maxTries-1 {
			log.Warn().Uint32("epoch", epoch).Int("attempts", maxTries).Msg("encoding rejected")
			return nil, xmsserr.WrapEncodingRejected(maxTries)
		}
	}

	numChains := g.encoding.Dimension()
	hashes := make([]th.Domain, numChains)

	if numChains > 20 {
		var wg sync.WaitGroup
		wg.Add(numChains)

		for i := 0; i < numChains; i++ {
			go func(chainIndex int) {
				defer wg.Done()
				head := wots.Head(g.prf, sk.PRFKey, epoch, uint64(chainIndex))
				steps := int(codeword[chainIndex])
				hashes[chainIndex] = wots.Walk(g.th, sk.Parameter, epoch, uint8(chainIndex), 0, steps, head)
			}(i)
		}
		wg.Wait()
	} else {
		for chainIndex := 0; chainIndex < numChains; chainIndex++ {
			head := wots.Head(g.prf, sk.PRFKey, epoch, uint64(chainIndex))
			steps := int(codeword[chainIndex])
			hashes[chainIndex] = wots.Walk(g.th, sk.Parameter, epoch, uint8(chainIndex), 0, steps, head)
		}
	}

	return &Signature{
		Path:   path,
		Rho:    rho,
		Hashes: hashes,
	}, nil
}

// Verify checks sig against message at epoch under pk. A false,nil
// result means the signature simply doesn't match (wrong root, wrong
// chain ends); a non-nil error means the request itself was
// malformed — pk was produced under a different scheme configuration
// (ParameterMismatch) or epoch falls outside the scheme's lifetime
// (EpochTooLarge) — and can't be assigned a verdict at all.
func (g *GeneralizedXMSS) Verify(pk *PublicKey, epoch uint32, message []byte, sig *Signature) (bool, error) {
	if !pk.Parameters.Equal(g.parameters) {
		return false, xmsserr.WrapParameterMismatch("public key parameters diverge from scheme instance")
	}

	if uint64(epoch) >= g.Lifetime() {
		return false, xmsserr.WrapEpochTooLarge(epoch, g.Lifetime())
	}

	codeword, err := g.encoding.Encode(pk.Parameter, message, sig.Rho, epoch)
	if err != nil {
		return false, nil
	}

	chainLength := g.encoding.Base()
	numChains := g.encoding.Dimension()

	if len(codeword) != numChains || len(sig.Hashes) != numChains {
		return false, nil
	}

	chainEnds := wots.VerifyChains(g.th, pk.Parameter, epoch, chainLength, codeword, sig.Hashes)

	return merkle.VerifyPath(
		g.th,
		pk.Parameter,
		pk.Root,
		epoch,
		chainEnds,
		sig.Path,
	), nil
}
