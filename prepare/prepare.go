// Package prepare implements the key preparation engine (spec §4.F):
// a sliding-window state machine that materializes the Merkle subtree
// over a bounded range of epochs instead of the whole lifetime at
// once, the way a lifetime of 2^32 epochs requires.
//
// Grounded on bwesterb/go-xmssmt's subtree-cache discipline
// (PrivateKeyContainer.getSubTree / subTreeReady bookkeeping),
// reworked around this scheme's merkle.HashTree instead of that
// implementation's on-disk subtree cache.
package prepare

import (
	"io"
	"sync"

	"github.com/koala-crypto/xmss-koalabear/internal/prf"
	"github.com/koala-crypto/xmss-koalabear/merkle"
	"github.com/koala-crypto/xmss-koalabear/th"
	"github.com/koala-crypto/xmss-koalabear/wots"
	"github.com/koala-crypto/xmss-koalabear/xmsserr"
)

// State names the engine's position in its materialization lifecycle.
type State int

const (
	// Fresh: no subtree has been materialized yet.
	Fresh State = iota
	// Prepared: the first window is materialized and ready to sign.
	Prepared
	// Advanced: at least one further window has been merged in.
	Advanced
	// Exhausted: the window has reached the key's last active epoch.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Prepared:
		return "prepared"
	case Advanced:
		return "advanced"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Mode controls whether subtrees outside the current window are kept
// around (Full, so the key can still sign for any previously-prepared
// epoch) or dropped as the window advances (Minimal, trading signing
// range for a smaller resident secret key).
type Mode int

const (
	Full Mode = iota
	Minimal
)

// Engine materializes a sliding window of a lifetime-2^logLifetime
// key's Merkle subtree, window epochs at a time.
//
// Advance is not safe for concurrent use on the same Engine: the
// Mutex below makes the engine's own bookkeeping race-detector-clean
// for sequential internal calls, but callers must still serialize
// their own calls into Advance/Prepare externally (spec §5).
type Engine struct {
	mu sync.Mutex

	thash     th.TweakableHash
	prfFn     prf.PRF
	parameter th.Params
	prfKey    []byte

	numChains   int
	chainLength int
	logLifetime int

	activationEpoch int
	numActiveEpochs int
	window          int
	mode            Mode

	state      State
	rangeStart int
	rangeEnd   int // exclusive
	leaves     []th.Domain // real per-epoch leaf hashes, leaves[i] is epoch rangeStart+i
	tree       *merkle.HashTree
}

// New creates a key preparation engine over [activationEpoch,
// activationEpoch+numActiveEpochs), materializing window epochs at a
// time.
func New(thash th.TweakableHash, prfFn prf.PRF, parameter th.Params, prfKey []byte,
	numChains, chainLength, logLifetime, activationEpoch, numActiveEpochs, window int, mode Mode) *Engine {

	if window <= 0 {
		panic("prepare: window must be positive")
	}

	return &Engine{
		thash:           thash,
		prfFn:           prfFn,
		parameter:       parameter,
		prfKey:          prfKey,
		numChains:       numChains,
		chainLength:     chainLength,
		logLifetime:     logLifetime,
		activationEpoch: activationEpoch,
		numActiveEpochs: numActiveEpochs,
		window:          window,
		mode:            mode,
		state:           Fresh,
	}
}

// State returns the engine's current lifecycle position.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Contains reports whether epoch currently has a materialized
// authentication path.
func (e *Engine) Contains(epoch uint32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Fresh {
		return false
	}
	ep := int(epoch)
	return ep >= e.rangeStart && ep < e.rangeEnd
}

// Tree returns the currently materialized subtree, or nil if Fresh.
func (e *Engine) Tree() *merkle.HashTree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// Range returns the currently prepared [start, end) epoch interval.
func (e *Engine) Range() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rangeStart, e.rangeEnd
}

func (e *Engine) leafHashesFor(start, end int) []th.Domain {
	n := end - start
	hashes := make([]th.Domain, n)

	if n > 10 {
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(offset int) {
				defer wg.Done()
				epoch := uint32(start + offset)
				ends := wots.PublicVector(e.prfFn, e.thash, e.prfKey, e.parameter, epoch, e.numChains, e.chainLength)
				hashes[offset] = wots.CompressLeaf(e.thash, e.parameter, epoch, ends)
			}(i)
		}
		wg.Wait()
	} else {
		for i := 0; i < n; i++ {
			epoch := uint32(start + i)
			ends := wots.PublicVector(e.prfFn, e.thash, e.prfKey, e.parameter, epoch, e.numChains, e.chainLength)
			hashes[i] = wots.CompressLeaf(e.thash, e.parameter, epoch, ends)
		}
	}
	return hashes
}

// Prepare materializes the first window, starting at
// activationEpoch. It is an error to call Prepare twice; use Advance
// to extend the window instead.
func (e *Engine) Prepare(rng io.Reader) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Fresh {
		return xmsserr.WrapDeserialization("prepare: engine already prepared")
	}

	start := e.activationEpoch
	end := start + e.window
	if end > e.activationEpoch+e.numActiveEpochs {
		end = e.activationEpoch + e.numActiveEpochs
	}

	hashes := e.leafHashesFor(start, end)
	e.tree = merkle.NewHashTree(rng, e.thash, e.logLifetime, start, e.parameter, hashes)
	e.rangeStart = start
	e.rangeEnd = end
	e.leaves = hashes

	if end >= e.activationEpoch+e.numActiveEpochs {
		e.state = Exhausted
	} else {
		e.state = Prepared
	}
	return nil
}

// Advance materializes the next window-sized slice of epochs and
// merges it into the tracked interval. In Full mode the previous
// window's leaves stay part of the tree, so any previously-prepared
// epoch can still sign; in Minimal mode only the new window remains
// reachable. Returns xmsserr.ErrLifetimeExhausted once the window has
// already reached the key's last active epoch.
func (e *Engine) Advance(rng io.Reader) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Fresh {
		return xmsserr.WrapDeserialization("prepare: engine not yet prepared")
	}
	if e.state == Exhausted {
		return xmsserr.ErrLifetimeExhausted
	}

	lastActive := e.activationEpoch + e.numActiveEpochs

	newStart := e.rangeEnd
	newEnd := newStart + e.window
	if newEnd > lastActive {
		newEnd = lastActive
	}

	newHashes := e.leafHashesFor(newStart, newEnd)

	var mergedStart int
	var mergedHashes []th.Domain

	if e.mode == Full {
		mergedStart = e.rangeStart
		mergedHashes = append(append([]th.Domain{}, e.leaves...), newHashes...)
		e.rangeEnd = newEnd
	} else {
		mergedStart = newStart
		mergedHashes = newHashes
		e.rangeStart = newStart
		e.rangeEnd = newEnd
	}

	e.tree = merkle.NewHashTree(rng, e.thash, e.logLifetime, mergedStart, e.parameter, mergedHashes)
	e.leaves = mergedHashes

	if newEnd >= lastActive {
		e.state = Exhausted
	} else {
		e.state = Advanced
	}
	return nil
}
