// Package xmsserr defines the sentinel errors the scheme can return,
// wrapped with github.com/cockroachdb/errors so callers get a stack
// trace on first return without extra plumbing at each call site.
package xmsserr

import "github.com/cockroachdb/errors"

// Sentinel errors returned by GeneralizedXMSS operations. Check
// against these with errors.Is; the wrapped error carries the
// offending values in its message for logs.
var (
	// ErrParameterMismatch is returned when a public key or secret key
	// carries a different configuration (params.Parameters) than the
	// scheme instance in use.
	ErrParameterMismatch = errors.New("xmss: parameter mismatch")

	// ErrEpochOutOfRange is returned when an epoch falls outside the
	// secret key's activation window.
	ErrEpochOutOfRange = errors.New("xmss: epoch outside activation window")

	// ErrEpochTooLarge is returned when an epoch is at or beyond the
	// scheme's lifetime 2^logLifetime.
	ErrEpochTooLarge = errors.New("xmss: epoch beyond lifetime")

	// ErrEpochNotPrepared is returned when Sign is called for an
	// epoch whose Merkle subtree has not been materialized by the
	// key preparation engine.
	ErrEpochNotPrepared = errors.New("xmss: epoch not prepared")

	// ErrLifetimeExhausted is returned when the preparation engine is
	// advanced past its last active epoch.
	ErrLifetimeExhausted = errors.New("xmss: key lifetime exhausted")

	// ErrEncodingRejected is returned when a message encoding's
	// bounded retry loop exhausts MaxTries without success.
	ErrEncodingRejected = errors.New("xmss: message encoding rejected after max attempts")

	// ErrDeserialization is returned when wire-format decoding
	// encounters malformed or inconsistent data.
	ErrDeserialization = errors.New("xmss: deserialization failed")
)

// WrapParameterMismatch annotates ErrParameterMismatch with a
// caller-supplied context string.
func WrapParameterMismatch(context string) error {
	return errors.Wrapf(ErrParameterMismatch, "%s", context)
}

// WrapEpochOutOfRange annotates ErrEpochOutOfRange with the offending
// epoch and the key's active window.
func WrapEpochOutOfRange(epoch uint32, activation, numActive int) error {
	return errors.Wrapf(ErrEpochOutOfRange,
		"epoch %d not in [%d, %d)", epoch, activation, activation+numActive)
}

// WrapEpochTooLarge annotates ErrEpochTooLarge with the offending
// epoch and the scheme's lifetime.
func WrapEpochTooLarge(epoch uint32, lifetime uint64) error {
	return errors.Wrapf(ErrEpochTooLarge,
		"epoch %d >= lifetime %d", epoch, lifetime)
}

// WrapEncodingRejected annotates ErrEncodingRejected with the number
// of attempts made.
func WrapEncodingRejected(attempts int) error {
	return errors.Wrapf(ErrEncodingRejected, "exhausted %d attempts", attempts)
}

// WrapDeserialization annotates ErrDeserialization with context about
// what failed to decode.
func WrapDeserialization(context string) error {
	return errors.Wrapf(ErrDeserialization, "%s", context)
}
