// Package config resolves a registered parameter variant name for
// cmd/koalasig (SPEC_FULL.md §1's CLI collaborator) from an explicit
// flag value, falling back to an environment variable and finally a
// hardcoded default — the usual precedence chain for a CLI that wires
// its flags through cobra/pflag without pulling in a full config file
// format, since Parameters (spec §3) is the only configuration object
// the core cares about.
package config

import "os"

// VariantEnvVar is the environment variable consulted when --variant
// is left unset on the command line.
const VariantEnvVar = "KOALASIG_VARIANT"

// DefaultVariant is used when neither --variant nor VariantEnvVar is
// set.
const DefaultVariant = "w2"

// ResolveVariant picks the variant name to use: flagValue if the
// caller passed --variant explicitly (non-empty), else
// KOALASIG_VARIANT if set, else DefaultVariant.
func ResolveVariant(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env, ok := os.LookupEnv(VariantEnvVar); ok && env != "" {
		return env
	}
	return DefaultVariant
}
