package main

import (
	"crypto/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/koala-crypto/xmss-koalabear/serialize"
)

var (
	keygenVariant         string
	keygenActivationEpoch int
	keygenNumActive       int
	keygenOutPK           string
	keygenOutSK           string
	keygenMinimal         bool
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a key pair active over [activation, activation+count)",
	RunE:  runKeygen,
}

func init() {
	f := keygenCmd.Flags()
	f.StringVar(&keygenVariant, "variant", "", "parameter variant: w1, w2, w4, ts256 (default from KOALASIG_VARIANT env or w2)")
	f.IntVar(&keygenActivationEpoch, "activation", 0, "first active epoch")
	f.IntVar(&keygenNumActive, "count", 1, "number of active epochs")
	f.StringVar(&keygenOutPK, "out-pk", "pk.bin", "public key output path")
	f.StringVar(&keygenOutSK, "out-sk", "sk.bin", "secret key output path")
	f.BoolVar(&keygenMinimal, "minimal", false, "write a minimal secret key (no Merkle subtree)")
}

func runKeygen(_ *cobra.Command, _ []string) error {
	v, err := lookupVariant(keygenVariant)
	if err != nil {
		return err
	}
	p, err := v.parameters()
	if err != nil {
		return err
	}

	scheme, _ := v.scheme()
	pk, sk := scheme.KeyGen(rand.Reader, keygenActivationEpoch, keygenNumActive)

	pkBytes, err := serialize.EncodePublicKey(pk, p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(keygenOutPK, pkBytes, 0o600); err != nil {
		return err
	}

	var skBytes []byte
	if keygenMinimal {
		skBytes, err = serialize.EncodeSecretKeyMinimal(sk, p)
	} else {
		skBytes, err = serialize.EncodeSecretKeyFull(sk, p)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(keygenOutSK, skBytes, 0o600); err != nil {
		return err
	}

	log.Info().
		Str("variant", v.name).
		Int("activation", keygenActivationEpoch).
		Int("count", keygenNumActive).
		Str("pk", keygenOutPK).
		Str("sk", keygenOutSK).
		Msg("generated key pair")

	return nil
}
