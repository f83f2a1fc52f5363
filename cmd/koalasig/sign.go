package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koala-crypto/xmss-koalabear/serialize"
)

var (
	signVariant string
	signSKPath  string
	signEpoch   uint32
	signMsgHex  string
	signOut     string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a message at a given epoch with a full (non-minimal) secret key",
	RunE:  runSign,
}

func init() {
	f := signCmd.Flags()
	f.StringVar(&signVariant, "variant", "", "parameter variant: w1, w2, w4, ts256 (default from KOALASIG_VARIANT env or w2)")
	f.StringVar(&signSKPath, "sk", "sk.bin", "secret key path (full format, with Merkle subtree)")
	f.Uint32Var(&signEpoch, "epoch", 0, "epoch to sign at")
	f.StringVar(&signMsgHex, "msg", "", "message, hex-encoded (32 bytes)")
	f.StringVar(&signOut, "out", "sig.bin", "signature output path")
}

func runSign(_ *cobra.Command, _ []string) error {
	v, err := lookupVariant(signVariant)
	if err != nil {
		return err
	}

	message, err := hex.DecodeString(signMsgHex)
	if err != nil {
		return fmt.Errorf("decoding --msg: %w", err)
	}

	scheme, thash := v.scheme()

	skBytes, err := os.ReadFile(signSKPath)
	if err != nil {
		return err
	}
	sk, _, err := serialize.DecodeSecretKeyFull(skBytes, v.prfLen, thash.ParameterLen(), thash.OutputLen(), thash)
	if err != nil {
		return fmt.Errorf("decoding secret key (must be full format): %w", err)
	}

	sig, err := scheme.Sign(rand.Reader, sk, signEpoch, message)
	if err != nil {
		return err
	}

	if err := os.WriteFile(signOut, serialize.EncodeSignature(signEpoch, sig), 0o600); err != nil {
		return err
	}

	log.Info().Str("variant", v.name).Uint32("epoch", signEpoch).Str("out", signOut).Msg("signed message")
	return nil
}
