package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koala-crypto/xmss-koalabear/serialize"
)

var (
	verifyVariant string
	verifyPKPath  string
	verifyEpoch   uint32
	verifyMsgHex  string
	verifySigPath string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a signature against a public key, epoch, and message",
	RunE:  runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&verifyVariant, "variant", "", "parameter variant: w1, w2, w4, ts256 (default from KOALASIG_VARIANT env or w2)")
	f.StringVar(&verifyPKPath, "pk", "pk.bin", "public key path")
	f.Uint32Var(&verifyEpoch, "epoch", 0, "epoch the signature claims")
	f.StringVar(&verifyMsgHex, "msg", "", "message, hex-encoded (32 bytes)")
	f.StringVar(&verifySigPath, "sig", "sig.bin", "signature path")
}

func runVerify(_ *cobra.Command, _ []string) error {
	v, err := lookupVariant(verifyVariant)
	if err != nil {
		return err
	}

	message, err := hex.DecodeString(verifyMsgHex)
	if err != nil {
		return fmt.Errorf("decoding --msg: %w", err)
	}

	scheme, thash := v.scheme()

	pkBytes, err := os.ReadFile(verifyPKPath)
	if err != nil {
		return err
	}
	pk, _, err := serialize.DecodePublicKey(pkBytes, thash.OutputLen(), thash.ParameterLen())
	if err != nil {
		return fmt.Errorf("decoding public key: %w", err)
	}

	sigBytes, err := os.ReadFile(verifySigPath)
	if err != nil {
		return err
	}
	sigEpoch, sig, err := serialize.DecodeSignature(sigBytes, thash.OutputLen(), scheme.Encoding().RandLen())
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}
	if sigEpoch != verifyEpoch {
		return fmt.Errorf("signature epoch %d does not match --epoch %d", sigEpoch, verifyEpoch)
	}

	ok, err := scheme.Verify(pk, verifyEpoch, message, sig)
	if err != nil {
		log.Error().Err(err).Str("variant", v.name).Uint32("epoch", verifyEpoch).Msg("verification request rejected")
		return fmt.Errorf("verification request rejected: %w", err)
	}

	log.Info().Str("variant", v.name).Uint32("epoch", verifyEpoch).Bool("valid", ok).Msg("verified signature")

	if !ok {
		return fmt.Errorf("signature invalid")
	}
	return nil
}
