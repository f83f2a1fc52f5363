package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koala-crypto/xmss-koalabear/serialize"
)

var (
	inspectVariant string
	inspectKeyPath string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a human-readable summary of a public or secret key file",
	RunE:  runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectVariant, "variant", "", "parameter variant: w1, w2, w4, ts256 (default from KOALASIG_VARIANT env or w2)")
	f.StringVar(&inspectKeyPath, "key", "", "public or secret key path")
}

func runInspect(_ *cobra.Command, _ []string) error {
	if inspectKeyPath == "" {
		return fmt.Errorf("--key is required")
	}
	v, err := lookupVariant(inspectVariant)
	if err != nil {
		return err
	}
	_, thash := v.scheme()

	data, err := os.ReadFile(inspectKeyPath)
	if err != nil {
		return err
	}

	pkLen := thash.OutputLen() + thash.ParameterLen() + 1
	if len(data) == pkLen {
		pk, p, err := serialize.DecodePublicKey(data, thash.OutputLen(), thash.ParameterLen())
		if err != nil {
			return fmt.Errorf("decoding as public key: %w", err)
		}
		fmt.Printf("kind: public key\n")
		fmt.Printf("variant: %s (lifetime 2^%d)\n", v.name, p.LifetimeLog2)
		fmt.Printf("root: %x\n", []byte(pk.Root))
		fmt.Printf("parameter: %x\n", []byte(pk.Parameter))
		return nil
	}

	sk, p, err := serialize.DecodeSecretKeyMinimal(data, v.prfLen, thash.ParameterLen())
	if err == nil {
		fmt.Printf("kind: secret key (minimal)\n")
		fmt.Printf("variant: %s (lifetime 2^%d)\n", v.name, p.LifetimeLog2)
		fmt.Printf("activation epoch: %d\n", sk.ActivationEpoch)
		fmt.Printf("active epochs: %d\n", sk.NumActiveEpochs)
		return nil
	}

	sk, p, err = serialize.DecodeSecretKeyFull(data, v.prfLen, thash.ParameterLen(), thash.OutputLen(), thash)
	if err != nil {
		return fmt.Errorf("could not decode %q as a public key or secret key: %w", inspectKeyPath, err)
	}
	fmt.Printf("kind: secret key (full)\n")
	fmt.Printf("variant: %s (lifetime 2^%d)\n", v.name, p.LifetimeLog2)
	fmt.Printf("activation epoch: %d\n", sk.ActivationEpoch)
	fmt.Printf("active epochs: %d\n", sk.NumActiveEpochs)
	fmt.Printf("materialized subtree depth: %d\n", sk.Tree.GetDepth())
	return nil
}
