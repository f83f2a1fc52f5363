package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var log = zerolog.New(os.Stderr).With().Timestamp().Str("cmd", "koalasig").Logger()

var rootCmd = &cobra.Command{
	Use:   "koalasig",
	Short: "Generalized XMSS over KoalaBear/Poseidon2 (spec §6 external interface)",
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(inspectCmd)
}
