// Command koalasig is a thin CLI over the xmss/serialize packages
// (spec §6): keygen, sign, verify, and inspect, each a direct wrapper
// with no logic of its own beyond flag parsing and file I/O.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
