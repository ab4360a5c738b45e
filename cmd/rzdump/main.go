package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rzdump",
		Short: "Inspect and build rz21 frames",
		Long: `rzdump decodes captured rz21 byte streams and encodes frames by hand.

A frame is the preamble 72 7A 32 31, a one-byte packet id, a big-endian
u16 payload length (at most 1017) and the payload.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		scanCmd(),
		encodeCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
