package main

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	log.SetHandler(cli.Default)

	rootCmd := &cobra.Command{
		Use:   "maplesniffer",
		Short: "Passive analyzer for the MapleStory TCP protocol",
		Long: `maplesniffer decodes a captured MapleStory session: the cleartext
handshake, the per-direction AES/XOR cipher streams it seeds, and the
dynamic opcode remap table the server ships shortly after connecting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newCaptureCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
