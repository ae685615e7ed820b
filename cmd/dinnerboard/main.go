package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dinnerboard",
		Short: "Dinner service board: per-dish course status, kitchen queue and reset",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newBotCmd())
	root.AddCommand(newKitchenCmd())
	root.AddCommand(newAdvanceCmd())
	root.AddCommand(newResetCmd())
	root.AddCommand(newImportCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
