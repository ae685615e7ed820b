package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/korjavin/dinnerboard/pkg/messages"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set every dish of today back to pending and clear room notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Reset the board of %s? [y/N] ", a.boards.Day())
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			b, err := a.reset.Run()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), messages.Reset(b))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
