package main

import (
	"fmt"

	"github.com/korjavin/dinnerboard/pkg/roster"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var learn bool

	cmd := &cobra.Command{
		Use:   "import <settings.json>",
		Short: "Import tonight's rooms and extra dishes from a settings file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.roster.Import(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range roster.Warnings(f) {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			fmt.Fprintf(out, "Imported %d rooms and %d extra dishes\n", len(f.Rooms), len(f.ExtraDishes))

			if learn {
				n, err := a.readings.Learn(roster.Dishes(f.Roster, f.ExtraDishes))
				if err != nil {
					a.log.Warn("Failed to learn some dish readings: %v", err)
				}
				fmt.Fprintf(out, "Learned %d dish readings\n", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&learn, "readings", true, "look up readings of dishes the built-in table lacks")
	return cmd
}
