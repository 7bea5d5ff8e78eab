// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/velocio/pkg/velocio"
	"github.com/spf13/cobra"
)

var showFrames bool

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List the named operations",
	Long: `List every operation that can be given by name, grouped the way the PLC
tooling groups them. Operations defined under "operations:" in the config file
are listed last.

Use --frames to also print the hex frames each operation sends.`,
	Args: cobra.NoArgs,
	RunE: runOperations,
}

func init() {
	rootCmd.AddCommand(operationsCmd)
	operationsCmd.Flags().BoolVar(&showFrames, "frames", false, "Print the frames each operation sends")
}

func runOperations(cmd *cobra.Command, args []string) error {
	table, err := cfg.CommandTable()
	if err != nil {
		return fmt.Errorf("config %s: %v", cfg.File, err)
	}
	writeOperations(cmd.OutOrStdout(), table, showFrames)
	return nil
}

// writeOperations prints operations grouped, one per line
func writeOperations(w io.Writer, table *velocio.CommandTable, frames bool) {
	group := velocio.Group(-1)
	for _, op := range table.Operations() {
		if op.Group != group {
			if group >= 0 {
				fmt.Fprintln(w)
			}
			group = op.Group
			fmt.Fprintf(w, " %s:\n\n", group)
		}

		fmt.Fprintf(w, " \t%-22s%s\n", op.Name, op.Description)
		if !frames {
			continue
		}
		for _, f := range op.Frames {
			fmt.Fprintf(w, " \t%-22s  %s\n", "", f.Hex())
		}
	}
}
