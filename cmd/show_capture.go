// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/velocio/pkg/velocio"
	"github.com/spf13/cobra"
)

var showCaptureCmd = &cobra.Command{
	Use:   "show_capture <file>",
	Short: "Display a capture file",
	Long: `Render the transactions stored in a capture file written with --capture.

No device is needed. The --display mode applies as for live output, so a
capture taken in normal mode can be read back in mixed or raw mode.`,
	Args: cobra.ExactArgs(1),
	RunE: runShowCapture,
}

func init() {
	rootCmd.AddCommand(showCaptureCmd)
}

func runShowCapture(cmd *cobra.Command, args []string) error {
	mode, err := cfg.DisplayMode()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	return writeCapture(cmd.OutOrStdout(), f, velocio.NewRenderer(mode, nil))
}

// writeCapture renders every record in r. Raw mode prints only the
// response bytes; the other modes prefix each line with time and index.
func writeCapture(w io.Writer, r io.Reader, renderer *velocio.Renderer) error {
	cr := velocio.NewCaptureReader(r)
	count := 0
	for {
		t, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("after %d records: %w", count, err)
		}
		count++

		if renderer.Mode() == velocio.DisplayRaw {
			fmt.Fprintln(w, renderer.RenderTransaction(t))
			continue
		}
		fmt.Fprintf(w, "[%s] #%-3d %s\n", t.Timestamp.Local().Format("15:04:05.000"), t.Index, renderer.RenderTransaction(t))
	}

	logger.Debug().Int("records", count).Msg("capture read")
	return nil
}
