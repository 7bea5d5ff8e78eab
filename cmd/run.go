// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/velocio/pkg/velocio"
	"github.com/spf13/cobra"
)

var (
	rawMode     bool
	capturePath string
	showStats   bool
)

func init() {
	rootCmd.Flags().BoolVar(&rawMode, "raw", false, "Send raw hex data given as arguments instead of an operation")
	rootCmd.Flags().StringVar(&capturePath, "capture", "", "Append every transaction to this capture file")
	rootCmd.Flags().BoolVar(&showStats, "stats", false, "Print transaction statistics when done")
}

// usageError marks errors that should print usage
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func newUsageError(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// resolveArgs turns the command line into frames without touching the
// channel.
func resolveArgs(table *velocio.CommandTable, args []string, raw bool) (velocio.FrameSet, error) {
	if raw {
		if len(args) == 0 {
			return nil, newUsageError("--raw needs hex data")
		}
		return velocio.CompileRaw(args)
	}

	switch len(args) {
	case 0:
		return nil, newUsageError("no instruction given")
	case 1:
		op, err := table.Lookup(args[0])
		if err != nil {
			return nil, err
		}
		return op.Frames, nil
	default:
		return nil, newUsageError("expected one operation, got %d arguments (use --raw for hex data)", len(args))
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	mode, err := cfg.DisplayMode()
	if err != nil {
		return err
	}
	table, err := cfg.CommandTable()
	if err != nil {
		return fmt.Errorf("config %s: %v", cfg.File, err)
	}
	frames, err := resolveArgs(table, args, rawMode)
	if err != nil {
		return err
	}

	s, err := newSession(mode, capturePath)
	if err != nil {
		return err
	}
	defer s.Close()

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()
	s.attach(conn)

	logger.Info().Str("connection", connInfo).Int("frames", len(frames)).Msg("sending")

	out := cmd.OutOrStdout()
	err = s.run(frames, func(_ velocio.Transaction, line string) error {
		_, werr := fmt.Fprintln(out, line)
		return werr
	})

	if showStats {
		fmt.Fprint(out, "\n"+s.stats.String())
	}
	return err
}
