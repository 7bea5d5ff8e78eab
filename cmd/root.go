// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Thermoquad/velocio/internal/config"
	"github.com/Thermoquad/velocio/internal/logging"
	"github.com/Thermoquad/velocio/pkg/velocio"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger = zerolog.Nop()
	v      = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "velocio [flags] <operation> | --raw <hex data>",
	Short: "Control Things Velocio",
	Long: `Velocio - Send control, read and debug instructions to Velocio ACE/Vortex PLCs.

Give the name of an operation (see "velocio operations"), or raw hex data with
--raw. Raw data can hold one inclusive byte range in the form [<start>,<end>]
which sends one frame per value:

  velocio play
  velocio read_output_bits
  velocio --raw 56 ff ff 00 08 0a 00 [07,0c]
  velocio --display=mixed --raw 56 ff ff 00 08 0a 00 [01,06]

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

Every flag can also be set in ~/.velocio.yaml or with a VELOCIO_ environment
variable (VELOCIO_PORT, VELOCIO_DISPLAY, ...). For WebSocket authentication the
password is read from VELOCIO_PASSWORD, or prompted if not set.`,
	Version:           "1.1.0",
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runRoot,
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "Config file (default $HOME/.velocio.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every frame to stderr")

	// Serial connection flags
	flags.StringP("port", "p", "", "Serial port device (default /dev/ttyACM0)")
	flags.IntP("baud", "b", 0, "Baud rate (serial only, default 9600)")

	// WebSocket connection flags
	flags.StringP("url", "u", "", "WebSocket URL (ws:// or wss://)")
	flags.String("username", "", "Username for HTTP Basic auth")
	flags.Bool("no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Output and timing
	flags.String("display", "", "Response display mode: normal, raw or mixed")
	flags.Duration("settle", 0, "Pause after each write and after each response (default 100ms)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"port":          "port",
		"baud":          "baud",
		"url":           "url",
		"username":      "username",
		"no_ssl_verify": "no-ssl-verify",
		"display":       "display",
		"settle":        "settle",
		"log_level":     "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// loadConfig reads configuration and sets up logging before any command runs
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logger, err = logging.Setup(cfg.LogLevel, verbose)
	if err != nil {
		return err
	}
	if cfg.File != "" {
		logger.Debug().Str("file", cfg.File).Msg("config loaded")
	}
	return nil
}

// Execute runs the root command and reports any error on stderr.
// Usage is printed for input errors.
func Execute() error {
	c, err := rootCmd.ExecuteC()
	if err == nil {
		return nil
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "[!] ERROR")
	fmt.Fprintf(os.Stderr, "[!] MSG: %v\n", err)
	fmt.Fprintln(os.Stderr)

	if isUsageError(err) {
		c.SetOut(os.Stderr)
		_ = c.Usage()
	}
	return err
}

// ExitCode maps an error returned by Execute to a process exit code:
// 2 for usage and input errors, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if isUsageError(err) {
		return 2
	}
	return 1
}

func isUsageError(err error) bool {
	var ue *usageError
	return errors.As(err, &ue) || velocio.IsInputError(err)
}
