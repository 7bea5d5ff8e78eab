// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Thermoquad/velocio/pkg/velocio"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "velocio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, velocio.DefaultPort, cfg.Port)
	assert.Equal(t, velocio.DefaultBaudRate, cfg.Baud)
	assert.Equal(t, velocio.DefaultSettle, cfg.Settle)
	assert.Equal(t, "", cfg.File)

	mode, err := cfg.DisplayMode()
	require.NoError(t, err)
	assert.Equal(t, velocio.DisplayNormal, mode)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
port: /dev/ttyACM1
baud: 115200
display: mixed
settle: 250ms
operations:
  read_first_input:
    description: read input 1 only
    frames:
      - 56 ff ff 00 08 0a 00 01
  blink_all:
    frames:
      - 56ffff00151101000100000901000001003f000001
      - 56ffff00151101000100000901000001003f000000
`)
	t.Setenv("VELOCIO_BAUD", "19200")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.Port)
	assert.Equal(t, 19200, cfg.Baud, "environment overrides the file")
	assert.Equal(t, 250*time.Millisecond, cfg.Settle)
	assert.Equal(t, path, cfg.File)

	mode, err := cfg.DisplayMode()
	require.NoError(t, err)
	assert.Equal(t, velocio.DisplayMixed, mode)

	table, err := cfg.CommandTable()
	require.NoError(t, err)

	op, err := table.Lookup("read_first_input")
	require.NoError(t, err)
	assert.Equal(t, "read input 1 only", op.Description)
	require.Len(t, op.Frames, 1)
	assert.Equal(t, velocio.Frame{0x56, 0xff, 0xff, 0x00, 0x08, 0x0a, 0x00, 0x01}, op.Frames[0])

	op, err = table.Lookup("blink_all")
	require.NoError(t, err)
	assert.Len(t, op.Frames, 2)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative settle", "settle: -1s\n"},
		{"zero baud", "baud: 0\n"},
		{"no port or url", "port: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(viper.New(), writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestCommandTable_BadUserOperation(t *testing.T) {
	tests := []struct {
		name string
		ops  map[string]OperationConfig
		want error
	}{
		{"odd hex", map[string]OperationConfig{"bad": {Frames: []string{"56f"}}}, velocio.ErrOddLengthHex},
		{"shadows builtin", map[string]OperationConfig{"play": {Frames: []string{"56"}}}, velocio.ErrDuplicateOperation},
		{"no frames", map[string]OperationConfig{"empty": {}}, velocio.ErrEmptyInstruction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Port: velocio.DefaultPort, Baud: 9600, Operations: tt.ops}
			_, err := cfg.CommandTable()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
