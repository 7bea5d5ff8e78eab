// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Velocio - Velocio PLC Instruction Tool
//
// A CLI tool for sending raw control, read and debug instructions to
// Velocio ACE/Vortex PLCs and displaying the responses.

package main

import (
	"os"

	"github.com/Thermoquad/velocio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
