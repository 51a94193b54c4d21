// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the HireLoop CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hireloop",
		Short: "HireLoop - identity and credential service",
		Long: `HireLoop is the identity and credential core for the job board:
registration, login, bearer tokens, one-time passwords, and the
authentication gate in front of the HTTP API.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
