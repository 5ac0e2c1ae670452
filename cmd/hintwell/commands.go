// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

// --- Global Command Variables ---
var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "hintwell",
		Short: "A cli to run and manage the Hintwell word-game solver",
		Long: `Hintwell suggests the most informative next guess for five-letter
word games, ranking candidates by expected information gain.`,
	}

	// --- Server ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the solver HTTP server",
		Run:   runServe, // Defined in cmd_serve.go
	}

	// --- Word lists ---
	wordsCmd = &cobra.Command{
		Use:   "words",
		Short: "Inspect and validate word-list files",
	}
	wordsCheckCmd = &cobra.Command{
		Use:   "check [file...]",
		Short: "Validate word-list files and report entry counts",
		Args:  cobra.MinimumNArgs(1),
		Run:   runWordsCheck, // Defined in cmd_words.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath,
		"Path to the YAML configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(wordsCmd)
	wordsCmd.AddCommand(wordsCheckCmd)
}
