// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver"
)

// runServe starts the solver server from the loaded YAML config.
func runServe(cmd *cobra.Command, args []string) {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(config.Observability.LogLevel),
		LogDir:  config.Observability.LogDir,
		Service: "solver",
	})
	defer logger.Close()

	answersPath := config.Wordlists.AnswersPath
	if answersPath == "" {
		answersPath = "data/answers.txt"
	}

	cfg := solver.Config{
		Port:           config.Server.Port,
		GinMode:        config.Server.GinMode,
		AnswersPath:    answersPath,
		GuessesPath:    config.Wordlists.GuessesPath,
		WatchWordlists: config.Wordlists.Watch,
		Workers:        config.Solver.Workers,
		RequestTimeout: time.Duration(config.Solver.RequestTimeoutSeconds) * time.Second,
		OTelEndpoint:   config.Observability.OTelEndpoint,
		Logger:         logger,
	}

	svc, err := solver.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create solver: %v", err)
	}
	if err := svc.Run(); err != nil {
		log.Fatalf("Solver error: %v", err)
	}
}
