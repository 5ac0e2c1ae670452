// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command solver starts the Hintwell solver HTTP server.
//
// This is the main entry point for the containerized solver service. It
// reads configuration from environment variables and starts the server.
//
// # Environment Variables
//
//   - SOLVER_PORT: HTTP server port (default: 12310)
//   - SOLVER_ANSWERS_PATH: answer word list file (default: data/answers.txt)
//   - SOLVER_GUESSES_PATH: guess word list file (default: answers list)
//   - SOLVER_WATCH_WORDLISTS: hot-reload word lists on change (default: true)
//   - SOLVER_WORKERS: scoring pool size (default: auto)
//   - SOLVER_REQUEST_TIMEOUT_SECONDS: per-request timeout (default: 30)
//   - SOLVER_LOG_LEVEL: DEBUG, INFO, WARN, ERROR (default: INFO)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: hintwell-otel-collector:4317, "off" disables)
//
// # Usage
//
//	# Build
//	go build -o solver ./cmd/solver
//
//	# Run
//	./solver
//
//	# Or via container
//	podman-compose up solver
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver"
)

func main() {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(getEnvString("SOLVER_LOG_LEVEL", "INFO")),
		Service: "solver",
		JSON:    true,
	})
	defer logger.Close()

	cfg := solver.Config{
		Port:           getEnvInt("SOLVER_PORT", 12310),
		AnswersPath:    getEnvString("SOLVER_ANSWERS_PATH", "data/answers.txt"),
		GuessesPath:    os.Getenv("SOLVER_GUESSES_PATH"),
		WatchWordlists: getEnvBool("SOLVER_WATCH_WORDLISTS", true),
		Workers:        getEnvInt("SOLVER_WORKERS", 0),
		RequestTimeout: time.Duration(getEnvInt("SOLVER_REQUEST_TIMEOUT_SECONDS", 0)) * time.Second,
		OTelEndpoint:   getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "hintwell-otel-collector:4317"),
		Logger:         logger,
	}

	logger.Info("starting solver",
		"port", cfg.Port,
		"answers_path", cfg.AnswersPath,
		"guesses_path", cfg.GuessesPath,
		"watch_wordlists", cfg.WatchWordlists,
	)

	svc, err := solver.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create solver: %v", err)
	}

	if err := svc.Run(); err != nil {
		log.Fatalf("Solver error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
