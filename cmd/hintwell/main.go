// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command hintwell is the operator CLI for the Hintwell solver stack.
//
// It runs the solver server from a YAML config file and offers word-list
// maintenance subcommands.
//
// # Usage
//
//	hintwell serve --config config.yaml
//	hintwell words check data/answers.txt
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var config Config

// Config is the hintwell CLI configuration, read from a YAML file.
type Config struct {
	Server struct {
		Port    int    `yaml:"port"`
		GinMode string `yaml:"gin_mode"`
	} `yaml:"server"`
	Wordlists struct {
		AnswersPath string `yaml:"answers_path"`
		GuessesPath string `yaml:"guesses_path"`
		Watch       bool   `yaml:"watch"`
	} `yaml:"wordlists"`
	Solver struct {
		Workers               int `yaml:"workers"`
		RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	} `yaml:"solver"`
	Observability struct {
		OTelEndpoint string `yaml:"otel_endpoint"`
		LogLevel     string `yaml:"log_level"`
		LogDir       string `yaml:"log_dir"`
	} `yaml:"observability"`
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

// loadConfig reads the YAML config file into the package-level config.
// A missing file at the default path leaves the zero config in place so
// defaults apply; a missing file named by --config is an error.
func loadConfig(path string) error {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == defaultConfigPath {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(yamlFile, &config)
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if err := loadConfig(configPath); err != nil {
			log.Fatalf("Error reading %s: %v", configPath, err)
		}
	}
}
