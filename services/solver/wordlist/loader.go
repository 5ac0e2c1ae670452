// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package wordlist loads and watches the answer and guess universes.
//
// # Description
//
// Word lists are plain text files, one word per line. Blank lines and lines
// starting with '#' are skipped. Words are normalized to uppercase; any
// entry that does not normalize to five letters A-Z fails the load with its
// line number.
//
// The Watcher rebuilds on file changes so a running service picks up list
// edits without a restart.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/hintwell/hintwell/pkg/validation"
)

// Load reads one word list from path. The returned slice preserves file
// order.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, err := validation.SanitizeWord(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %s is empty", path)
	}
	return words, nil
}

// LoadUniverses reads the answer and guess lists. When guessesPath is empty
// the answer list doubles as the guess universe.
func LoadUniverses(answersPath, guessesPath string) (answers, guesses []string, err error) {
	answers, err = Load(answersPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load answers: %w", err)
	}
	if guessesPath == "" {
		return answers, answers, nil
	}
	guesses, err = Load(guessesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load guesses: %w", err)
	}
	return answers, guesses, nil
}
