// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for user-provided
// words and prefixes.
//
// This package contains validators for inputs that reach the scoring engine
// or word-list files. Using these validators keeps malformed guesses out of
// the hot path and gives clients precise rejection messages.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// wordPattern matches a complete playable word: exactly five letters A-Z.
var wordPattern = regexp.MustCompile(`^[A-Z]{5}$`)

// prefixPattern matches a partial word as typed: zero to five letters A-Z.
var prefixPattern = regexp.MustCompile(`^[A-Z]{0,5}$`)

// ValidateWord validates a complete five-letter word.
//
// Valid words:
//   - exactly 5 characters
//   - uppercase letters A-Z only
//
// Returns an error if the word is invalid.
//
// Example:
//
//	if err := validation.ValidateWord(word); err != nil {
//	    return nil, fmt.Errorf("invalid guess: %w", err)
//	}
func ValidateWord(word string) error {
	if word == "" {
		return fmt.Errorf("word cannot be empty")
	}

	if !wordPattern.MatchString(word) {
		return fmt.Errorf("invalid word format: %q (must be exactly 5 letters A-Z)", word)
	}

	return nil
}

// ValidatePrefix validates a typed word prefix. The empty prefix is valid
// and matches every word.
func ValidatePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("invalid prefix format: %q (must be 0-5 letters A-Z)", prefix)
	}
	return nil
}

// SanitizeWord normalizes and validates a word. Returns the uppercase word
// if valid, or an error if invalid.
//
// Use this when you need both validation and normalization:
//
//	safeWord, err := validation.SanitizeWord(userInput)
//	if err != nil {
//	    return err
//	}
func SanitizeWord(word string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(word))
	if err := ValidateWord(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// SanitizePrefix normalizes and validates a typed prefix.
func SanitizePrefix(prefix string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(prefix))
	if err := ValidatePrefix(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
