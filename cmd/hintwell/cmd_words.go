// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hintwell/hintwell/services/solver/wordlist"
)

// runWordsCheck validates each word-list file and prints its entry count.
// Exits non-zero if any file fails.
func runWordsCheck(cmd *cobra.Command, args []string) {
	failed := false
	for _, path := range args {
		words, err := wordlist.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failed = true
			continue
		}
		seen := make(map[string]bool, len(words))
		duplicates := 0
		for _, w := range words {
			if seen[w] {
				duplicates++
			}
			seen[w] = true
		}
		fmt.Printf("OK   %s: %d words, %d unique, %d duplicates\n",
			path, len(words), len(seen), duplicates)
	}
	if failed {
		os.Exit(1)
	}
}
