// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import "github.com/hintwell/hintwell/services/solver/datatypes"

// Consistent reports whether word could still be the secret answer given
// every round in history.
//
// The test replays the judge: word is consistent with a round (g, f) exactly
// when scoring g against word reproduces f. This subsumes the usual
// green/yellow/gray positional rules, including all duplicate-letter cases,
// without a separate constraint formulation.
//
// O(|history|) packed-oracle calls per word, no allocation.
func Consistent(word datatypes.Word, history datatypes.History) bool {
	for i := range history {
		if ScorePattern(word, history[i].Guess) != PatternOf(history[i].Feedback) {
			return false
		}
	}
	return true
}
