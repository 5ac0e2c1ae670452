// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"crypto/sha256"

	"github.com/hintwell/hintwell/services/solver/datatypes"
)

// =============================================================================
// Candidate set derivation
// =============================================================================

// survivorsKey builds the cache key for a history's surviving-answer set.
// Two histories implying the same rounds in the same order share a key;
// reordered histories recompute, which is harmless.
func survivorsKey(history datatypes.History) [32]byte {
	buf := make([]byte, 0, len(history)*(datatypes.WordLength+1))
	for i := range history {
		buf = append(buf, history[i].Guess[:]...)
		buf = append(buf, byte(PatternOf(history[i].Feedback)))
	}
	return sha256.Sum256(buf)
}

// survivingAnswers returns the subset of the answer universe consistent with
// history, preserving universe order. Results are cached per history in an
// LRU keyed by survivorsKey; cached slices are immutable and shared.
func (e *Engine) survivingAnswers(history datatypes.History) []datatypes.Word {
	if len(history) == 0 {
		return e.answers
	}

	key := survivorsKey(history)
	if cached, ok := e.survivors.Get(key); ok {
		return cached
	}

	filtered := make([]datatypes.Word, 0, len(e.answers))
	for _, a := range e.answers {
		if Consistent(a, history) {
			filtered = append(filtered, a)
		}
	}

	e.survivors.Add(key, filtered)
	return filtered
}

// candidateGuesses returns the subset of the guess universe eligible under
// the policy: prefix-matched, and history-consistent when StrictGuesses is
// set. Universe order is preserved.
func (e *Engine) candidateGuesses(history datatypes.History, policy datatypes.Policy) []datatypes.Word {
	if policy.TypedPrefix == "" && !policy.StrictGuesses {
		return e.guesses
	}

	filtered := make([]datatypes.Word, 0, len(e.guesses))
	for _, g := range e.guesses {
		if !g.HasPrefix(policy.TypedPrefix) {
			continue
		}
		if policy.StrictGuesses && !Consistent(g, history) {
			continue
		}
		filtered = append(filtered, g)
	}
	return filtered
}
