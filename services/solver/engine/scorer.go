// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"math"
	"sort"

	"github.com/hintwell/hintwell/services/solver/datatypes"
)

// ScoredGuess pairs a candidate word with its expected information gain in
// bits. A score of +Inf marks a forced win: exactly one answer survives and
// this word is it.
type ScoredGuess struct {
	Word  datatypes.Word
	Score float64
}

// informationGain computes the expected entropy reduction of playing guess
// against the surviving answers.
//
// The answers are partitioned into feedback buckets through the packed
// oracle; a 243-slot count array on the stack keeps the loop allocation
// free. With N answers and bucket sizes |B|, the gain is
//
//	log2(N) - sum(|B|/N * log2(|B|))
//
// A guess whose buckets all hold at most one answer achieves the full
// log2(N).
func informationGain(guess datatypes.Word, answers []datatypes.Word) float64 {
	n := len(answers)
	if n == 0 {
		return 0
	}

	var buckets [NumPatterns]int32
	for _, a := range answers {
		buckets[ScorePattern(a, guess)]++
	}

	total := float64(n)
	expected := 0.0
	for _, count := range buckets {
		if count > 1 {
			c := float64(count)
			expected += (c / total) * math.Log2(c)
		}
	}
	return math.Log2(total) - expected
}

// rankTop sorts scored guesses by descending score, ties broken by
// ascending word, and truncates to topK. Sorting is stable with respect to
// nothing but this comparator, so equal inputs always produce equal output.
func rankTop(scored []ScoredGuess, topK int) []ScoredGuess {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Word.Less(scored[j].Word)
	})
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}
