// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine implements the suggestion core: the feedback oracle, the
// consistency filter, candidate-set derivation, entropy scoring, and the
// sharded parallel dispatcher that ties them together behind the Engine
// handle.
//
// # Description
//
// Given a history of (guess, feedback) rounds and the fixed answer and guess
// universes, the engine ranks candidate guesses by expected information gain
// over the answers still consistent with the history. Scoring partitions the
// surviving answers into 243 feedback buckets per candidate guess, so the
// oracle below is the hottest code in the service and stays allocation-free.
//
// # Thread Safety
//
// An Engine's universes are immutable after construction and shared by
// reference across all workers. Per-request derived sets are immutable once
// built. All exported entry points are safe for concurrent use.
package engine

import (
	"github.com/hintwell/hintwell/services/solver/datatypes"
)

// NumPatterns is the count of distinct feedback values: 3^5.
const NumPatterns = 243

// Pattern is a feedback value packed as a base-3 integer in [0, 242].
// Position i contributes color * 3^i, with gray=0, yellow=1, green=2.
type Pattern uint8

// pow3 holds the per-position place values of the packed encoding.
var pow3 = [datatypes.WordLength]int{1, 3, 9, 27, 81}

// allGreenPattern is the packed value of five greens.
const allGreenPattern Pattern = 242

// ScorePattern computes the judge's feedback for guess against answer,
// returned in packed form.
//
// Two passes implement the duplicate-letter rule: greens first claim their
// letters from the answer's multiset, then remaining letters satisfy yellows
// left to right. A letter with no remaining copies stays gray.
func ScorePattern(answer, guess datatypes.Word) Pattern {
	var remaining [26]int8
	var green [datatypes.WordLength]bool
	p := 0

	for i := 0; i < datatypes.WordLength; i++ {
		if guess[i] == answer[i] {
			green[i] = true
			p += int(datatypes.ColorGreen) * pow3[i]
		} else {
			remaining[answer[i]-'A']++
		}
	}
	for i := 0; i < datatypes.WordLength; i++ {
		if green[i] {
			continue
		}
		c := guess[i] - 'A'
		if remaining[c] > 0 {
			remaining[c]--
			p += int(datatypes.ColorYellow) * pow3[i]
		}
	}
	return Pattern(p)
}

// Score computes the judge's feedback for guess against answer in unpacked
// form. Prefer ScorePattern in loops.
func Score(answer, guess datatypes.Word) datatypes.Feedback {
	return ScorePattern(answer, guess).Feedback()
}

// PatternOf packs a feedback value.
func PatternOf(f datatypes.Feedback) Pattern {
	p := 0
	for i, c := range f.Colors {
		p += int(c) * pow3[i]
	}
	return Pattern(p)
}

// Feedback unpacks the pattern into per-position colors.
func (p Pattern) Feedback() datatypes.Feedback {
	var f datatypes.Feedback
	v := int(p)
	for i := 0; i < datatypes.WordLength; i++ {
		f.Colors[i] = datatypes.Color(v % 3)
		v /= 3
	}
	return f
}
