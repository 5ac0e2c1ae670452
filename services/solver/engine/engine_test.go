// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver/datatypes"
)

var testUniverse = []string{
	"CRANE", "CRATE", "TRACE", "SLATE", "STARE",
	"SPEED", "ERASE", "ABIDE", "AUDIO", "TIGER",
}

// TestNew_RejectsMalformedUniverse verifies construction fails fast on the
// first bad entry, wrapping the word validation error.
func TestNew_RejectsMalformedUniverse(t *testing.T) {
	quiet := logging.New(logging.Config{Quiet: true})

	_, err := New([]string{"CRANE", "BAD"}, testUniverse, Options{Logger: quiet})
	require.Error(t, err)
	assert.ErrorIs(t, err, datatypes.ErrInvalidWord)
	assert.Contains(t, err.Error(), "answer universe entry 1")

	_, err = New(testUniverse, []string{"CR4NE"}, Options{Logger: quiet})
	require.Error(t, err)
	assert.ErrorIs(t, err, datatypes.ErrInvalidWord)
	assert.Contains(t, err.Error(), "guess universe entry 0")
}

// TestEngine_Counts verifies the universe sizes survive construction.
func TestEngine_Counts(t *testing.T) {
	e := testEngine(t, testUniverse[:4], testUniverse)
	assert.Equal(t, 4, e.AnswerCount())
	assert.Equal(t, len(testUniverse), e.GuessCount())
}

// TestSuggest_EmptyHistory verifies a fresh game ranks real candidates and
// reports the full universe as remaining.
func TestSuggest_EmptyHistory(t *testing.T) {
	e := testEngine(t, testUniverse, testUniverse)

	res, err := e.Suggest(context.Background(), nil, datatypes.Policy{TopK: 3})
	require.NoError(t, err)
	assert.Equal(t, len(testUniverse), res.RemainingAnswers)
	require.Len(t, res.Ranked, 3)

	for i := 1; i < len(res.Ranked); i++ {
		prev, cur := res.Ranked[i-1], res.Ranked[i]
		if prev.Score == cur.Score {
			assert.True(t, prev.Word.Less(cur.Word), "tie at rank %d not alphabetical", i)
		} else {
			assert.Greater(t, prev.Score, cur.Score, "rank %d out of order", i)
		}
	}
}

// TestSuggest_ForcedWin verifies a lone survivor is returned with an
// infinite score and no scoring pass.
func TestSuggest_ForcedWin(t *testing.T) {
	e := testEngine(t, []string{"CRANE", "SLATE"}, testUniverse)

	// CRANE against secret SLATE leaves only SLATE standing.
	h := historyOf(t, "SLATE", "CRANE")

	res, err := e.Suggest(context.Background(), h, datatypes.Policy{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.RemainingAnswers)
	require.Len(t, res.Ranked, 1)
	assert.Equal(t, "SLATE", res.Ranked[0].Word.String())
	assert.True(t, math.IsInf(res.Ranked[0].Score, 1))
}

// TestSuggest_ContradictoryHistory verifies an impossible history fails
// soft with an empty ranking rather than an error.
func TestSuggest_ContradictoryHistory(t *testing.T) {
	e := testEngine(t, testUniverse, testUniverse)

	allGreen := datatypes.Feedback{Colors: [datatypes.WordLength]datatypes.Color{
		datatypes.ColorGreen, datatypes.ColorGreen, datatypes.ColorGreen,
		datatypes.ColorGreen, datatypes.ColorGreen,
	}}
	h := datatypes.History{
		{Guess: datatypes.MustWord("CRANE"), Feedback: allGreen},
		{Guess: datatypes.MustWord("SLATE"), Feedback: allGreen},
	}

	res, err := e.Suggest(context.Background(), h, datatypes.Policy{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.RemainingAnswers)
	assert.Empty(t, res.Ranked)
}

// TestSuggest_NoCandidates verifies an unmatched prefix yields an empty
// ranking while still reporting survivors.
func TestSuggest_NoCandidates(t *testing.T) {
	e := testEngine(t, testUniverse, testUniverse)

	res, err := e.Suggest(context.Background(), nil, datatypes.Policy{TypedPrefix: "ZZ"})
	require.NoError(t, err)
	assert.Equal(t, len(testUniverse), res.RemainingAnswers)
	assert.Empty(t, res.Ranked)
}

// TestSuggest_TopKDefault verifies the zero policy falls back to the
// default ranking depth.
func TestSuggest_TopKDefault(t *testing.T) {
	e := testEngine(t, testUniverse, testUniverse)

	res, err := e.Suggest(context.Background(), nil, datatypes.Policy{})
	require.NoError(t, err)
	assert.Len(t, res.Ranked, datatypes.DefaultTopK)
}

// TestSuggest_CancelledContext verifies cancellation surfaces as the
// context error with no partial result.
func TestSuggest_CancelledContext(t *testing.T) {
	e := testEngine(t, testUniverse, testUniverse)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Suggest(ctx, nil, datatypes.Policy{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

// TestSuggestStream_Snapshots verifies progressive snapshots carry strictly
// increasing depth and the deepest snapshot matches the returned result.
func TestSuggestStream_Snapshots(t *testing.T) {
	e := testEngine(t, testUniverse, testUniverse)

	type snapshot struct {
		ranked    []ScoredGuess
		remaining int
		depth     int
	}
	var snapshots []snapshot
	emit := func(ranked []ScoredGuess, remaining, depth int) {
		cp := make([]ScoredGuess, len(ranked))
		copy(cp, ranked)
		snapshots = append(snapshots, snapshot{ranked: cp, remaining: remaining, depth: depth})
	}

	res, err := e.SuggestStream(context.Background(), nil, datatypes.Policy{TopK: 3}, emit)
	require.NoError(t, err)
	require.NotEmpty(t, snapshots)

	for i, s := range snapshots {
		assert.Equal(t, len(testUniverse), s.remaining)
		if i > 0 {
			assert.Greater(t, s.depth, snapshots[i-1].depth, "snapshot depth must increase")
		}
	}

	last := snapshots[len(snapshots)-1]
	assert.Equal(t, res.Ranked, last.ranked, "deepest snapshot must equal the final ranking")
}

// TestSuggestStream_DegenerateSkipsEmit verifies the forced-win path
// returns without streaming partial rankings.
func TestSuggestStream_DegenerateSkipsEmit(t *testing.T) {
	e := testEngine(t, []string{"CRANE", "SLATE"}, testUniverse)
	h := historyOf(t, "SLATE", "CRANE")

	calls := 0
	res, err := e.SuggestStream(context.Background(), h, datatypes.Policy{}, func([]ScoredGuess, int, int) {
		calls++
	})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	require.Len(t, res.Ranked, 1)
	assert.Equal(t, "SLATE", res.Ranked[0].Word.String())
}

// TestSuggest_DeterministicAcrossRuns verifies repeated identical requests
// produce identical rankings despite the parallel merge order.
func TestSuggest_DeterministicAcrossRuns(t *testing.T) {
	e := testEngine(t, testUniverse, testUniverse)
	h := historyOf(t, "CRANE", "AUDIO")

	first, err := e.Suggest(context.Background(), h, datatypes.Policy{TopK: 4})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		res, err := e.Suggest(context.Background(), h, datatypes.Policy{TopK: 4})
		require.NoError(t, err)
		assert.Equal(t, first.Ranked, res.Ranked, "run %d diverged", i)
	}
}
