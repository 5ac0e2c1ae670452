// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"fmt"
	"math"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver/datatypes"
)

// defaultSurvivorCacheSize bounds the LRU of derived surviving-answer sets.
// Entries are small (a word slice per observed history), so a few thousand
// covers an interactive session comfortably.
const defaultSurvivorCacheSize = 2048

// =============================================================================
// Engine handle
// =============================================================================

// Engine owns the immutable answer and guess universes and the scoring
// machinery. Construct once with New and share; all methods are safe for
// concurrent use.
type Engine struct {
	answers []datatypes.Word
	guesses []datatypes.Word

	workers         int
	shardsPerWorker int

	survivors *lru.Cache[[32]byte, []datatypes.Word]
	log       *logging.Logger
}

// Options tunes engine construction. The zero value selects sensible
// defaults for every field.
type Options struct {
	// Workers sets the scoring pool size. Zero selects
	// min(max(NumCPU-1, 1), 8).
	Workers int

	// ShardsPerWorker sets shard granularity. Zero selects 4.
	ShardsPerWorker int

	// SurvivorCacheSize bounds the surviving-answer LRU. Zero selects the
	// package default.
	SurvivorCacheSize int

	// Logger receives debug-level request summaries. Nil selects the
	// process default logger.
	Logger *logging.Logger
}

// Result is the outcome of one suggestion request.
type Result struct {
	// Ranked holds at most topK scored guesses, best first. Empty when no
	// answer survives or no guess is eligible.
	Ranked []ScoredGuess

	// RemainingAnswers counts the answers still consistent with the
	// request's history.
	RemainingAnswers int
}

// EmitFunc receives progressive ranking snapshots during a streaming
// request. Depth counts the shards merged into the snapshot; the snapshot
// with the highest depth is the final ranking.
type EmitFunc func(ranked []ScoredGuess, remainingAnswers, depth int)

// New validates both universes and builds an Engine around them.
//
// Every entry must normalize to a five-letter A-Z word; the first offender
// fails construction with an error wrapping datatypes.ErrInvalidWord. The
// universes are copied, so callers may reuse their slices.
func New(answers, guesses []string, opts Options) (*Engine, error) {
	answerWords, err := parseUniverse(answers, "answer")
	if err != nil {
		return nil, err
	}
	guessWords, err := parseUniverse(guesses, "guess")
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
		if workers > maxWorkers {
			workers = maxWorkers
		}
	}
	shardsPerWorker := opts.ShardsPerWorker
	if shardsPerWorker <= 0 {
		shardsPerWorker = defaultShardsPerWorker
	}
	cacheSize := opts.SurvivorCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultSurvivorCacheSize
	}
	survivors, err := lru.New[[32]byte, []datatypes.Word](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create survivor cache: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}

	return &Engine{
		answers:         answerWords,
		guesses:         guessWords,
		workers:         workers,
		shardsPerWorker: shardsPerWorker,
		survivors:       survivors,
		log:             log,
	}, nil
}

func parseUniverse(words []string, kind string) ([]datatypes.Word, error) {
	parsed := make([]datatypes.Word, len(words))
	for i, s := range words {
		w, err := datatypes.ParseWord(s)
		if err != nil {
			return nil, fmt.Errorf("%s universe entry %d: %w", kind, i, err)
		}
		parsed[i] = w
	}
	return parsed, nil
}

// AnswerCount returns the size of the answer universe.
func (e *Engine) AnswerCount() int { return len(e.answers) }

// GuessCount returns the size of the guess universe.
func (e *Engine) GuessCount() int { return len(e.guesses) }

// =============================================================================
// Suggestion entry points
// =============================================================================

// Suggest runs one single-shot suggestion request and returns the final
// ranking. It blocks until done, ctx cancellation, or ctx deadline;
// cancellation surfaces as ctx's error with no partial result.
func (e *Engine) Suggest(ctx context.Context, history datatypes.History, policy datatypes.Policy) (*Result, error) {
	return e.solve(ctx, history, policy, nil)
}

// SuggestStream runs one suggestion request, invoking emit with a re-ranked
// snapshot after every merged shard. The final snapshot equals the returned
// Result. emit is called from the dispatching goroutine and must not block
// for long.
func (e *Engine) SuggestStream(ctx context.Context, history datatypes.History, policy datatypes.Policy, emit EmitFunc) (*Result, error) {
	return e.solve(ctx, history, policy, emit)
}

func (e *Engine) solve(ctx context.Context, history datatypes.History, policy datatypes.Policy, emit EmitFunc) (*Result, error) {
	surviving := e.survivingAnswers(history)
	topK := policy.EffectiveTopK()

	e.log.Debug("solving suggestion request",
		"history_len", len(history),
		"surviving_answers", len(surviving),
		"strict_guesses", policy.StrictGuesses,
		"typed_prefix", policy.TypedPrefix,
		"top_k", topK,
	)

	// No surviving answer: the painted history contradicts the universe.
	// Fail soft with an empty ranking.
	if len(surviving) == 0 {
		return &Result{Ranked: []ScoredGuess{}, RemainingAnswers: 0}, nil
	}

	// A single survivor is a forced win. Skip scoring entirely.
	if len(surviving) == 1 {
		return &Result{
			Ranked:           []ScoredGuess{{Word: surviving[0], Score: math.Inf(1)}},
			RemainingAnswers: 1,
		}, nil
	}

	candidates := e.candidateGuesses(history, policy)
	if len(candidates) == 0 {
		return &Result{Ranked: []ScoredGuess{}, RemainingAnswers: len(surviving)}, nil
	}

	var dispatchEmit func(ranked []ScoredGuess, depth int)
	if emit != nil {
		remaining := len(surviving)
		dispatchEmit = func(ranked []ScoredGuess, depth int) {
			emit(ranked, remaining, depth)
		}
	}

	ranked, err := e.dispatch(ctx, candidates, surviving, topK, dispatchEmit)
	if err != nil {
		return nil, err
	}
	return &Result{Ranked: ranked, RemainingAnswers: len(surviving)}, nil
}
