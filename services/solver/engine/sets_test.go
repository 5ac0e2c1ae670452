// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"testing"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver/datatypes"
)

func testEngine(t *testing.T, answers, guesses []string) *Engine {
	t.Helper()
	e, err := New(answers, guesses, Options{
		Workers: 2,
		Logger:  logging.New(logging.Config{Quiet: true}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func historyOf(t *testing.T, answer string, guesses ...string) datatypes.History {
	t.Helper()
	a := datatypes.MustWord(answer)
	h := make(datatypes.History, 0, len(guesses))
	for _, g := range guesses {
		gw := datatypes.MustWord(g)
		h = append(h, datatypes.GuessEntry{Guess: gw, Feedback: Score(a, gw)})
	}
	return h
}

// TestSurvivorsKey verifies equal histories share a key and differing
// histories do not.
func TestSurvivorsKey(t *testing.T) {
	h1 := historyOf(t, "CRANE", "SLATE")
	h2 := historyOf(t, "CRANE", "SLATE")
	h3 := historyOf(t, "CRANE", "AUDIO")

	if survivorsKey(h1) != survivorsKey(h2) {
		t.Error("identical histories produced different keys")
	}
	if survivorsKey(h1) == survivorsKey(h3) {
		t.Error("different histories produced the same key")
	}
}

// TestSurvivingAnswers verifies filtering preserves universe order and the
// empty history returns the full universe.
func TestSurvivingAnswers(t *testing.T) {
	universe := []string{"CRANE", "GRAPE", "SLATE", "CRATE", "BRAVE"}
	e := testEngine(t, universe, universe)

	full := e.survivingAnswers(nil)
	if len(full) != len(universe) {
		t.Fatalf("empty history: %d survivors, want %d", len(full), len(universe))
	}

	// SLATE against secret CRANE paints BBGBG, eliminating SLATE itself
	// and CRATE (whose T would be green).
	h := historyOf(t, "CRANE", "SLATE")
	got := e.survivingAnswers(h)
	want := []string{"CRANE", "GRAPE", "BRAVE"}
	if len(got) != len(want) {
		t.Fatalf("survivors = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Errorf("survivor %d = %s, want %s (universe order)", i, got[i], w)
		}
	}
}

// TestSurvivingAnswers_Cached verifies repeated histories hit the LRU and
// return the shared slice.
func TestSurvivingAnswers_Cached(t *testing.T) {
	universe := []string{"CRANE", "GRAPE", "SLATE"}
	e := testEngine(t, universe, universe)

	h := historyOf(t, "CRANE", "SLATE")
	first := e.survivingAnswers(h)
	second := e.survivingAnswers(h)

	if len(first) == 0 {
		t.Fatal("expected survivors")
	}
	if &first[0] != &second[0] {
		t.Error("repeated history did not return the cached slice")
	}
}

// TestCandidateGuesses covers the prefix filter, the strict filter, and
// their combination.
func TestCandidateGuesses(t *testing.T) {
	answers := []string{"CRANE", "CRATE", "SLATE"}
	guesses := []string{"CRANE", "CRATE", "SLATE", "CRISP", "AUDIO"}
	e := testEngine(t, answers, guesses)

	h := historyOf(t, "CRANE", "AUDIO")

	t.Run("no policy returns full universe", func(t *testing.T) {
		got := e.candidateGuesses(h, datatypes.Policy{})
		if len(got) != len(guesses) {
			t.Errorf("%d candidates, want %d", len(got), len(guesses))
		}
	})

	t.Run("prefix narrows in universe order", func(t *testing.T) {
		got := e.candidateGuesses(h, datatypes.Policy{TypedPrefix: "CR"})
		want := []string{"CRANE", "CRATE", "CRISP"}
		if len(got) != len(want) {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
		for i, w := range want {
			if got[i].String() != w {
				t.Errorf("candidate %d = %s, want %s", i, got[i], w)
			}
		}
	})

	t.Run("strict keeps only history-consistent guesses", func(t *testing.T) {
		// AUDIO against CRANE paints one yellow A and grays U, D, I, O.
		// CRISP and AUDIO contradict that round.
		got := e.candidateGuesses(h, datatypes.Policy{StrictGuesses: true})
		for _, g := range got {
			if !Consistent(g, h) {
				t.Errorf("strict candidate %s is not history-consistent", g)
			}
		}
		for _, g := range got {
			if g.String() == "AUDIO" {
				t.Error("AUDIO survived strict filtering against its own non-green round")
			}
		}
	})

	t.Run("prefix and strict combine", func(t *testing.T) {
		got := e.candidateGuesses(h, datatypes.Policy{StrictGuesses: true, TypedPrefix: "SL"})
		for _, g := range got {
			if !g.HasPrefix("SL") || !Consistent(g, h) {
				t.Errorf("candidate %s violates combined policy", g)
			}
		}
	})

	t.Run("unmatched prefix yields empty", func(t *testing.T) {
		got := e.candidateGuesses(h, datatypes.Policy{TypedPrefix: "ZZ"})
		if len(got) != 0 {
			t.Errorf("candidates = %v, want none", got)
		}
	})
}
