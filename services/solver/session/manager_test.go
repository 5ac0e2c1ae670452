// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver/datatypes"
	"github.com/hintwell/hintwell/services/solver/engine"
)

var testUniverse = []string{
	"CRANE", "CRATE", "TRACE", "SLATE", "STARE",
	"SPEED", "ERASE", "ABIDE", "AUDIO", "TIGER",
}

func testManager(t *testing.T, config Config) *Manager {
	t.Helper()
	quiet := logging.New(logging.Config{Quiet: true})
	eng, err := engine.New(testUniverse, testUniverse, engine.Options{
		Workers: 2,
		Logger:  quiet,
	})
	require.NoError(t, err)
	if config.Logger == nil {
		config.Logger = quiet
	}
	return NewManager(func() *engine.Engine { return eng }, config)
}

// drain consumes events until the channel closes and returns them all.
func drain(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var all []Event
	deadline := time.After(10 * time.Second)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return all
			}
			all = append(all, e)
		case <-deadline:
			t.Fatal("event channel never closed")
		}
	}
}

func terminalOf(t *testing.T, all []Event) Event {
	t.Helper()
	require.NotEmpty(t, all)
	last := all[len(all)-1]
	require.Contains(t, []EventType{EventCompleted, EventError}, last.Type)
	for _, e := range all[:len(all)-1] {
		assert.Equal(t, EventSuggestions, e.Type, "non-terminal event in the middle of the stream")
	}
	return last
}

// TestSubmit_CompletesWithRanking verifies the happy path: at least one
// suggestion snapshot, then a completed terminal, then close.
func TestSubmit_CompletesWithRanking(t *testing.T) {
	m := testManager(t, Config{})

	rid, events, err := m.Submit(context.Background(), "sess-1", nil, datatypes.Policy{TopK: 3})
	require.NoError(t, err)
	require.NotEmpty(t, rid)

	all := drain(t, events)
	term := terminalOf(t, all)
	assert.Equal(t, EventCompleted, term.Type)
	assert.Equal(t, datatypes.StreamStatusCompleted, term.Status)

	require.GreaterOrEqual(t, len(all), 2, "expected at least one snapshot before the terminal")
	last := all[len(all)-2]
	assert.Equal(t, EventSuggestions, last.Type)
	assert.Len(t, last.Ranked, 3)
	assert.Equal(t, len(testUniverse), last.RemainingAnswers)
}

// TestSubmit_DegenerateEmitsOneSnapshot verifies forced-win requests still
// deliver their result as a snapshot before completing.
func TestSubmit_DegenerateEmitsOneSnapshot(t *testing.T) {
	quiet := logging.New(logging.Config{Quiet: true})
	eng, err := engine.New([]string{"CRANE", "SLATE"}, testUniverse, engine.Options{
		Workers: 2,
		Logger:  quiet,
	})
	require.NoError(t, err)
	m := NewManager(func() *engine.Engine { return eng }, Config{Logger: quiet})

	crane := datatypes.MustWord("CRANE")
	slate := datatypes.MustWord("SLATE")
	history := datatypes.History{{Guess: crane, Feedback: engine.Score(slate, crane)}}

	_, events, err := m.Submit(context.Background(), "sess-1", history, datatypes.Policy{})
	require.NoError(t, err)

	all := drain(t, events)
	term := terminalOf(t, all)
	assert.Equal(t, datatypes.StreamStatusCompleted, term.Status)

	require.Len(t, all, 2)
	snap := all[0]
	assert.Equal(t, EventSuggestions, snap.Type)
	assert.Equal(t, 1, snap.RemainingAnswers)
	assert.Equal(t, 1, snap.Depth)
	require.Len(t, snap.Ranked, 1)
	assert.Equal(t, "SLATE", snap.Ranked[0].Word.String())
}

// TestSubmit_NilEngine verifies requests are refused until word lists load.
func TestSubmit_NilEngine(t *testing.T) {
	quiet := logging.New(logging.Config{Quiet: true})
	m := NewManager(func() *engine.Engine { return nil }, Config{Logger: quiet})

	rid, events, err := m.Submit(context.Background(), "sess-1", nil, datatypes.Policy{})
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Empty(t, rid)
	assert.Nil(t, events)
}

// TestCancel verifies an explicit cancel ends the stream with the cancelled
// status, and that repeated cancels of the same id are harmless.
func TestCancel(t *testing.T) {
	m := testManager(t, Config{})

	rid, events, err := m.Submit(context.Background(), "sess-1", nil, datatypes.Policy{})
	require.NoError(t, err)

	assert.True(t, m.Cancel(rid), "request should still be tracked")
	assert.True(t, m.Cancel(rid), "repeat cancel still finds the request")

	all := drain(t, events)
	term := terminalOf(t, all)
	assert.Equal(t, EventCompleted, term.Type)
	assert.Contains(t,
		[]string{datatypes.StreamStatusCancelled, datatypes.StreamStatusCompleted},
		term.Status, "cancel raced completion, both outcomes are terminal")

	require.Eventually(t, func() bool {
		return m.ActiveRequests() == 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, m.Cancel(rid), "finished request is forgotten")
	assert.False(t, m.Cancel("no-such-request"))
}

// TestSubmit_PreemptsSameSession verifies a second submit on one session
// cancels the first request, waits for its terminal event, and never
// interleaves events. The first channel needs a live reader during the
// handoff, exactly as a transport handler provides.
func TestSubmit_PreemptsSameSession(t *testing.T) {
	m := testManager(t, Config{})

	_, first, err := m.Submit(context.Background(), "sess-1", nil, datatypes.Policy{})
	require.NoError(t, err)

	firstDone := make(chan []Event, 1)
	go func() {
		var all []Event
		for e := range first {
			all = append(all, e)
		}
		firstDone <- all
	}()

	rid2, second, err := m.Submit(context.Background(), "sess-1", nil, datatypes.Policy{TopK: 2})
	require.NoError(t, err)
	require.NotEmpty(t, rid2)

	select {
	case firstAll := <-firstDone:
		firstTerm := terminalOf(t, firstAll)
		assert.Equal(t, EventCompleted, firstTerm.Type)
	case <-time.After(10 * time.Second):
		t.Fatal("first stream never terminated after preemption")
	}

	secondAll := drain(t, second)
	secondTerm := terminalOf(t, secondAll)
	assert.Equal(t, EventCompleted, secondTerm.Type)
	assert.Equal(t, datatypes.StreamStatusCompleted, secondTerm.Status)
}

// TestSubmit_IndependentSessions verifies requests on different sessions do
// not preempt each other.
func TestSubmit_IndependentSessions(t *testing.T) {
	m := testManager(t, Config{})

	_, a, err := m.Submit(context.Background(), "sess-a", nil, datatypes.Policy{})
	require.NoError(t, err)
	_, b, err := m.Submit(context.Background(), "sess-b", nil, datatypes.Policy{})
	require.NoError(t, err)

	termA := terminalOf(t, drain(t, a))
	termB := terminalOf(t, drain(t, b))
	assert.Equal(t, datatypes.StreamStatusCompleted, termA.Status)
	assert.Equal(t, datatypes.StreamStatusCompleted, termB.Status)
}

// TestCancelSession verifies session-level cancellation reaches the
// session's current request.
func TestCancelSession(t *testing.T) {
	m := testManager(t, Config{})

	_, events, err := m.Submit(context.Background(), "sess-1", nil, datatypes.Policy{})
	require.NoError(t, err)

	m.CancelSession("sess-1")
	m.CancelSession("sess-1")
	m.CancelSession("no-such-session")

	term := terminalOf(t, drain(t, events))
	assert.Equal(t, EventCompleted, term.Type)
}

// TestSubmit_Timeout verifies a tiny request timeout surfaces as the
// timeout status rather than an error.
func TestSubmit_Timeout(t *testing.T) {
	m := testManager(t, Config{RequestTimeout: time.Nanosecond})

	_, events, err := m.Submit(context.Background(), "sess-1", nil, datatypes.Policy{})
	require.NoError(t, err)

	term := terminalOf(t, drain(t, events))
	assert.Equal(t, EventCompleted, term.Type)
	assert.Equal(t, datatypes.StreamStatusTimeout, term.Status)
}

// TestActiveRequests verifies tracking drains back to zero after requests
// finish.
func TestActiveRequests(t *testing.T) {
	m := testManager(t, Config{})

	_, events, err := m.Submit(context.Background(), "sess-1", nil, datatypes.Policy{})
	require.NoError(t, err)

	drain(t, events)
	require.Eventually(t, func() bool {
		return m.ActiveRequests() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
