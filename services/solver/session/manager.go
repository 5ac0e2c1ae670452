// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package session manages the lifecycle of suggestion requests.
//
// # Description
//
// A Manager tracks one in-flight request per client session. Submitting a
// new request preempts the session's previous one: the old request is
// cancelled, its terminal event is awaited, and only then does the new
// request begin emitting. Each request is identified by a UUID v4 request
// id and delivers events on its own channel:
//
//   - zero or more progressive suggestion snapshots
//   - exactly one terminal event (completed, cancelled, timeout, or error)
//
// # Thread Safety
//
// Manager is safe for concurrent use. Per-request goroutines own their
// event channels; the manager only tracks cancellation handles under a
// mutex.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver/datatypes"
	"github.com/hintwell/hintwell/services/solver/engine"
)

// DefaultRequestTimeout bounds a single suggestion request end to end.
const DefaultRequestTimeout = 30 * time.Second

// ErrNotInitialized reports that no engine is available yet, typically
// because word lists have not finished loading.
var ErrNotInitialized = errors.New("session: engine not initialized")

// =============================================================================
// Events
// =============================================================================

// EventType discriminates the entries on a request's event channel.
type EventType int

const (
	// EventSuggestions carries a progressive or final ranking snapshot.
	EventSuggestions EventType = iota

	// EventCompleted terminates the stream. Status tells how it ended.
	EventCompleted

	// EventError terminates the stream with a failure the client should
	// surface.
	EventError
)

// Event is one entry on a request's event channel. Terminal events
// (EventCompleted, EventError) are always the last entry before close.
type Event struct {
	Type EventType

	// Ranked, RemainingAnswers, and Depth are set on EventSuggestions.
	Ranked           []engine.ScoredGuess
	RemainingAnswers int
	Depth            int

	// Status is set on EventCompleted: StreamStatusCompleted,
	// StreamStatusCancelled, or StreamStatusTimeout.
	Status string

	// Err is set on EventError.
	Err error
}

// =============================================================================
// Manager
// =============================================================================

// EngineProvider returns the current engine, or nil when none is loaded.
// Hot word-list reloads swap the engine behind this indirection.
type EngineProvider func() *engine.Engine

// Config tunes a Manager. The zero value selects defaults.
type Config struct {
	// RequestTimeout bounds each request. Zero selects
	// DefaultRequestTimeout.
	RequestTimeout time.Duration

	// Logger receives request lifecycle events. Nil selects the process
	// default logger.
	Logger *logging.Logger
}

// Manager runs suggestion requests with per-session preemption.
type Manager struct {
	provider EngineProvider
	timeout  time.Duration
	log      *logging.Logger

	mu       sync.Mutex
	requests map[string]*request // by request id
	sessions map[string]*request // latest request per session
}

// request is the manager-side handle for one in-flight suggestion.
type request struct {
	id        string
	sessionID string
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewManager builds a Manager over the given engine provider.
func NewManager(provider EngineProvider, config Config) *Manager {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	log := config.Logger
	if log == nil {
		log = logging.Default()
	}
	return &Manager{
		provider: provider,
		timeout:  timeout,
		log:      log,
		requests: make(map[string]*request),
		sessions: make(map[string]*request),
	}
}

// Submit starts a suggestion request for sessionID and returns its request
// id and event channel. Any request already running for the session is
// cancelled first, and its terminal event is awaited before the new request
// emits anything, so a client never interleaves events from two requests.
//
// The returned channel delivers progressive EventSuggestions entries
// followed by exactly one terminal event, then closes. Progressive entries
// are lossy: if the receiver lags, older snapshots are dropped in favor of
// newer ones. The terminal event is never dropped.
func (m *Manager) Submit(ctx context.Context, sessionID string, history datatypes.History, policy datatypes.Policy) (string, <-chan Event, error) {
	eng := m.provider()
	if eng == nil {
		return "", nil, ErrNotInitialized
	}

	rid := uuid.NewString()
	reqCtx, cancel := context.WithTimeout(ctx, m.timeout)
	req := &request{
		id:        rid,
		sessionID: sessionID,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	prev := m.sessions[sessionID]
	m.requests[rid] = req
	m.sessions[sessionID] = req
	m.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	events := make(chan Event, 1)
	go m.run(reqCtx, eng, req, history, policy, events)

	m.log.Debug("request submitted",
		"request_id", rid,
		"session_id", sessionID,
		"history_len", len(history),
		"preempted", prev != nil,
	)
	return rid, events, nil
}

// Cancel cancels the request with the given id and reports whether the
// request was still in flight. Unknown or already-finished ids are a no-op
// returning false, so repeated cancels are safe.
func (m *Manager) Cancel(rid string) bool {
	m.mu.Lock()
	req := m.requests[rid]
	m.mu.Unlock()

	if req == nil {
		return false
	}
	req.cancel()
	return true
}

// CancelSession cancels whatever request is currently running for the
// session, if any.
func (m *Manager) CancelSession(sessionID string) {
	m.mu.Lock()
	req := m.sessions[sessionID]
	m.mu.Unlock()

	if req != nil {
		req.cancel()
	}
}

// ActiveRequests returns the number of requests currently in flight.
func (m *Manager) ActiveRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// =============================================================================
// Request execution
// =============================================================================

// run drives one suggestion request to its terminal event. It owns the
// events channel and closes it on return.
func (m *Manager) run(ctx context.Context, eng *engine.Engine, req *request, history datatypes.History, policy datatypes.Policy, events chan Event) {
	defer func() {
		close(events)
		close(req.done)
		m.release(req)
	}()
	defer req.cancel()

	start := time.Now()
	emitted := false
	emit := func(ranked []engine.ScoredGuess, remaining, depth int) {
		emitted = true
		m.sendProgressive(events, Event{
			Type:             EventSuggestions,
			Ranked:           ranked,
			RemainingAnswers: remaining,
			Depth:            depth,
		})
	}

	result, err := eng.SuggestStream(ctx, history, policy, emit)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		// The degenerate paths (forced win, contradiction, no eligible
		// candidate) resolve before the scoring pool runs and never call
		// emit, so surface their result here.
		if !emitted && result != nil {
			m.sendProgressive(events, Event{
				Type:             EventSuggestions,
				Ranked:           result.Ranked,
				RemainingAnswers: result.RemainingAnswers,
				Depth:            1,
			})
		}
		m.sendTerminal(events, Event{Type: EventCompleted, Status: datatypes.StreamStatusCompleted})
		m.log.Debug("request completed",
			"request_id", req.id, "session_id", req.sessionID, "elapsed", elapsed)

	case errors.Is(err, context.DeadlineExceeded):
		m.sendTerminal(events, Event{Type: EventCompleted, Status: datatypes.StreamStatusTimeout})
		m.log.Warn("request timed out",
			"request_id", req.id, "session_id", req.sessionID, "elapsed", elapsed)

	case errors.Is(err, context.Canceled):
		m.sendTerminal(events, Event{Type: EventCompleted, Status: datatypes.StreamStatusCancelled})
		m.log.Debug("request cancelled",
			"request_id", req.id, "session_id", req.sessionID, "elapsed", elapsed)

	default:
		m.sendTerminal(events, Event{Type: EventError, Err: err})
		m.log.Error("request failed",
			"request_id", req.id, "session_id", req.sessionID, "error", err)
	}
}

// sendProgressive delivers a snapshot without ever blocking: if the buffer
// already holds an unread snapshot, the stale one is replaced.
func (m *Manager) sendProgressive(events chan Event, e Event) {
	for {
		select {
		case events <- e:
			return
		default:
		}
		select {
		case <-events:
		default:
		}
	}
}

// sendTerminal blocks until the terminal event is accepted. The channel
// buffer may still hold the last progressive snapshot, which the receiver
// drains first.
func (m *Manager) sendTerminal(events chan Event, e Event) {
	events <- e
}

// release drops the request from the tracking maps. The session slot is
// cleared only if this request still owns it; a preempting request may
// already have replaced it.
func (m *Manager) release(req *request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.requests, req.id)
	if m.sessions[req.sessionID] == req {
		delete(m.sessions, req.sessionID)
	}
}
