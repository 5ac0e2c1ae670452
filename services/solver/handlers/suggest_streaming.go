// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP, SSE, and WebSocket surface of the
// solver service.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver/datatypes"
	"github.com/hintwell/hintwell/services/solver/engine"
	"github.com/hintwell/hintwell/services/solver/observability"
	"github.com/hintwell/hintwell/services/solver/session"
)

// keepAliveInterval paces SSE comment pings between suggestion frames.
const keepAliveInterval = 15 * time.Second

// SessionHeader carries the client's session identity. Requests sharing a
// session id preempt each other; requests without one never collide.
const SessionHeader = "X-Session-Id"

// HandleSuggestStream returns the handler for POST /api/v1/suggest/stream.
//
// # Description
//
// Validates the request, starts a suggestion request on the session
// manager, and streams SSE frames until the request reaches its terminal
// state:
//
//	stream-created   { streamId }
//	suggestions      { streamId, suggestions, topSuggestion, depth, remainingAnswers }  (repeated)
//	stream-completed { streamId, status }    status: completed | cancelled | timeout
//
// Failures inside the request surface as a stream-error frame instead of
// stream-completed. Keep-alive comments are sent every 15 seconds while
// scoring runs. A client disconnect cancels the request.
//
// # Inputs
//
//   - manager: Session manager executing requests.
//   - log: Request-scoped logger.
//
// # Limitations
//
//   - Validation failures are rejected with HTTP 400 before any SSE frame.
func HandleSuggestStream(manager *session.Manager, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.SuggestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		rid, events, err := manager.Submit(c.Request.Context(), sessionID, req.History, req.Policy())
		if err != nil {
			if errors.Is(err, session.ErrNotInitialized) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "word lists not loaded"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start request"})
			return
		}

		metrics := observability.DefaultMetrics
		if metrics != nil {
			metrics.StreamStarted(observability.EndpointSuggestStream)
			defer metrics.StreamEnded(observability.EndpointSuggestStream)
		}

		SetSSEHeaders(c.Writer)
		writer, err := NewSSEWriter(c.Writer)
		if err != nil {
			manager.Cancel(rid)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
			return
		}

		if err := writer.WriteStreamCreated(rid); err != nil {
			manager.Cancel(rid)
			return
		}

		log.Debug("suggest stream opened",
			"stream_id", rid,
			"session_id", sessionID,
			"history_len", len(req.History),
		)

		start := time.Now()
		status := streamEvents(c, writer, manager, rid, events, metrics, log)

		if metrics != nil {
			metrics.RecordRequest(observability.EndpointSuggestStream, status)
			metrics.RecordRequestDuration(observability.EndpointSuggestStream,
				time.Since(start).Seconds(), status)
		}
	}
}

// streamEvents pumps session events onto the SSE writer until the event
// channel closes, returning the terminal status for metrics.
func streamEvents(
	c *gin.Context,
	writer SSEWriter,
	manager *session.Manager,
	rid string,
	events <-chan session.Event,
	metrics *observability.SolverMetrics,
	log *logging.Logger,
) string {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()
	start := time.Now()
	firstRanking := true
	status := "error"

	for {
		select {
		case <-clientGone:
			manager.Cancel(rid)
			if metrics != nil {
				metrics.RecordClientDisconnect(observability.EndpointSuggestStream)
			}
			log.Debug("client disconnected mid-stream", "stream_id", rid)
			// Drain so the request goroutine can finish its terminal send.
			for range events {
			}
			return datatypes.StreamStatusCancelled

		case <-ticker.C:
			if err := writer.WriteKeepAlive(); err != nil {
				manager.Cancel(rid)
				for range events {
				}
				return datatypes.StreamStatusCancelled
			}
			if metrics != nil {
				metrics.RecordKeepAlive(observability.EndpointSuggestStream)
			}

		case event, ok := <-events:
			if !ok {
				return status
			}
			switch event.Type {
			case session.EventSuggestions:
				if firstRanking {
					firstRanking = false
					if metrics != nil {
						metrics.RecordTimeToFirstRanking(
							observability.EndpointSuggestStream, time.Since(start).Seconds())
						metrics.RecordRemainingAnswers(event.RemainingAnswers)
					}
				}
				if err := writer.WriteSuggestions(suggestionsEvent(rid, event)); err != nil {
					manager.Cancel(rid)
					for range events {
					}
					return datatypes.StreamStatusCancelled
				}

			case session.EventCompleted:
				status = event.Status
				_ = writer.WriteCompleted(rid, event.Status)

			case session.EventError:
				status = "error"
				log.Error("suggest stream failed", "stream_id", rid, "error", event.Err)
				_ = writer.WriteStreamError(rid, "suggestion request failed")
			}
		}
	}
}

// =============================================================================
// Wire conversion
// =============================================================================

// suggestionItems converts an engine ranking into wire items, mapping the
// infinite forced-win score onto the finite sentinel.
func suggestionItems(ranked []engine.ScoredGuess) []datatypes.SuggestionItem {
	items := make([]datatypes.SuggestionItem, len(ranked))
	for i, sg := range ranked {
		items[i] = datatypes.SuggestionItem{
			Word:  sg.Word.String(),
			Score: datatypes.EncodeScore(sg.Score),
		}
	}
	return items
}

// suggestionsEvent builds the wire frame for one ranking snapshot.
func suggestionsEvent(rid string, event session.Event) datatypes.SuggestionsEvent {
	items := suggestionItems(event.Ranked)
	var top *datatypes.SuggestionItem
	if len(items) > 0 {
		top = &items[0]
	}
	return datatypes.SuggestionsEvent{
		StreamID:         rid,
		Suggestions:      items,
		TopSuggestion:    top,
		Depth:            event.Depth,
		RemainingAnswers: event.RemainingAnswers,
	}
}
