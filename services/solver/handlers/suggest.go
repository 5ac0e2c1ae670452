// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver/datatypes"
	"github.com/hintwell/hintwell/services/solver/observability"
	"github.com/hintwell/hintwell/services/solver/session"
)

// HandleSuggest returns the handler for POST /api/v1/suggest.
//
// # Description
//
// Runs one suggestion request to completion and returns the final ranking
// as a single JSON document. Internally this rides the same session manager
// as the streaming endpoint; progressive snapshots are consumed and
// discarded, only the last one is returned.
//
// # Outputs
//
//   - 200 with SuggestResponse on success.
//   - 400 on validation failure.
//   - 499-style cancellation and timeout map onto 408.
//   - 503 when word lists are not loaded yet.
func HandleSuggest(manager *session.Manager, log *logging.Logger) gin.HandlerFunc {
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

		start := time.Now()
		rid, events, err := manager.Submit(c.Request.Context(), sessionID, req.History, req.Policy())
		if err != nil {
			if errors.Is(err, session.ErrNotInitialized) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "word lists not loaded"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start request"})
			return
		}

		var last session.Event
		status := "error"
		var reqErr error
		for event := range events {
			switch event.Type {
			case session.EventSuggestions:
				last = event
			case session.EventCompleted:
				status = event.Status
			case session.EventError:
				reqErr = event.Err
			}
		}

		metrics := observability.DefaultMetrics
		if metrics != nil {
			metrics.RecordRequest(observability.EndpointSuggest, status)
			metrics.RecordRequestDuration(observability.EndpointSuggest,
				time.Since(start).Seconds(), status)
			if last.Type == session.EventSuggestions {
				metrics.RecordRemainingAnswers(last.RemainingAnswers)
			}
		}

		switch {
		case reqErr != nil:
			log.Error("suggest request failed", "request_id", rid, "error", reqErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "suggestion request failed"})
		case status == datatypes.StreamStatusTimeout:
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "suggestion request timed out"})
		case status == datatypes.StreamStatusCancelled:
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "suggestion request cancelled"})
		default:
			c.JSON(http.StatusOK, datatypes.SuggestResponse{
				RequestID:        rid,
				Suggestions:      suggestionItems(last.Ranked),
				RemainingAnswers: last.RemainingAnswers,
			})
		}
	}
}

// HandleSuggestClose returns the handler for POST /api/v1/suggest/close.
//
// Cancels the identified stream. Unknown or already-finished streams get a
// 404; closing a live stream is acknowledged immediately while the stream
// itself winds down with a cancelled terminal frame.
func HandleSuggestClose(manager *session.Manager, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CloseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !manager.Cancel(req.StreamID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stream not found"})
			return
		}
		log.Debug("close requested", "stream_id", req.StreamID)
		c.JSON(http.StatusOK, gin.H{"status": "closed", "streamId": req.StreamID})
	}
}
