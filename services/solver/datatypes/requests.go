// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "math"

// =============================================================================
// HTTP request bodies
// =============================================================================

// SuggestRequest is the body of POST /api/v1/suggest and
// POST /api/v1/suggest/stream.
//
// History may be empty (opening move). StrictGuesses and TypedPrefix map
// onto Policy; a TopK outside 1..50 fails binding validation. MaxDepth is
// accepted for client compatibility and otherwise ignored; reported depth is
// always the number of merged shards.
type SuggestRequest struct {
	History       []GuessEntry `json:"history" binding:"omitempty,dive"`
	StrictGuesses bool         `json:"strictGuesses"`
	TypedPrefix   string       `json:"typedPrefix" binding:"omitempty,wordprefix"`
	TopK          int          `json:"topK" binding:"omitempty,min=1,max=50"`
	MaxDepth      int          `json:"maxDepth" binding:"omitempty,min=1"`
}

// Policy converts the request fields into an engine policy.
func (r SuggestRequest) Policy() Policy {
	return Policy{
		StrictGuesses: r.StrictGuesses,
		TypedPrefix:   r.TypedPrefix,
		TopK:          r.TopK,
	}
}

// CloseRequest is the body of POST /api/v1/suggest/close.
type CloseRequest struct {
	StreamID string `json:"streamId" binding:"required,uuid4"`
}

// =============================================================================
// Wire events
// =============================================================================

// SSE event names emitted on the suggest stream.
const (
	EventStreamCreated   = "stream-created"
	EventSuggestions     = "suggestions"
	EventStreamCompleted = "stream-completed"
	EventStreamError     = "stream-error"
)

// Terminal statuses carried by the stream-completed frame.
const (
	StreamStatusCompleted = "completed"
	StreamStatusCancelled = "cancelled"
	StreamStatusTimeout   = "timeout"
)

// SuggestionItem is a single ranked suggestion on the wire.
type SuggestionItem struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// StreamCreatedEvent is the first frame on every suggest stream.
type StreamCreatedEvent struct {
	StreamID string `json:"streamId"`
}

// SuggestionsEvent carries a ranked snapshot at some depth of the search.
// Depth counts the shards merged so far; the final event of a stream has
// the highest depth.
type SuggestionsEvent struct {
	StreamID         string           `json:"streamId"`
	Suggestions      []SuggestionItem `json:"suggestions"`
	TopSuggestion    *SuggestionItem  `json:"topSuggestion"`
	Depth            int              `json:"depth"`
	RemainingAnswers int              `json:"remainingAnswers"`
}

// StreamCompletedEvent is the sentinel frame terminating a stream.
type StreamCompletedEvent struct {
	StreamID string `json:"streamId"`
	Status   string `json:"status"`
}

// StreamErrorEvent reports a per-request failure on the stream.
type StreamErrorEvent struct {
	StreamID string `json:"streamId"`
	Error    string `json:"error"`
}

// SuggestResponse is the single-shot JSON response of POST /api/v1/suggest.
type SuggestResponse struct {
	RequestID        string           `json:"requestId"`
	Suggestions      []SuggestionItem `json:"suggestions"`
	RemainingAnswers int              `json:"remainingAnswers"`
}

// =============================================================================
// WebSocket messages
// =============================================================================

// WebSocket message types, client to server.
const (
	WSTypeInit   = "INIT"
	WSTypeSolve  = "SOLVE"
	WSTypeCancel = "CANCEL"
)

// WebSocket message types, server to client.
const (
	WSTypeInitComplete  = "INIT_COMPLETE"
	WSTypeSolveProgress = "SOLVE_PROGRESS"
	WSTypeSolveComplete = "SOLVE_COMPLETE"
	WSTypeError         = "ERROR"
)

// WSRequest is any client-to-server frame on the solve socket. Fields
// beyond Type are populated per message type.
type WSRequest struct {
	Type          string       `json:"type"`
	RequestID     string       `json:"requestId,omitempty"`
	History       []GuessEntry `json:"history,omitempty"`
	StrictGuesses bool         `json:"strictGuesses,omitempty"`
	TypedPrefix   string       `json:"typedPrefix,omitempty"`
	TopK          int          `json:"topK,omitempty"`
}

// WSResponse is any server-to-client frame on the solve socket.
type WSResponse struct {
	Type             string           `json:"type"`
	RequestID        string           `json:"requestId,omitempty"`
	Suggestions      []SuggestionItem `json:"suggestions,omitempty"`
	RemainingAnswers int              `json:"remainingAnswers,omitempty"`
	Depth            int              `json:"depth,omitempty"`
	AnswerCount      int              `json:"answerCount,omitempty"`
	GuessCount       int              `json:"guessCount,omitempty"`
	Error            string           `json:"error,omitempty"`
}

// =============================================================================
// Score encoding
// =============================================================================

// SentinelScore is the on-wire stand-in for an infinite score. JSON has no
// infinity, so a forced win travels as the largest finite float64. Receivers
// treat any value at or above it as the sentinel.
const SentinelScore = math.MaxFloat64

// EncodeScore maps an engine score onto its wire value.
func EncodeScore(score float64) float64 {
	if math.IsInf(score, 1) {
		return SentinelScore
	}
	return score
}

// IsSentinelScore reports whether a wire score denotes a forced win.
func IsSentinelScore(score float64) bool {
	return score >= SentinelScore
}
