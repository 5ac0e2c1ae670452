// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/hintwell/hintwell/services/solver/datatypes"
)

// =============================================================================
// Interface Definition
// =============================================================================

// SSEWriter defines the contract for writing Server-Sent Events to HTTP
// responses.
//
// # Description
//
// SSEWriter abstracts SSE event serialization and writing, enabling
// testability and separation from HTTP response mechanics. Implementations
// handle the SSE wire format (event: name\ndata: json\n\n) internally and
// flush after every write.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. The default writer
// serializes frames under a mutex.
//
// # Assumptions
//
//   - Caller has set Content-Type: text/event-stream before writing
//   - Caller has disabled proxy buffering (X-Accel-Buffering: no)
type SSEWriter interface {
	// WriteEvent serializes payload to JSON and writes it under the given
	// event name, flushing immediately.
	WriteEvent(name string, payload any) error

	// WriteStreamCreated writes the opening stream-created frame.
	WriteStreamCreated(streamID string) error

	// WriteSuggestions writes a ranked snapshot frame.
	WriteSuggestions(event datatypes.SuggestionsEvent) error

	// WriteCompleted writes the terminal stream-completed frame with the
	// given status. No frames follow it.
	WriteCompleted(streamID, status string) error

	// WriteStreamError writes a stream-error frame. The message must
	// already be sanitized for client display.
	WriteStreamError(streamID, errMsg string) error

	// WriteKeepAlive sends an SSE comment (": ping") to keep the TCP
	// connection alive through load balancers during long scoring passes.
	// Comments are ignored by SSE clients.
	WriteKeepAlive() error
}

// =============================================================================
// Struct Definition
// =============================================================================

// sseWriter implements SSEWriter over an http.ResponseWriter. Each frame is
// written as
//
//	event: {name}
//	data: {json}
//
// followed by a blank line and an immediate flush.
type sseWriter struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
}

// NewSSEWriter creates an SSEWriter for the given ResponseWriter. The caller
// must set SSE headers via SetSSEHeaders before writing. Fails when the
// ResponseWriter does not support http.Flusher.
func NewSSEWriter(w http.ResponseWriter) (SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("ResponseWriter does not support http.Flusher")
	}
	return &sseWriter{writer: w, flusher: flusher}, nil
}

// =============================================================================
// Methods
// =============================================================================

func (w *sseWriter) WriteEvent(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", name, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.writer, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return fmt.Errorf("write %s event: %w", name, err)
	}
	w.flusher.Flush()
	return nil
}

func (w *sseWriter) WriteStreamCreated(streamID string) error {
	return w.WriteEvent(datatypes.EventStreamCreated, datatypes.StreamCreatedEvent{
		StreamID: streamID,
	})
}

func (w *sseWriter) WriteSuggestions(event datatypes.SuggestionsEvent) error {
	return w.WriteEvent(datatypes.EventSuggestions, event)
}

func (w *sseWriter) WriteCompleted(streamID, status string) error {
	return w.WriteEvent(datatypes.EventStreamCompleted, datatypes.StreamCompletedEvent{
		StreamID: streamID,
		Status:   status,
	})
}

func (w *sseWriter) WriteStreamError(streamID, errMsg string) error {
	return w.WriteEvent(datatypes.EventStreamError, datatypes.StreamErrorEvent{
		StreamID: streamID,
		Error:    errMsg,
	})
}

func (w *sseWriter) WriteKeepAlive() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.writer, ": ping\n\n"); err != nil {
		return fmt.Errorf("write keepalive: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// SetSSEHeaders configures HTTP response headers for SSE streaming. Must be
// called before writing any response body.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")
}

// =============================================================================
// Compile-time Interface Check
// =============================================================================

var _ SSEWriter = (*sseWriter)(nil)
