// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver/datatypes"
	"github.com/hintwell/hintwell/services/solver/observability"
	"github.com/hintwell/hintwell/services/solver/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

// wsConn serializes writes to one WebSocket connection. gorilla/websocket
// allows at most one concurrent writer; the solve pump and the read loop
// both send frames.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) sendJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

// HandleSolveWebSocket returns the handler for GET /api/v1/solve/ws.
//
// # Description
//
// Upgrades the connection and speaks the solve message protocol. Client to
// server:
//
//	INIT                      handshake, no payload
//	SOLVE   { history, strictGuesses, typedPrefix, topK }
//	CANCEL  { requestId }
//
// Server to client:
//
//	INIT_COMPLETE   { answerCount, guessCount }
//	SOLVE_PROGRESS  { requestId, suggestions, depth, remainingAnswers }  (repeated)
//	SOLVE_COMPLETE  { requestId, suggestions, depth, remainingAnswers }
//	ERROR           { requestId?, error }
//
// The whole connection is one session: a SOLVE received while another is
// running preempts it, and the preempted request ends without a
// SOLVE_COMPLETE. CANCEL is idempotent.
func HandleSolveWebSocket(manager *session.Manager, provider session.EngineProvider, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		ws := &wsConn{conn: conn}
		sessionID := uuid.NewString()
		log.Info("solve websocket connected", "session_id", sessionID)

		metrics := observability.DefaultMetrics
		if metrics != nil {
			metrics.StreamStarted(observability.EndpointSuggestWS)
			defer metrics.StreamEnded(observability.EndpointSuggestWS)
		}

		var pumps sync.WaitGroup
		defer pumps.Wait()

		for {
			var req datatypes.WSRequest
			if err := conn.ReadJSON(&req); err != nil {
				log.Info("solve websocket disconnected", "session_id", sessionID, "error", err.Error())
				manager.CancelSession(sessionID)
				return
			}

			switch req.Type {
			case datatypes.WSTypeInit:
				eng := provider()
				if eng == nil {
					if err := ws.sendJSON(datatypes.WSResponse{
						Type:  datatypes.WSTypeError,
						Error: "word lists not loaded",
					}); err != nil {
						return
					}
					continue
				}
				if err := ws.sendJSON(datatypes.WSResponse{
					Type:        datatypes.WSTypeInitComplete,
					AnswerCount: eng.AnswerCount(),
					GuessCount:  eng.GuessCount(),
				}); err != nil {
					return
				}

			case datatypes.WSTypeSolve:
				policy := datatypes.Policy{
					StrictGuesses: req.StrictGuesses,
					TypedPrefix:   req.TypedPrefix,
					TopK:          req.TopK,
				}
				rid, events, err := manager.Submit(c.Request.Context(), sessionID, req.History, policy)
				if err != nil {
					if sendErr := ws.sendJSON(datatypes.WSResponse{
						Type:  datatypes.WSTypeError,
						Error: "failed to start request",
					}); sendErr != nil {
						return
					}
					continue
				}
				pumps.Add(1)
				go func() {
					defer pumps.Done()
					pumpSolveEvents(ws, rid, events, metrics, log)
				}()

			case datatypes.WSTypeCancel:
				manager.Cancel(req.RequestID)

			default:
				if err := ws.sendJSON(datatypes.WSResponse{
					Type:  datatypes.WSTypeError,
					Error: "unknown message type",
				}); err != nil {
					return
				}
			}
		}
	}
}

// pumpSolveEvents relays one request's events onto the socket. Preempted
// and cancelled requests end silently; only a normally completed request
// gets a SOLVE_COMPLETE.
func pumpSolveEvents(ws *wsConn, rid string, events <-chan session.Event, metrics *observability.SolverMetrics, log *logging.Logger) {
	start := time.Now()
	var last session.Event
	status := "error"

	for event := range events {
		switch event.Type {
		case session.EventSuggestions:
			last = event
			if err := ws.sendJSON(datatypes.WSResponse{
				Type:             datatypes.WSTypeSolveProgress,
				RequestID:        rid,
				Suggestions:      suggestionItems(event.Ranked),
				RemainingAnswers: event.RemainingAnswers,
				Depth:            event.Depth,
			}); err != nil {
				return
			}

		case session.EventCompleted:
			status = event.Status
			if event.Status == datatypes.StreamStatusCompleted {
				if err := ws.sendJSON(datatypes.WSResponse{
					Type:             datatypes.WSTypeSolveComplete,
					RequestID:        rid,
					Suggestions:      suggestionItems(last.Ranked),
					RemainingAnswers: last.RemainingAnswers,
					Depth:            last.Depth,
				}); err != nil {
					return
				}
			}

		case session.EventError:
			log.Error("solve request failed", "request_id", rid, "error", event.Err)
			if err := ws.sendJSON(datatypes.WSResponse{
				Type:      datatypes.WSTypeError,
				RequestID: rid,
				Error:     "suggestion request failed",
			}); err != nil {
				return
			}
		}
	}

	if metrics != nil {
		metrics.RecordRequest(observability.EndpointSuggestWS, status)
		metrics.RecordRequestDuration(observability.EndpointSuggestWS,
			time.Since(start).Seconds(), status)
	}
}
