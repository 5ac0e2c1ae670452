// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hintwell/hintwell/services/solver/session"
)

// HealthCheck reports process liveness. Always 200 while the process runs.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadyCheck returns the readiness handler. The service is ready once word
// lists are loaded and an engine is available; until then it answers 503 so
// load balancers hold traffic back.
func ReadyCheck(provider session.EngineProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		eng := provider()
		if eng == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"answerCount": eng.AnswerCount(),
			"guessCount":  eng.GuessCount(),
		})
	}
}
