// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/pkg/validation"
	"github.com/hintwell/hintwell/services/solver/handlers"
	"github.com/hintwell/hintwell/services/solver/session"
)

// RegisterValidators installs the solver's custom binding validators on
// gin's validator engine. Call once before serving.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("wordprefix", func(fl validator.FieldLevel) bool {
			_, err := validation.SanitizePrefix(fl.Field().String())
			return err == nil
		})
	}
}

// SetupRoutes wires the solver's HTTP surface onto the router.
func SetupRoutes(router *gin.Engine, manager *session.Manager, provider session.EngineProvider, log *logging.Logger) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadyCheck(provider))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/api/v1")
	{
		suggest := v1.Group("/suggest")
		{
			suggest.POST("", handlers.HandleSuggest(manager, log))
			suggest.POST("/stream", handlers.HandleSuggestStream(manager, log))
			suggest.POST("/close", handlers.HandleSuggestClose(manager, log))
		}
		v1.GET("/solve/ws", handlers.HandleSolveWebSocket(manager, provider, log))
	}
}
