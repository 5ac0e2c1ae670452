// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package solver provides the core suggestion service for Hintwell.
//
// This package contains the main Solver type that coordinates all
// components of the service: HTTP routing, the scoring engine, session
// management, word-list loading, and observability infrastructure.
//
// # Usage
//
//	cfg := solver.Config{
//	    Port:        12310,
//	    AnswersPath: "data/answers.txt",
//	    GuessesPath: "data/guesses.txt",
//	}
//	svc, err := solver.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package solver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hintwell/hintwell/pkg/logging"
	"github.com/hintwell/hintwell/services/solver/engine"
	"github.com/hintwell/hintwell/services/solver/observability"
	"github.com/hintwell/hintwell/services/solver/routes"
	"github.com/hintwell/hintwell/services/solver/session"
	"github.com/hintwell/hintwell/services/solver/wordlist"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the solver service.
//
// # Description
//
// Service abstracts the solver lifecycle, enabling testing and alternative
// implementations. Run() blocks and should only be called once per
// instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown signal or
	// fatal error.
	Run() error

	// Router returns the underlying Gin engine for testing. Callers must
	// not modify the routes.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds solver configuration options. Zero values use defaults
// applied by New(); only AnswersPath is required.
type Config struct {
	// Port is the HTTP server port. Default: 12310
	Port int

	// AnswersPath is the answer-universe word list file. Required.
	AnswersPath string

	// GuessesPath is the guess-universe word list file. Empty reuses the
	// answer list.
	GuessesPath string

	// WatchWordlists enables hot reload of the word lists on change.
	WatchWordlists bool

	// Workers sets the scoring pool size. Zero selects the engine default.
	Workers int

	// RequestTimeout bounds each suggestion request. Zero selects the
	// session default of 30s.
	RequestTimeout time.Duration

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "hintwell-otel-collector:4317". "off" disables tracing.
	OTelEndpoint string

	// EnableMetrics initializes the Prometheus collectors. New always sets
	// it to true; the /metrics route is registered either way.
	EnableMetrics bool

	// GinMode sets the Gin framework mode: "debug", "release", "test".
	GinMode string

	// Logger is the process logger. Nil selects logging.Default().
	Logger *logging.Logger
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// The engine lives behind an atomic pointer so word-list reloads can swap
// in a freshly built engine without pausing in-flight requests; running
// requests keep the engine they started with.
type service struct {
	config        Config
	router        *gin.Engine
	engine        atomic.Pointer[engine.Engine]
	manager       *session.Manager
	watcher       *wordlist.Watcher
	log           *logging.Logger
	tracerCleanup func(context.Context)
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a solver Service with the given configuration.
//
// # Description
//
// New initializes all solver components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing
//  3. Initializes Prometheus metrics
//  4. Loads word lists and builds the scoring engine
//  5. Creates the session manager
//  6. Sets up HTTP routes and the optional word-list watcher
//
// # Outputs
//
//   - Service: Ready-to-run solver service
//   - error: Non-nil if word lists are missing or malformed
func New(cfg Config) (Service, error) {
	cfg = applyConfigDefaults(cfg)
	if cfg.AnswersPath == "" {
		return nil, fmt.Errorf("solver: AnswersPath is required")
	}

	s := &service{
		config: cfg,
		log:    cfg.Logger,
	}
	if s.log == nil {
		s.log = logging.Default()
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if cfg.EnableMetrics && observability.DefaultMetrics == nil {
		observability.InitMetrics()
		s.log.Info("initialized Prometheus metrics")
	}

	if err := s.loadEngine(); err != nil {
		s.cleanup()
		return nil, err
	}

	s.manager = session.NewManager(s.engineProvider(), session.Config{
		RequestTimeout: cfg.RequestTimeout,
		Logger:         s.log,
	})

	if cfg.WatchWordlists {
		if err := s.initWatcher(); err != nil {
			s.cleanup()
			return nil, err
		}
	}

	s.initRouter()
	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until SIGINT, SIGTERM, or a fatal
// server error. In-flight requests get a 10 second grace period on
// shutdown.
func (s *service) Run() error {
	defer s.cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.watcher != nil {
		go s.watcher.Run(ctx)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting solver server", "port", s.config.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12310
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "hintwell-otel-collector:4317"
	}
	cfg.EnableMetrics = true
	return cfg
}

// engineProvider exposes the current engine to the session manager and
// handlers.
func (s *service) engineProvider() session.EngineProvider {
	return func() *engine.Engine {
		return s.engine.Load()
	}
}

// loadEngine reads the word lists, builds an engine, and swaps it in.
func (s *service) loadEngine() error {
	answers, guesses, err := wordlist.LoadUniverses(s.config.AnswersPath, s.config.GuessesPath)
	if err != nil {
		return err
	}

	eng, err := engine.New(answers, guesses, engine.Options{
		Workers: s.config.Workers,
		Logger:  s.log,
	})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	s.engine.Store(eng)
	s.log.Info("word lists loaded",
		"answers", eng.AnswerCount(),
		"guesses", eng.GuessCount(),
	)
	return nil
}

// initWatcher wires the word-list watcher to engine reloads. A failed
// reload keeps the previous engine serving.
func (s *service) initWatcher() error {
	watcher, err := wordlist.NewWatcher(
		[]string{s.config.AnswersPath, s.config.GuessesPath},
		func() {
			err := s.loadEngine()
			if observability.DefaultMetrics != nil {
				observability.DefaultMetrics.RecordWordlistReload(err == nil)
			}
			if err != nil {
				s.log.Error("word list reload failed, keeping previous engine", "error", err)
			}
		},
		s.log,
	)
	if err != nil {
		return fmt.Errorf("watch word lists: %w", err)
	}
	s.watcher = watcher
	return nil
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// Uses an insecure gRPC connection, appropriate for internal networks.
// An endpoint of "off" installs no provider and spans become no-ops.
func (s *service) initTracer() (func(context.Context), error) {
	if s.config.OTelEndpoint == "off" {
		return func(context.Context) {}, nil
	}

	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("solver-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			s.log.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initRouter sets up the Gin HTTP router with all routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	routes.RegisterValidators()

	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("solver-service"))

	routes.SetupRoutes(s.router, s.manager, s.engineProvider(), s.log)
}

// cleanup releases all resources held by the service.
func (s *service) cleanup() {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.log.Warn("watcher close error", "error", err)
		}
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
