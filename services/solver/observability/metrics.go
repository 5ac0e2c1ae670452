// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides metrics and instrumentation for the solver.
//
// # Description
//
// This package implements Prometheus metrics for monitoring suggestion
// requests. Metrics include:
//   - Request counters (by endpoint, status)
//   - Latency histograms (time to first ranking, total request duration)
//   - Active stream gauges
//   - Surviving-answer distribution
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "hintwell"

// Subsystem for solver metrics
const solverSubsystem = "solver"

// SolverMetrics holds all Prometheus metrics for suggestion operations.
//
// # Description
//
// Provides counters, histograms, and gauges for monitoring suggestion
// latency and load. Initialize once at startup via InitMetrics().
//
// # Thread Safety
//
// All operations are thread-safe.
type SolverMetrics struct {
	// RequestsTotal counts suggestion requests by endpoint and outcome.
	// Labels: endpoint (suggest, suggest_stream, suggest_ws),
	// status (completed, cancelled, timeout, error)
	RequestsTotal *prometheus.CounterVec

	// TimeToFirstRankingSeconds measures latency to the first suggestions
	// frame. Labels: endpoint
	TimeToFirstRankingSeconds *prometheus.HistogramVec

	// RequestDurationSeconds measures total request duration.
	// Labels: endpoint, status
	RequestDurationSeconds *prometheus.HistogramVec

	// ActiveStreams tracks currently active streaming connections.
	// Labels: endpoint
	ActiveStreams *prometheus.GaugeVec

	// RemainingAnswers observes the surviving-answer count per request.
	RemainingAnswers prometheus.Histogram

	// KeepAlivesTotal counts keepalive pings sent. Labels: endpoint
	KeepAlivesTotal *prometheus.CounterVec

	// ClientDisconnectsTotal counts client disconnections mid-stream.
	// Labels: endpoint
	ClientDisconnectsTotal *prometheus.CounterVec

	// WordlistReloadsTotal counts word-list reloads by outcome.
	// Labels: status (success, error)
	WordlistReloadsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of SolverMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *SolverMetrics

// InitMetrics creates and registers all Prometheus metrics. Call once at
// application startup; a second call panics on duplicate registration.
func InitMetrics() *SolverMetrics {
	DefaultMetrics = &SolverMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "requests_total",
				Help:      "Total suggestion requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		TimeToFirstRankingSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "time_to_first_ranking_seconds",
				Help:      "Time from request to first suggestions frame in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"endpoint"},
		),

		RequestDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Total suggestion request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
			},
			[]string{"endpoint", "status"},
		),

		ActiveStreams: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "active_streams",
				Help:      "Number of currently active streaming connections",
			},
			[]string{"endpoint"},
		),

		RemainingAnswers: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "remaining_answers",
				Help:      "Surviving-answer count observed per request",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
			},
		),

		KeepAlivesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "keepalives_total",
				Help:      "Total keepalive pings sent",
			},
			[]string{"endpoint"},
		),

		ClientDisconnectsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "client_disconnects_total",
				Help:      "Total client disconnections during streaming",
			},
			[]string{"endpoint"},
		),

		WordlistReloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "wordlist_reloads_total",
				Help:      "Total word-list reloads by outcome",
			},
			[]string{"status"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Endpoint Names
// =============================================================================

// Endpoint labels a request's transport for metrics.
type Endpoint string

const (
	// EndpointSuggest is the single-shot JSON endpoint.
	EndpointSuggest Endpoint = "suggest"

	// EndpointSuggestStream is the SSE streaming endpoint.
	EndpointSuggestStream Endpoint = "suggest_stream"

	// EndpointSuggestWS is the WebSocket solve endpoint.
	EndpointSuggestWS Endpoint = "suggest_ws"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a finished request with its terminal status
// (completed, cancelled, timeout, or error).
func (m *SolverMetrics) RecordRequest(endpoint Endpoint, status string) {
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
}

// StreamStarted increments the active streams gauge.
func (m *SolverMetrics) StreamStarted(endpoint Endpoint) {
	m.ActiveStreams.WithLabelValues(string(endpoint)).Inc()
}

// StreamEnded decrements the active streams gauge.
func (m *SolverMetrics) StreamEnded(endpoint Endpoint) {
	m.ActiveStreams.WithLabelValues(string(endpoint)).Dec()
}

// RecordTimeToFirstRanking records latency to the first suggestions frame.
func (m *SolverMetrics) RecordTimeToFirstRanking(endpoint Endpoint, seconds float64) {
	m.TimeToFirstRankingSeconds.WithLabelValues(string(endpoint)).Observe(seconds)
}

// RecordRequestDuration records total request duration with its status.
func (m *SolverMetrics) RecordRequestDuration(endpoint Endpoint, seconds float64, status string) {
	m.RequestDurationSeconds.WithLabelValues(string(endpoint), status).Observe(seconds)
}

// RecordRemainingAnswers observes a request's surviving-answer count.
func (m *SolverMetrics) RecordRemainingAnswers(count int) {
	m.RemainingAnswers.Observe(float64(count))
}

// RecordKeepAlive increments the keepalive counter.
func (m *SolverMetrics) RecordKeepAlive(endpoint Endpoint) {
	m.KeepAlivesTotal.WithLabelValues(string(endpoint)).Inc()
}

// RecordClientDisconnect increments the client disconnect counter.
func (m *SolverMetrics) RecordClientDisconnect(endpoint Endpoint) {
	m.ClientDisconnectsTotal.WithLabelValues(string(endpoint)).Inc()
}

// RecordWordlistReload records a word-list reload outcome.
func (m *SolverMetrics) RecordWordlistReload(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.WordlistReloadsTotal.WithLabelValues(status).Inc()
}
