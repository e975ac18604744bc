// Package backend provides the musewave job-orchestration API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for generate/jobs/assets/health
// - internal/models: Data models and database schemas
// - internal/auth: API key authentication
// - internal/planner: Prompt-to-plan compilation
// - internal/renderer: Multi-stage render pipeline orchestration
// - internal/transcoder: FFmpeg-backed encode/probe gateway
// - internal/storage: Local and S3 blob storage backends
// - internal/store: Job queue claim/execute/enqueue semantics and rate counters
// - internal/worker: Job claim polling and pipeline execution
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (auth, rate limiting, tracing, logging)
// - internal/seed: Development and test fixture seeding
// - internal/repository: API key and asset persistence
// - internal/metrics: Prometheus metrics registration
// - internal/telemetry: OpenTelemetry tracer setup
// - internal/cache: Redis client for distributed rate limiting
// - internal/kernel: Application dependency container
// - internal/config: Environment-driven configuration loading
// - internal/logger: Structured logging
// - internal/errors: API error taxonomy

// See the individual package documentation for detailed API reference.
package main
