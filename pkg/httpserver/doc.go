// Package httpserver runs an http.Server with environment-driven timeouts
// and graceful shutdown on SIGINT/SIGTERM or context cancellation. In-flight
// requests are drained within the configured shutdown timeout.
package httpserver
