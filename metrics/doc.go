// Package metrics exports Prometheus metrics for resolution, evaluation and
// reloads, and serves them over HTTP.
package metrics
