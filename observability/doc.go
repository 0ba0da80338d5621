// Package observability provides OpenTelemetry tracing for lyricsync.
//
// InitTracer stands up an OTLP HTTP exporter and registers the global
// tracer provider; pipeline stages create spans through StartSpan.
package observability
