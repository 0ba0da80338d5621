// Package errors provides unified error handling for lyricsync.
// It implements structured error types with machine-readable codes,
// HTTP status mapping, retryable detection, and cause chains.
package errors
