// Package logger provides structured logging for lyricsync using zerolog.
//
// It supports JSON and console output formats, level configuration, and
// component-scoped child loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.WithComponent("pipeline")
//	log.Info("transcription complete", logger.Fields("chunks", n))
package logger
