// Package provider defines the base interface and registry shared by
// lyricsync's pluggable model backends.
//
// # Backends
//
//   - transcription/whisper: faster-whisper speech-to-text sidecar
//   - separation/demucs: demucs vocal-isolation sidecar
//
// Each backend package exposes a Factory that builds a configured provider
// from a generic config map, so backends stay selectable at runtime.
package provider
