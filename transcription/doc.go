// Package transcription defines the provider interface, transcript types,
// and chunk assembly for lyricsync's speech-to-text pipeline.
//
// It follows the provider pattern with a pluggable registry for
// runtime-selectable backends.
//
// # Backends
//
//   - transcription/whisper: faster-whisper speech-to-text sidecar
//
// # Usage
//
//	mgr := transcription.NewManager(factory, log)
//	model, err := mgr.Acquire(ctx)
//	resp, err := model.Transcribe(ctx, transcription.Request{AudioPath: path})
//	result := transcription.Assemble(resp.Segments)
package transcription
