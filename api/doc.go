// Package api registers the lyric-sync HTTP routes.
//
// POST /ai/stt accepts a multipart audio upload and responds with the
// word-timestamped transcript produced by the processing pipeline.
// POST /ai/translate is reserved and currently returns 501.
package api
