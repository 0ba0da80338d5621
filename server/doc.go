// Package server provides the HTTP server hosting the lyricsync API.
//
// The server is backed by Gin mounted on a root ServeMux and wrapped with
// h2c, so plaintext HTTP/2 clients (large streaming uploads, internal
// callers) share the same port as regular HTTP/1.1 traffic. The standard
// middleware stack (recovery, request IDs, CORS, body-size limit, request
// logging) is applied via ApplyMiddleware, and RegisterDefaultEndpoints adds
// the operational /health, /info, and /metrics routes.
package server
