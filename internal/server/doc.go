// Package server provides the HTTP layer for the todo API.
//
// This package is internal to todoapi and handles all HTTP concerns:
//
//   - REST API: JSON CRUD endpoints under "/api/todos" using a uniform
//     {success, data|error} envelope
//   - Change streams: Server-Sent Events at "/api/events" and WebSocket
//     at "/api/ws"
//   - Dashboard: the embedded HTML page at "/"
//   - Middleware: panic recovery, request logging, CORS and per-client
//     rate limiting
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
