// Package client provides a typed HTTP client for the todo REST API.
//
// The client decodes the API's {success, data|error} envelope; failure
// envelopes are returned as [*APIError] values carrying the HTTP status and
// the server's message. It is used by the todoapi CLI commands.
package client
