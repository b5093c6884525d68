// Package client talks to the agentdeck backend API.
//
// # Overview
//
// Client is the transport contract used by the session layer: Register,
// Login and Me map onto POST /api/auth/register, POST /api/auth/login and
// GET /api/auth/me. Do sends an arbitrary prepared request through the same
// HTTP client so callers can attach credentials themselves.
//
// # Error Handling
//
//   - *AuthRejectedError: the backend answered register/login with a
//     non-success status. Message carries the backend's "error" text or a
//     fixed default.
//   - ErrUnauthorized: the identity probe was refused.
//   - ErrUnavailable: the backend could not be reached.
//
// No call is retried. Timeouts come from the http.Client configured in
// NewHTTPClient.
package client
