// Package client talks to the SkillSwap REST backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface consumed by the session and skills services.
//  2. HTTPClient, its net/http implementation. Login uses the OAuth2
//     password grant (form-encoded username/password) from
//     golang.org/x/oauth2; every other call exchanges JSON.
//  3. InitDatabase and RunMigrations, which open the local SQLite database
//     holding the persisted token and apply embedded goose migrations.
//
// # Cross-cutting rules
//
// All requests go through authTransport, which:
//   - attaches "Authorization: Bearer <token>" when a token is persisted,
//   - deletes the persisted token on any 401 answer,
//   - stamps an X-Request-ID header,
//   - waits on an optional client-side rate limiter.
//
// # Error Handling
//
// Non-2xx answers become *APIError carrying the server's "detail". They
// unwrap to ErrUnauthorized, ErrForbidden, ErrNotFound or ErrUnavailable so
// callers can match with errors.Is. Transport failures wrap ErrUnavailable.
// Message renders any of these for the user.
package client
