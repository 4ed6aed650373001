// Package logging is the structured logger shared by the client packages.
// SlogLogger backs it with log/slog; Discard is used where no output is wanted.
package logging

import "context"

// Logger takes a message plus alternating key and value args:
//
//	log.Info(ctx, "login succeeded", "user", username)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that prepends args to every record.
	With(args ...any) Logger
}
