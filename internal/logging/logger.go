// Package logging is the structured logger shared by the client and the
// remote store. Every call takes the request or operation context so slog
// handlers can pick up values carried on it.
package logging

import "context"

// Logger takes alternating key/value pairs after the message:
//
//	log.Info(ctx, "profile pushed", "user_id", id, "updated_at", ts)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds attributes, typically "module", to every later record.
	With(args ...any) Logger
}
