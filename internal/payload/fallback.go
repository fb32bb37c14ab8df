package payload

import (
	"context"
	"log/slog"
)

// Or runs extract and returns its value, or logs the failure at level and
// returns fallback. Accessor method values fit extract directly:
//
//	subject := payload.Or(ctx, "issue subject", slog.LevelWarn, "No subject", body.Get("issue.subject").AsString)
func Or[T any](ctx context.Context, field string, level slog.Level, fallback T, extract func() (T, error)) T {
	value, err := extract()
	if err == nil {
		return value
	}
	slog.Log(ctx, level, "payload field unavailable, using fallback",
		"field", field,
		"error", err,
		"fallback", fallback,
	)
	return fallback
}
