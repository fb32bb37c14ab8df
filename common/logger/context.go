package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers enrich the context once (realm, bot, integration) and every log line
// emitted further down the call chain carries them.
type LogFields struct {
	RealmID     *int64  // Realm (organization) ID
	UserID      *int64  // Acting user or bot ID
	MessageID   *int64  // Message ID once assigned
	StreamID    *string // Redis stream message ID
	EventType   *string // Event tag (e.g., "opened", "issue_closed")
	Integration string  // Webhook integration name (e.g., "redmine")
	Component   string  // Component name (e.g., "herald.webhook.redmine")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RealmID != nil {
		result.RealmID = next.RealmID
	}
	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.StreamID != nil {
		result.StreamID = next.StreamID
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.Integration != "" {
		result.Integration = next.Integration
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{RealmID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
// Used for logging untrusted payload fragments.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
