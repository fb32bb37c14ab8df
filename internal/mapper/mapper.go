package mapper

import (
	"context"
	"errors"

	"basegraph.app/herald/internal/payload"
)

// EventType is the event tag an integration assigns to an incoming webhook.
// It is matched against only_events / exclude_events filters and stored on
// the resulting message.
type EventType string

const (
	// Redmine
	EventOpened  EventType = "opened"
	EventUpdated EventType = "updated"

	// GitLab
	EventIssueOpened   EventType = "issue_opened"
	EventIssueClosed   EventType = "issue_closed"
	EventIssueReopened EventType = "issue_reopened"
	EventIssueUpdated  EventType = "issue_updated"
	EventNote          EventType = "note"
)

// ErrUnsupportedEvent is returned for events an integration does not handle.
// Webhook handlers acknowledge these without sending anything.
var ErrUnsupportedEvent = errors.New("unsupported event")

type EventMapper interface {
	Map(ctx context.Context, body payload.Value, headers map[string]string) (EventType, error)
}
