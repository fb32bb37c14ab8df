package mapper

import (
	"context"
	"fmt"

	"basegraph.app/herald/internal/payload"
)

type GitLabEventMapper struct{}

func NewGitLabEventMapper() *GitLabEventMapper {
	return &GitLabEventMapper{}
}

func (m *GitLabEventMapper) Map(ctx context.Context, body payload.Value, headers map[string]string) (EventType, error) {
	headerEventType := headers["X-Gitlab-Event"]
	objectKind, _ := body.Get("object_kind").AsString()

	switch m.hookKind(headerEventType, objectKind) {
	case "issue":
		action, _ := body.Get("object_attributes.action").AsString()
		if eventType := issueActionEvent(action); eventType != "" {
			return eventType, nil
		}
		return "", fmt.Errorf("%w: gitlab issue action %q", ErrUnsupportedEvent, action)
	case "note":
		noteableType, _ := body.Get("object_attributes.noteable_type").AsString()
		if noteableType == "Issue" {
			return EventNote, nil
		}
		return "", fmt.Errorf("%w: gitlab note on %q", ErrUnsupportedEvent, noteableType)
	}

	return "", fmt.Errorf("%w: gitlab event header=%q object_kind=%q", ErrUnsupportedEvent, headerEventType, objectKind)
}

func (m *GitLabEventMapper) hookKind(headerEventType, objectKind string) string {
	switch headerEventType {
	case "Issue Hook", "Confidential Issue Hook":
		return "issue"
	case "Note Hook", "Confidential Note Hook":
		return "note"
	}

	switch objectKind {
	case "issue", "note":
		return objectKind
	}

	return ""
}

func issueActionEvent(action string) EventType {
	switch action {
	case "open":
		return EventIssueOpened
	case "close":
		return EventIssueClosed
	case "reopen":
		return EventIssueReopened
	case "update":
		return EventIssueUpdated
	}
	return ""
}
