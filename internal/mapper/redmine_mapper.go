package mapper

import (
	"context"
	"fmt"

	"basegraph.app/herald/internal/payload"
)

type RedmineEventMapper struct{}

func NewRedmineEventMapper() *RedmineEventMapper {
	return &RedmineEventMapper{}
}

// Map reads the action from the "payload" envelope Redmine wraps every event in.
func (m *RedmineEventMapper) Map(ctx context.Context, body payload.Value, headers map[string]string) (EventType, error) {
	action, err := body.Get("payload").Get("action").AsString()
	if err != nil {
		return "", fmt.Errorf("%w: redmine action: %v", ErrUnsupportedEvent, err)
	}

	switch EventType(action) {
	case EventOpened, EventUpdated:
		return EventType(action), nil
	}

	return "", fmt.Errorf("%w: redmine action %q", ErrUnsupportedEvent, action)
}
