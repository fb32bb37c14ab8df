package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"basegraph.app/herald/internal/integration"
	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/store"
)

var (
	ErrEventFiltered   = errors.New("event excluded by webhook filters")
	ErrStreamNotFound  = errors.New("stream not found")
	ErrNoDefaultStream = errors.New("bot has no default stream")
)

// WebhookSendParams carries a rendered notification plus the per-webhook
// URL options.
type WebhookSendParams struct {
	Bot           *model.User
	Notification  *integration.Notification
	StreamName    string
	TopicOverride string
	OnlyEvents    []string
	ExcludeEvents []string
}

type WebhookMessageService interface {
	Send(ctx context.Context, params WebhookSendParams) (*model.Message, error)
}

type webhookMessageService struct {
	streams  store.StreamStore
	messages MessageService
}

func NewWebhookMessageService(streams store.StreamStore, messages MessageService) WebhookMessageService {
	return &webhookMessageService{
		streams:  streams,
		messages: messages,
	}
}

func (s *webhookMessageService) Send(ctx context.Context, params WebhookSendParams) (*model.Message, error) {
	if params.Bot == nil || params.Notification == nil {
		return nil, fmt.Errorf("bot and notification are required")
	}

	eventType := string(params.Notification.EventType)
	if !EventAllowed(eventType, params.OnlyEvents, params.ExcludeEvents) {
		return nil, fmt.Errorf("%w: %s", ErrEventFiltered, eventType)
	}

	stream, err := s.resolveStream(ctx, params.Bot, params.StreamName)
	if err != nil {
		return nil, err
	}

	topic := params.Notification.Topic
	if params.TopicOverride != "" {
		topic = params.TopicOverride
	}

	return s.messages.SendChannelMessage(ctx, SendChannelMessageParams{
		Sender:    params.Bot,
		Stream:    stream,
		Topic:     topic,
		Content:   params.Notification.Body,
		EventType: eventType,
	})
}

func (s *webhookMessageService) resolveStream(ctx context.Context, bot *model.User, name string) (*model.Stream, error) {
	if name != "" {
		stream, err := s.streams.GetByName(ctx, bot.RealmID, name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, name)
			}
			return nil, fmt.Errorf("fetching stream %q: %w", name, err)
		}
		return stream, nil
	}

	if bot.DefaultStreamID == nil {
		return nil, ErrNoDefaultStream
	}
	stream, err := s.streams.GetByID(ctx, *bot.DefaultStreamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: default stream %d", ErrStreamNotFound, *bot.DefaultStreamID)
		}
		return nil, fmt.Errorf("fetching default stream: %w", err)
	}
	return stream, nil
}

// EventAllowed applies only_events then exclude_events glob patterns to an
// event tag. An empty only list allows everything.
func EventAllowed(eventType string, only, exclude []string) bool {
	if len(only) > 0 && !matchAny(eventType, only) {
		return false
	}
	return !matchAny(eventType, exclude)
}

func matchAny(eventType string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, eventType); err == nil && ok {
			return true
		}
	}
	return false
}

// ParseEventPatterns reads a filter option given either as a JSON list
// (["opened","issue_*"]) or as a comma separated list.
func ParseEventPatterns(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var list []string
	if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &list) == nil {
		return compact(list)
	}
	return compact(strings.Split(raw, ","))
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
