package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"basegraph.app/herald/common/id"
	"basegraph.app/herald/common/logger"
	"basegraph.app/herald/core/config"
	"basegraph.app/herald/internal/markdown"
	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/queue"
)

const (
	topicTruncationMarker   = "..."
	messageTruncationMarker = "\n[message truncated]"
)

var (
	ErrEmptyMessage  = errors.New("message content is empty")
	ErrTopicRequired = errors.New("topic is required in this stream")
	ErrCrossRealm    = errors.New("sender and stream belong to different realms")
)

type SendChannelMessageParams struct {
	Sender    *model.User
	Stream    *model.Stream
	Topic     string
	Content   string
	EventType string
}

type MessageService interface {
	// SendChannelMessage bounds the topic and content, applies the stream's
	// topics policy and queues the message for delivery.
	SendChannelMessage(ctx context.Context, params SendChannelMessageParams) (*model.Message, error)
}

type messageService struct {
	producer queue.Producer
	cfg      config.MessagingConfig
	now      func() time.Time
}

func NewMessageService(producer queue.Producer, cfg config.MessagingConfig) MessageService {
	return &messageService{
		producer: producer,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *messageService) SendChannelMessage(ctx context.Context, params SendChannelMessageParams) (*model.Message, error) {
	if params.Sender == nil || params.Stream == nil {
		return nil, fmt.Errorf("sender and stream are required")
	}
	if params.Sender.RealmID != params.Stream.RealmID {
		return nil, ErrCrossRealm
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, ErrEmptyMessage
	}

	topic := markdown.Truncate(markdown.NormalizeTopic(params.Topic), s.cfg.MaxTopicLength, topicTruncationMarker)
	switch params.Stream.TopicsPolicy {
	case model.TopicsPolicyEmptyTopicOnly:
		topic = ""
	case model.TopicsPolicyDisableEmptyTopic:
		if topic == "" {
			return nil, ErrTopicRequired
		}
	}

	msg := &model.Message{
		ID:      id.New(),
		RealmID: params.Sender.RealmID,
		Sender:  *params.Sender,
		Recipient: model.ChannelRecipient{
			StreamID:   params.Stream.ID,
			StreamName: params.Stream.Name,
			Topic:      topic,
		},
		Content:   markdown.Truncate(params.Content, s.cfg.MaxMessageLength, messageTruncationMarker),
		EventType: params.EventType,
		DateSent:  s.now().UTC(),
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID: logger.Ptr(msg.ID),
		UserID:    logger.Ptr(params.Sender.ID),
	})

	var traceID *string
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = logger.Ptr(sc.TraceID().String())
	}

	if err := s.producer.Enqueue(ctx, queue.OutboundMessage{
		MessageID: msg.ID,
		RealmID:   msg.RealmID,
		SenderID:  params.Sender.ID,
		StreamID:  params.Stream.ID,
		Topic:     topic,
		Content:   msg.Content,
		EventType: params.EventType,
		DateSent:  msg.DateSent,
		TraceID:   traceID,
		Attempt:   1,
	}); err != nil {
		return nil, fmt.Errorf("enqueueing message: %w", err)
	}

	slog.DebugContext(ctx, "channel message accepted",
		"stream", params.Stream.Name,
		"topic", topic)

	return msg, nil
}
