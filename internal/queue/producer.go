package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// OutboundMessage is a channel message accepted for delivery.
type OutboundMessage struct {
	MessageID int64
	RealmID   int64
	SenderID  int64
	StreamID  int64
	Topic     string
	Content   string
	EventType string
	DateSent  time.Time
	TraceID   *string
	Attempt   int
}

type Producer interface {
	Enqueue(ctx context.Context, msg OutboundMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg OutboundMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"message_id": msg.MessageID,
		"realm_id":   msg.RealmID,
		"sender_id":  msg.SenderID,
		"stream_id":  msg.StreamID,
		"topic":      msg.Topic,
		"content":    msg.Content,
		"date_sent":  msg.DateSent.UnixMilli(),
		"attempt":    attempt,
	}

	if msg.EventType != "" {
		fields["event_type"] = msg.EventType
	}
	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue message: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued message",
		"message_id", msg.MessageID,
		"stream_id", msg.StreamID,
		"event_type", msg.EventType,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
