package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/herald/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Deliverer stores a queued message; satisfied by service.DeliveryService.
type Deliverer interface {
	Deliver(ctx context.Context, msg queue.Message) (created bool, err error)
}

// Claimer hands stale pending entries to the reclaimer.
type Claimer interface {
	ClaimStale(ctx context.Context, consumer string, minIdle time.Duration, count int64) ([]redis.XMessage, error)
	DeadLetterRaw(ctx context.Context, msg redis.XMessage, errMsg string) error
}

// MessageHandler processes one message including its failure policy;
// satisfied by (*Worker).Handle.
type MessageHandler func(ctx context.Context, msg queue.Message)
