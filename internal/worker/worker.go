package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/herald/common/logger"
	"basegraph.app/herald/internal/queue"
)

type Config struct {
	MaxAttempts int
	// ErrorBackoff is the pause after a failed read.
	ErrorBackoff time.Duration
}

type Worker struct {
	consumer  Consumer
	deliverer Deliverer
	cfg       Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, deliverer Deliverer, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:  consumer,
		deliverer: deliverer,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "herald.worker",
	})
	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.ProcessBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-time.After(w.cfg.ErrorBackoff):
				case <-w.stopCh:
					slog.InfoContext(ctx, "worker stopping")
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

// ProcessBatch reads one batch and handles every message in it.
func (w *Worker) ProcessBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		w.Handle(ctx, msg)
	}

	return nil
}

// Handle processes one message and, when it fails or panics, requeues it or
// sends it to the DLQ once MaxAttempts is reached.
func (w *Worker) Handle(ctx context.Context, msg queue.Message) {
	if err := w.processMessageSafe(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "message processing failed",
			"error", err,
			"stream_message_id", msg.ID,
			"message_id", msg.MessageID)
		w.handleFailedMessage(ctx, msg, err)
	}
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.MessageID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage stores one message and acknowledges it. Failures are
// returned unhandled; use Handle for the retry policy.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RealmID:   logger.Ptr(msg.RealmID),
		UserID:    logger.Ptr(msg.SenderID),
		MessageID: logger.Ptr(msg.MessageID),
		StreamID:  logger.Ptr(msg.ID),
		EventType: logger.Ptr(msg.EventType),
	})

	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.deliver_message")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("herald.message_id", msg.MessageID),
		attribute.Int("herald.attempt", msg.Attempt),
	)
	ctx = span.Context()

	slog.InfoContext(ctx, "processing message", "attempt", msg.Attempt)

	created, err := w.deliverer.Deliver(ctx, msg)
	if err != nil {
		span.RecordError(err)
		// Not acked: the caller requeues or dead-letters it.
		return fmt.Errorf("delivering message: %w", err)
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Redelivery after a lost ack is harmless, the store is idempotent.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}

	slog.InfoContext(ctx, "message delivered", "created", created)
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.MessageID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.MessageID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
