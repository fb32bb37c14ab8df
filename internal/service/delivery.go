package service

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/queue"
)

type DeliveryService interface {
	// Deliver stores a queued message. Redelivery of an already stored
	// message is a no-op and reports created=false.
	Deliver(ctx context.Context, msg queue.Message) (created bool, err error)
}

type deliveryService struct {
	txRunner TxRunner
}

func NewDeliveryService(txRunner TxRunner) DeliveryService {
	return &deliveryService{txRunner: txRunner}
}

func (s *deliveryService) Deliver(ctx context.Context, msg queue.Message) (bool, error) {
	var created bool
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		sender, err := sp.Users().GetByID(ctx, msg.SenderID)
		if err != nil {
			return fmt.Errorf("fetching sender %d: %w", msg.SenderID, err)
		}
		stream, err := sp.Streams().GetByID(ctx, msg.StreamID)
		if err != nil {
			return fmt.Errorf("fetching stream %d: %w", msg.StreamID, err)
		}
		if stream.RealmID != msg.RealmID || sender.RealmID != msg.RealmID {
			return ErrCrossRealm
		}

		created, err = sp.Messages().Create(ctx, &model.Message{
			ID:      msg.MessageID,
			RealmID: msg.RealmID,
			Sender:  *sender,
			Recipient: model.ChannelRecipient{
				StreamID:   stream.ID,
				StreamName: stream.Name,
				Topic:      msg.Topic,
			},
			Content:   msg.Content,
			EventType: msg.EventType,
			DateSent:  msg.DateSent,
		})
		if err != nil {
			return fmt.Errorf("storing message: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if !created {
		slog.InfoContext(ctx, "duplicate message delivery skipped", "message_id", msg.MessageID)
	}
	return created, nil
}
