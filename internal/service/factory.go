package service

import (
	"basegraph.app/herald/core/config"
	"basegraph.app/herald/internal/queue"
	"basegraph.app/herald/internal/store"
)

type Services struct {
	stores    *store.Stores
	txRunner  TxRunner
	producer  queue.Producer
	messaging config.MessagingConfig
}

func NewServices(stores *store.Stores, txRunner TxRunner, producer queue.Producer, messaging config.MessagingConfig) *Services {
	return &Services{
		stores:    stores,
		txRunner:  txRunner,
		producer:  producer,
		messaging: messaging,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Users())
}

func (s *Services) Messages() MessageService {
	return NewMessageService(s.producer, s.messaging)
}

func (s *Services) WebhookMessages() WebhookMessageService {
	return NewWebhookMessageService(s.stores.Streams(), s.Messages())
}

func (s *Services) MessageReports() MessageReportService {
	return NewMessageReportService(
		s.stores.Realms(),
		s.stores.Users(),
		s.stores.Messages(),
		s.Messages(),
		s.messaging,
	)
}

func (s *Services) Delivery() DeliveryService {
	return NewDeliveryService(s.txRunner)
}
