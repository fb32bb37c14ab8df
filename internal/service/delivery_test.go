package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/queue"
	"basegraph.app/herald/internal/service"
)

var _ = Describe("DeliveryService", func() {
	var (
		ctx      context.Context
		messages *mockMessageStore
		txRunner *mockTxRunner
		svc      service.DeliveryService
		queued   queue.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		messages = &mockMessageStore{}
		txRunner = &mockTxRunner{stores: &mockStoreProvider{
			users: &mockUserStore{getByIDFn: func(_ context.Context, id int64) (*model.User, error) {
				return &model.User{ID: id, RealmID: 1, FullName: "Redmine Bot"}, nil
			}},
			streams: &mockStreamStore{getByIDFn: func(_ context.Context, id int64) (*model.Stream, error) {
				return &model.Stream{ID: id, RealmID: 1, Name: "redmine"}, nil
			}},
			messages: messages,
		}}
		svc = service.NewDeliveryService(txRunner)
		queued = queue.Message{
			MessageID: 1001,
			RealmID:   1,
			SenderID:  7,
			StreamID:  42,
			Topic:     "P #1: S",
			Content:   "body",
			EventType: "opened",
			DateSent:  time.UnixMilli(1700000000000).UTC(),
		}
	})

	It("stores the message inside a transaction", func() {
		var stored *model.Message
		messages.createFn = func(_ context.Context, msg *model.Message) (bool, error) {
			stored = msg
			return true, nil
		}

		created, err := svc.Deliver(ctx, queued)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())
		Expect(txRunner.calls).To(Equal(1))
		Expect(stored.ID).To(Equal(int64(1001)))
		Expect(stored.Sender.FullName).To(Equal("Redmine Bot"))
		Expect(stored.Recipient).To(Equal(model.ChannelRecipient{StreamID: 42, StreamName: "redmine", Topic: "P #1: S"}))
		Expect(stored.DateSent).To(Equal(queued.DateSent))
	})

	It("treats redelivery as a no-op", func() {
		messages.createFn = func(context.Context, *model.Message) (bool, error) { return false, nil }
		created, err := svc.Deliver(ctx, queued)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeFalse())
	})

	It("rejects messages whose stream is in another realm", func() {
		queued.RealmID = 2
		_, err := svc.Deliver(ctx, queued)
		Expect(err).To(MatchError(service.ErrCrossRealm))
	})
})
