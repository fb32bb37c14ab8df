package worker_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/herald/internal/queue"
	"basegraph.app/herald/internal/worker"
)

type mockConsumer struct {
	mu       sync.Mutex
	batches  [][]queue.Message
	readErr  error
	acked    []queue.Message
	requeued []queue.Message
	dlq      []queue.Message
}

func (m *mockConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	if len(m.batches) == 0 {
		return nil, nil
	}
	batch := m.batches[0]
	m.batches = m.batches[1:]
	return batch, nil
}

func (m *mockConsumer) Ack(ctx context.Context, msg queue.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, msg)
	return nil
}

func (m *mockConsumer) Requeue(ctx context.Context, msg queue.Message, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requeued = append(m.requeued, msg)
	return nil
}

func (m *mockConsumer) SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dlq = append(m.dlq, msg)
	return nil
}

type mockDeliverer struct {
	deliverFn func(ctx context.Context, msg queue.Message) (bool, error)
}

func (m *mockDeliverer) Deliver(ctx context.Context, msg queue.Message) (bool, error) {
	if m.deliverFn != nil {
		return m.deliverFn(ctx, msg)
	}
	return true, nil
}

var _ = Describe("Worker", func() {
	var (
		ctx       context.Context
		consumer  *mockConsumer
		deliverer *mockDeliverer
		w         *worker.Worker
		msg       queue.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &mockConsumer{}
		deliverer = &mockDeliverer{}
		w = worker.New(consumer, deliverer, worker.Config{MaxAttempts: 3, ErrorBackoff: time.Millisecond})
		msg = queue.Message{ID: "1-0", MessageID: 1001, RealmID: 1, SenderID: 7, StreamID: 42, Content: "x", Attempt: 1}
	})

	It("acks delivered messages", func() {
		consumer.batches = [][]queue.Message{{msg}}
		Expect(w.ProcessBatch(ctx)).To(Succeed())
		Expect(consumer.acked).To(HaveLen(1))
		Expect(consumer.requeued).To(BeEmpty())
	})

	It("acks duplicates too", func() {
		deliverer.deliverFn = func(context.Context, queue.Message) (bool, error) { return false, nil }
		consumer.batches = [][]queue.Message{{msg}}
		Expect(w.ProcessBatch(ctx)).To(Succeed())
		Expect(consumer.acked).To(HaveLen(1))
	})

	It("requeues failed deliveries", func() {
		deliverer.deliverFn = func(context.Context, queue.Message) (bool, error) { return false, errors.New("db down") }
		consumer.batches = [][]queue.Message{{msg}}
		Expect(w.ProcessBatch(ctx)).To(Succeed())
		Expect(consumer.acked).To(BeEmpty())
		Expect(consumer.requeued).To(HaveLen(1))
	})

	It("dead-letters after the last attempt", func() {
		deliverer.deliverFn = func(context.Context, queue.Message) (bool, error) { return false, errors.New("db down") }
		msg.Attempt = 3
		consumer.batches = [][]queue.Message{{msg}}
		Expect(w.ProcessBatch(ctx)).To(Succeed())
		Expect(consumer.dlq).To(HaveLen(1))
		Expect(consumer.requeued).To(BeEmpty())
	})

	It("recovers from panics and requeues", func() {
		deliverer.deliverFn = func(context.Context, queue.Message) (bool, error) { panic("boom") }
		consumer.batches = [][]queue.Message{{msg}}
		Expect(w.ProcessBatch(ctx)).To(Succeed())
		Expect(consumer.requeued).To(HaveLen(1))
	})

	It("reports read errors", func() {
		consumer.readErr = errors.New("redis down")
		Expect(w.ProcessBatch(ctx)).To(MatchError(ContainSubstring("redis down")))
	})

	It("stops when asked", func() {
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
		w.Stop()
		Eventually(done).Should(Receive(BeNil()))
	})
})
