package service_test

import (
	"context"

	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/queue"
	"basegraph.app/herald/internal/service"
	"basegraph.app/herald/internal/store"
)

type mockProducer struct {
	enqueueFn func(ctx context.Context, msg queue.OutboundMessage) error
	enqueued  []queue.OutboundMessage
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.OutboundMessage) error {
	m.enqueued = append(m.enqueued, msg)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}

type mockRealmStore struct {
	getByIDFn func(ctx context.Context, id int64) (*model.Realm, error)
}

func (m *mockRealmStore) GetByID(ctx context.Context, id int64) (*model.Realm, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockRealmStore) Create(ctx context.Context, realm *model.Realm) error {
	return nil
}

func (m *mockRealmStore) SetModerationRequestStream(ctx context.Context, realmID int64, streamID *int64) error {
	return nil
}

type mockUserStore struct {
	getByIDFn     func(ctx context.Context, id int64) (*model.User, error)
	getByAPIKeyFn func(ctx context.Context, apiKey string) (*model.User, error)
	getByEmailFn  func(ctx context.Context, realmID int64, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	if m.getByAPIKeyFn != nil {
		return m.getByAPIKeyFn(ctx, apiKey)
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, realmID int64, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, realmID, email)
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

type mockStreamStore struct {
	getByIDFn   func(ctx context.Context, id int64) (*model.Stream, error)
	getByNameFn func(ctx context.Context, realmID int64, name string) (*model.Stream, error)
}

func (m *mockStreamStore) GetByID(ctx context.Context, id int64) (*model.Stream, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStreamStore) GetByName(ctx context.Context, realmID int64, name string) (*model.Stream, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, realmID, name)
	}
	return nil, store.ErrNotFound
}

func (m *mockStreamStore) Create(ctx context.Context, stream *model.Stream) error {
	return nil
}

type mockMessageStore struct {
	createFn  func(ctx context.Context, msg *model.Message) (bool, error)
	getByIDFn func(ctx context.Context, id int64) (*model.Message, error)
}

func (m *mockMessageStore) Create(ctx context.Context, msg *model.Message) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, msg)
	}
	return true, nil
}

func (m *mockMessageStore) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

type mockMessageService struct {
	sendFn func(ctx context.Context, params service.SendChannelMessageParams) (*model.Message, error)
	sent   []service.SendChannelMessageParams
}

func (m *mockMessageService) SendChannelMessage(ctx context.Context, params service.SendChannelMessageParams) (*model.Message, error) {
	m.sent = append(m.sent, params)
	if m.sendFn != nil {
		return m.sendFn(ctx, params)
	}
	return &model.Message{ID: 1}, nil
}

type mockStoreProvider struct {
	realms   store.RealmStore
	users    store.UserStore
	streams  store.StreamStore
	messages store.MessageStore
}

func (m *mockStoreProvider) Realms() store.RealmStore     { return m.realms }
func (m *mockStoreProvider) Users() store.UserStore       { return m.users }
func (m *mockStoreProvider) Streams() store.StreamStore   { return m.streams }
func (m *mockStoreProvider) Messages() store.MessageStore { return m.messages }

type mockTxRunner struct {
	stores *mockStoreProvider
	calls  int
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	m.calls++
	return fn(m.stores)
}
