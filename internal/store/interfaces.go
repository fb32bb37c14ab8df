package store

import (
	"context"
	"errors"

	"basegraph.app/herald/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// RealmStore defines the contract for realm data access
type RealmStore interface {
	GetByID(ctx context.Context, id int64) (*model.Realm, error)
	Create(ctx context.Context, realm *model.Realm) error
	SetModerationRequestStream(ctx context.Context, realmID int64, streamID *int64) error
}

// UserStore defines the contract for user and bot data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
	GetByEmail(ctx context.Context, realmID int64, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// StreamStore defines the contract for stream data access
type StreamStore interface {
	GetByID(ctx context.Context, id int64) (*model.Stream, error)
	GetByName(ctx context.Context, realmID int64, name string) (*model.Stream, error)
	Create(ctx context.Context, stream *model.Stream) error
}

// MessageStore defines the contract for delivered message data access
type MessageStore interface {
	// Create inserts msg; created is false when a message with the same ID exists.
	Create(ctx context.Context, msg *model.Message) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*model.Message, error)
}
