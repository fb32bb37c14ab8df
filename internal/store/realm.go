package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"basegraph.app/herald/core/db"
	"basegraph.app/herald/internal/model"
)

type realmStore struct {
	q db.Querier
}

func newRealmStore(q db.Querier) RealmStore {
	return &realmStore{q: q}
}

const getRealmSQL = `
SELECT r.id, r.name, r.url, r.created_at,
       s.id, s.realm_id, s.name, s.topics_policy, s.created_at
FROM realms r
LEFT JOIN streams s ON s.id = r.moderation_request_stream_id
WHERE r.id = $1`

func (s *realmStore) GetByID(ctx context.Context, id int64) (*model.Realm, error) {
	var (
		realm    model.Realm
		streamID *int64
		stream   model.Stream
		realmID  *int64
		name     *string
		policy   *string
		created  *time.Time
	)
	err := s.q.QueryRow(ctx, getRealmSQL, id).Scan(
		&realm.ID, &realm.Name, &realm.URL, &realm.CreatedAt,
		&streamID, &realmID, &name, &policy, &created,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if streamID != nil {
		stream.ID = *streamID
		stream.RealmID = deref(realmID)
		stream.Name = deref(name)
		stream.TopicsPolicy = model.TopicsPolicy(deref(policy))
		if created != nil {
			stream.CreatedAt = *created
		}
		realm.ModerationRequestStream = &stream
	}
	return &realm, nil
}

func (s *realmStore) Create(ctx context.Context, realm *model.Realm) error {
	var moderationStreamID *int64
	if realm.ModerationRequestStream != nil {
		moderationStreamID = &realm.ModerationRequestStream.ID
	}
	return s.q.QueryRow(ctx, `
INSERT INTO realms (id, name, url, moderation_request_stream_id)
VALUES ($1, $2, $3, $4)
RETURNING created_at`,
		realm.ID, realm.Name, realm.URL, moderationStreamID,
	).Scan(&realm.CreatedAt)
}

func (s *realmStore) SetModerationRequestStream(ctx context.Context, realmID int64, streamID *int64) error {
	tag, err := s.q.Exec(ctx, `UPDATE realms SET moderation_request_stream_id = $2 WHERE id = $1`, realmID, streamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
