package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"basegraph.app/herald/core/db"
	"basegraph.app/herald/internal/model"
)

type streamStore struct {
	q db.Querier
}

func newStreamStore(q db.Querier) StreamStore {
	return &streamStore{q: q}
}

func scanStream(row pgx.Row) (*model.Stream, error) {
	var (
		st     model.Stream
		policy string
	)
	if err := row.Scan(&st.ID, &st.RealmID, &st.Name, &policy, &st.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	st.TopicsPolicy = model.TopicsPolicy(policy)
	return &st, nil
}

func (s *streamStore) GetByID(ctx context.Context, id int64) (*model.Stream, error) {
	return scanStream(s.q.QueryRow(ctx,
		`SELECT id, realm_id, name, topics_policy, created_at FROM streams WHERE id = $1`, id))
}

func (s *streamStore) GetByName(ctx context.Context, realmID int64, name string) (*model.Stream, error) {
	return scanStream(s.q.QueryRow(ctx,
		`SELECT id, realm_id, name, topics_policy, created_at FROM streams WHERE realm_id = $1 AND lower(name) = lower($2)`,
		realmID, name))
}

func (s *streamStore) Create(ctx context.Context, stream *model.Stream) error {
	if stream.TopicsPolicy == "" {
		stream.TopicsPolicy = model.TopicsPolicyInherit
	}
	return s.q.QueryRow(ctx, `
INSERT INTO streams (id, realm_id, name, topics_policy)
VALUES ($1, $2, $3, $4)
RETURNING created_at`,
		stream.ID, stream.RealmID, stream.Name, string(stream.TopicsPolicy),
	).Scan(&stream.CreatedAt)
}
