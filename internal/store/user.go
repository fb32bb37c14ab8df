package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"basegraph.app/herald/core/db"
	"basegraph.app/herald/internal/model"
)

type userStore struct {
	q db.Querier
}

func newUserStore(q db.Querier) UserStore {
	return &userStore{q: q}
}

const userColumns = `id, realm_id, full_name, email, api_key, is_bot, bot_owner_id, default_stream_id, is_active, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.RealmID, &u.FullName, &u.Email, &u.APIKey, &u.IsBot,
		&u.BotOwnerID, &u.DefaultStreamID, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *userStore) GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	return scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE api_key = $1 AND is_active`, apiKey))
}

func (s *userStore) GetByEmail(ctx context.Context, realmID int64, email string) (*model.User, error) {
	return scanUser(s.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE realm_id = $1 AND lower(email) = lower($2)`, realmID, email))
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	return s.q.QueryRow(ctx, `
INSERT INTO users (id, realm_id, full_name, email, api_key, is_bot, bot_owner_id, default_stream_id, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at`,
		user.ID, user.RealmID, user.FullName, user.Email, user.APIKey, user.IsBot,
		user.BotOwnerID, user.DefaultStreamID, user.IsActive,
	).Scan(&user.CreatedAt)
}
