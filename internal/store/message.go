package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"basegraph.app/herald/core/db"
	"basegraph.app/herald/internal/model"
)

type messageStore struct {
	q db.Querier
}

func newMessageStore(q db.Querier) MessageStore {
	return &messageStore{q: q}
}

// Create is idempotent on the message ID, so redelivered queue entries are
// stored once. Call it inside a transaction when the message has participants.
func (s *messageStore) Create(ctx context.Context, msg *model.Message) (bool, error) {
	var (
		streamID     *int64
		participants []model.User
	)
	switch r := msg.Recipient.(type) {
	case model.ChannelRecipient:
		streamID = &r.StreamID
	case model.DirectRecipient:
		participants = []model.User{r.User}
	case model.GroupRecipient:
		participants = r.Participants
	default:
		return false, fmt.Errorf("message %d has no recipient", msg.ID)
	}

	tag, err := s.q.Exec(ctx, `
INSERT INTO messages (id, realm_id, sender_id, recipient_type, stream_id, topic, content, event_type, date_sent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING`,
		msg.ID, msg.RealmID, msg.Sender.ID, string(msg.Recipient.RecipientType()), streamID,
		msg.Topic(), msg.Content, msg.EventType, msg.DateSent,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for position, user := range participants {
		if _, err := s.q.Exec(ctx, `
INSERT INTO message_participants (message_id, user_id, position)
VALUES ($1, $2, $3)`, msg.ID, user.ID, position); err != nil {
			return false, fmt.Errorf("adding participant %d: %w", user.ID, err)
		}
	}

	return true, nil
}

const getMessageSQL = `
SELECT m.id, m.realm_id, m.recipient_type, m.stream_id, COALESCE(s.name, ''), m.topic,
       m.content, m.event_type, m.date_sent,
       u.id, u.realm_id, u.full_name, u.email, u.is_bot, u.is_active
FROM messages m
JOIN users u ON u.id = m.sender_id
LEFT JOIN streams s ON s.id = m.stream_id
WHERE m.id = $1`

func (s *messageStore) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	var (
		msg           model.Message
		recipientType string
		streamID      *int64
		streamName    string
		topic         string
	)
	err := s.q.QueryRow(ctx, getMessageSQL, id).Scan(
		&msg.ID, &msg.RealmID, &recipientType, &streamID, &streamName, &topic,
		&msg.Content, &msg.EventType, &msg.DateSent,
		&msg.Sender.ID, &msg.Sender.RealmID, &msg.Sender.FullName, &msg.Sender.Email,
		&msg.Sender.IsBot, &msg.Sender.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch model.RecipientType(recipientType) {
	case model.RecipientTypeChannel:
		msg.Recipient = model.ChannelRecipient{
			StreamID:   deref(streamID),
			StreamName: streamName,
			Topic:      topic,
		}
	case model.RecipientTypeDirect, model.RecipientTypeGroup:
		participants, err := s.participants(ctx, id)
		if err != nil {
			return nil, err
		}
		if recipientType == string(model.RecipientTypeDirect) && len(participants) == 1 {
			msg.Recipient = model.DirectRecipient{User: participants[0]}
		} else {
			msg.Recipient = model.GroupRecipient{Participants: participants}
		}
	default:
		return nil, fmt.Errorf("message %d has unknown recipient type %q", id, recipientType)
	}

	return &msg, nil
}

func (s *messageStore) participants(ctx context.Context, messageID int64) ([]model.User, error) {
	rows, err := s.q.Query(ctx, `
SELECT u.id, u.realm_id, u.full_name, u.email, u.is_bot, u.is_active
FROM message_participants p
JOIN users u ON u.id = p.user_id
WHERE p.message_id = $1
ORDER BY p.position`, messageID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.RealmID, &u.FullName, &u.Email, &u.IsBot, &u.IsActive); err != nil {
			return nil, fmt.Errorf("scanning participant: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
