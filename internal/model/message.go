package model

import "time"

type RecipientType string

const (
	RecipientTypeDirect  RecipientType = "direct"
	RecipientTypeGroup   RecipientType = "group"
	RecipientTypeChannel RecipientType = "channel"
)

// Recipient describes where a message was sent. It is one of
// DirectRecipient, GroupRecipient or ChannelRecipient.
type Recipient interface {
	RecipientType() RecipientType
}

// DirectRecipient is a one-to-one direct message.
type DirectRecipient struct {
	User User
}

// GroupRecipient is a direct message between several users, in display order.
type GroupRecipient struct {
	Participants []User
}

// ChannelRecipient is a message posted to a topic of a stream.
type ChannelRecipient struct {
	StreamID   int64
	StreamName string
	Topic      string
}

func (DirectRecipient) RecipientType() RecipientType  { return RecipientTypeDirect }
func (GroupRecipient) RecipientType() RecipientType   { return RecipientTypeGroup }
func (ChannelRecipient) RecipientType() RecipientType { return RecipientTypeChannel }

type Message struct {
	ID        int64     `json:"id"`
	RealmID   int64     `json:"realm_id"`
	Sender    User      `json:"sender"`
	Recipient Recipient `json:"-"`
	Content   string    `json:"content"`
	EventType string    `json:"event_type,omitempty"`
	DateSent  time.Time `json:"date_sent"`
}

// Topic returns the topic for channel messages and "" otherwise.
func (m Message) Topic() string {
	if ch, ok := m.Recipient.(ChannelRecipient); ok {
		return ch.Topic
	}
	return ""
}
