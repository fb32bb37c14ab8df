package model

import "time"

type TopicsPolicy string

const (
	TopicsPolicyInherit           TopicsPolicy = "inherit"
	TopicsPolicyAllowEmptyTopic   TopicsPolicy = "allow_empty_topic"
	TopicsPolicyDisableEmptyTopic TopicsPolicy = "disable_empty_topic"
	TopicsPolicyEmptyTopicOnly    TopicsPolicy = "empty_topic_only"
)

func (p TopicsPolicy) IsValid() bool {
	switch p {
	case TopicsPolicyInherit, TopicsPolicyAllowEmptyTopic, TopicsPolicyDisableEmptyTopic, TopicsPolicyEmptyTopicOnly:
		return true
	}
	return false
}

// Stream is a channel messages are posted to, under a topic.
type Stream struct {
	ID           int64        `json:"id"`
	RealmID      int64        `json:"realm_id"`
	Name         string       `json:"name"`
	TopicsPolicy TopicsPolicy `json:"topics_policy"`
	CreatedAt    time.Time    `json:"created_at"`
}
