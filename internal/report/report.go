// Package report composes moderation reports about a message. It only
// builds text; resolving the sender and delivering the report is up to the
// caller.
package report

import (
	"fmt"
	"strings"

	"basegraph.app/herald/internal/markdown"
	"basegraph.app/herald/internal/model"
)

const TruncationMarker = "\n[message truncated]"

// Input is everything a report is composed from.
type Input struct {
	Reporter    model.User
	Message     model.Message
	ReportType  string
	Description string
	Destination model.Stream
}

// Report is the composed moderation message, ready to send to Destination.
type Report struct {
	Topic   string
	Content string
}

type Composer struct {
	snippetLength int
}

// NewComposer returns a Composer that cuts the reported message down to
// snippetLength runes in the preview.
func NewComposer(snippetLength int) *Composer {
	return &Composer{snippetLength: snippetLength}
}

func (c *Composer) Compose(in Input) Report {
	var b strings.Builder
	b.WriteString(Header(in.Reporter, in.Message))

	fmt.Fprintf(&b, "\n- Reason: **%s**\n- Notes:\n", in.ReportType)
	fmt.Fprintf(&b, "```quote\n%s\n```", in.Description)

	snippet := markdown.Truncate(in.Message.Content, c.snippetLength, TruncationMarker)
	fence := markdown.UnusedFence(snippet)
	fmt.Fprintf(&b, "\n%s spoiler **Message sent by %s**\n%s\n%s\n",
		fence, mention(in.Message.Sender), snippet, fence)

	return Report{
		Topic:   Topic(in.Message.Sender, in.Destination),
		Content: b.String(),
	}
}

// Header describes what was reported: a DM, a group DM, or a channel message.
func Header(reporter model.User, msg model.Message) string {
	reporterMention := mention(reporter)
	senderMention := mention(msg.Sender)

	switch r := msg.Recipient.(type) {
	case model.GroupRecipient:
		return fmt.Sprintf("%s reported a DM sent by %s to %s.",
			reporterMention, senderMention, joinMentions(r.Participants))
	case model.ChannelRecipient:
		link := markdown.MessageLink(r.StreamID, r.StreamName, r.Topic, msg.ID)
		return fmt.Sprintf("%s reported %s sent by %s.", reporterMention, link, senderMention)
	default:
		return fmt.Sprintf("%s reported a DM sent by %s.", reporterMention, senderMention)
	}
}

// Topic is the reported user's moderation topic, or the empty topic when
// the destination allows nothing else.
func Topic(reported model.User, destination model.Stream) string {
	if destination.TopicsPolicy == model.TopicsPolicyEmptyTopicOnly {
		return ""
	}
	return fmt.Sprintf("%s's moderation requests", reported.FullName)
}

// joinMentions renders "A, B, and C"; the serial comma is kept for two users.
func joinMentions(users []model.User) string {
	if len(users) == 0 {
		return ""
	}
	if len(users) == 1 {
		return mention(users[0])
	}

	mentions := make([]string, len(users)-1)
	for i, u := range users[:len(users)-1] {
		mentions[i] = mention(u)
	}
	return strings.Join(mentions, ", ") + ", and " + mention(users[len(users)-1])
}

func mention(u model.User) string {
	return markdown.SilentMention(u.FullName, u.ID)
}
