// Package redmine renders Redmine issue webhooks. Every field is extracted
// with a fallback so a partial payload still produces a message.
package redmine

import (
	"context"
	"fmt"

	"basegraph.app/herald/internal/integration"
	"basegraph.app/herald/internal/mapper"
	"basegraph.app/herald/internal/payload"
)

const Name = "redmine"

type Normalizer struct {
	mapper mapper.EventMapper
}

func New() *Normalizer {
	return &Normalizer{mapper: mapper.NewRedmineEventMapper()}
}

func (n *Normalizer) Name() string {
	return Name
}

func (n *Normalizer) Normalize(ctx context.Context, body payload.Value, headers map[string]string) (*integration.Notification, error) {
	eventType, err := n.mapper.Map(ctx, body, headers)
	if err != nil {
		return nil, err
	}

	env := body.Get("payload")

	var content string
	switch eventType {
	case mapper.EventOpened:
		content = formatOpened(ctx, env)
	case mapper.EventUpdated:
		content = formatUpdated(ctx, env)
	}
	if content == "" {
		return nil, integration.ErrEmptyNotification
	}

	return &integration.Notification{
		EventType: eventType,
		Topic:     issueTopic(ctx, env),
		Body:      content,
	}, nil
}

func formatOpened(ctx context.Context, env payload.Value) string {
	content := fmt.Sprintf("%s opened issue %s with status \"%s\" and priority \"%s\".",
		author(ctx, "issue author", env.Get("issue.author")),
		issueLink(ctx, env),
		issueStatus(ctx, env),
		issuePriority(ctx, env),
	)
	if description := issueDescription(ctx, env); description != "" {
		content += "\nDescription: " + description
	}
	return content
}

func formatUpdated(ctx context.Context, env payload.Value) string {
	content := fmt.Sprintf("%s updated issue %s.",
		author(ctx, "journal author", env.Get("journal.author")),
		issueLink(ctx, env),
	)
	if notes := journalNotes(ctx, env); notes != "" {
		content += "\nNotes: " + notes
	}
	return content
}

func issueLink(ctx context.Context, env payload.Value) string {
	label := fmt.Sprintf("#%s: %s", issueID(ctx, env), issueSubject(ctx, env))
	if url := issueURL(ctx, env); url != "" {
		return fmt.Sprintf("[%s](%s)", label, url)
	}
	return label
}

func issueTopic(ctx context.Context, env payload.Value) string {
	return fmt.Sprintf("%s #%s: %s", projectName(ctx, env), issueID(ctx, env), issueSubject(ctx, env))
}
