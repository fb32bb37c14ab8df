// Package gitlab renders GitLab issue and issue comment webhooks.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/herald/internal/integration"
	"basegraph.app/herald/internal/mapper"
	"basegraph.app/herald/internal/markdown"
	"basegraph.app/herald/internal/payload"
)

const Name = "gitlab"

const unknownUser = "Unknown user"

type Normalizer struct {
	mapper mapper.EventMapper
}

func New() *Normalizer {
	return &Normalizer{mapper: mapper.NewGitLabEventMapper()}
}

func (n *Normalizer) Name() string {
	return Name
}

func (n *Normalizer) Normalize(ctx context.Context, body payload.Value, headers map[string]string) (*integration.Notification, error) {
	eventType, err := n.mapper.Map(ctx, body, headers)
	if err != nil {
		return nil, err
	}

	raw := []byte(body.Raw())

	if eventType == mapper.EventNote {
		var event gitlab.IssueCommentEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("decoding gitlab note event: %w", err)
		}
		return noteNotification(&event), nil
	}

	var event gitlab.IssueEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("decoding gitlab issue event: %w", err)
	}
	return issueNotification(eventType, &event), nil
}

func issueNotification(eventType mapper.EventType, event *gitlab.IssueEvent) *integration.Notification {
	attrs := event.ObjectAttributes
	userName := unknownUser
	if event.User != nil {
		userName = displayName(event.User.Name, event.User.Username)
	}

	return &integration.Notification{
		EventType: eventType,
		Topic:     issueTopic(event.Project.Name, fmt.Sprintf("%d", attrs.IID), attrs.Title),
		Body: fmt.Sprintf("%s %s issue %s.",
			userName,
			issueVerb(eventType),
			issueLink(fmt.Sprintf("%d", attrs.IID), attrs.Title, attrs.URL),
		),
	}
}

func noteNotification(event *gitlab.IssueCommentEvent) *integration.Notification {
	iid := fmt.Sprintf("%d", event.Issue.IID)
	userName := unknownUser
	if event.User != nil {
		userName = displayName(event.User.Name, event.User.Username)
	}

	content := fmt.Sprintf("%s commented on issue %s.",
		userName,
		issueLink(iid, event.Issue.Title, event.ObjectAttributes.URL),
	)
	if note := event.ObjectAttributes.Note; note != "" {
		fence := markdown.UnusedFence(note)
		content += fmt.Sprintf("\n%s quote\n%s\n%s", fence, note, fence)
	}

	return &integration.Notification{
		EventType: mapper.EventNote,
		Topic:     issueTopic(event.Project.Name, iid, event.Issue.Title),
		Body:      content,
	}
}

func issueVerb(eventType mapper.EventType) string {
	switch eventType {
	case mapper.EventIssueOpened:
		return "opened"
	case mapper.EventIssueClosed:
		return "closed"
	case mapper.EventIssueReopened:
		return "reopened"
	default:
		return "updated"
	}
}

func issueLink(iid, title, url string) string {
	label := fmt.Sprintf("#%s %s", iid, title)
	if url == "" {
		return label
	}
	return fmt.Sprintf("[%s](%s)", label, url)
}

func issueTopic(project, iid, title string) string {
	if project == "" {
		project = "Unknown project"
	}
	return fmt.Sprintf("%s / issue #%s %s", project, iid, title)
}

func displayName(name, username string) string {
	switch {
	case name != "":
		return name
	case username != "":
		return username
	default:
		return unknownUser
	}
}
