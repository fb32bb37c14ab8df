package redmine

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"basegraph.app/herald/internal/payload"
)

const (
	unknownIssueID   = "unknown"
	noSubject        = "No subject"
	unknownProject   = "Unknown project"
	unknownUser      = "Unknown user"
	unknownAttribute = "unknown"

	// Redmine sends this placeholder when the plugin cannot build a link.
	urlPlaceholder = "not yet implemented"
)

func issueID(ctx context.Context, env payload.Value) string {
	return payload.Or(ctx, "issue id", slog.LevelWarn, unknownIssueID, func() (string, error) {
		id, err := env.Get("issue.id").AsInt()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(id, 10), nil
	})
}

func issueSubject(ctx context.Context, env payload.Value) string {
	return payload.Or(ctx, "issue subject", slog.LevelWarn, noSubject, env.Get("issue.subject").AsString)
}

func projectName(ctx context.Context, env payload.Value) string {
	return payload.Or(ctx, "project name", slog.LevelWarn, unknownProject, env.Get("issue.project.name").AsString)
}

func issueURL(ctx context.Context, env payload.Value) string {
	url := strings.TrimSpace(payload.Or(ctx, "issue url", slog.LevelWarn, "", env.Get("url").AsString))
	if url == urlPlaceholder {
		return ""
	}
	return url
}

func issueStatus(ctx context.Context, env payload.Value) string {
	return payload.Or(ctx, "issue status", slog.LevelWarn, unknownAttribute, env.Get("issue.status.name").AsString)
}

func issuePriority(ctx context.Context, env payload.Value) string {
	return payload.Or(ctx, "issue priority", slog.LevelWarn, unknownAttribute, env.Get("issue.priority.name").AsString)
}

func issueDescription(ctx context.Context, env payload.Value) string {
	return optionalText(ctx, "issue description", env.Get("issue.description"))
}

func journalNotes(ctx context.Context, env payload.Value) string {
	journal := env.Get("journal")
	if !journal.Exists() {
		return ""
	}
	return optionalText(ctx, "journal notes", journal.Get("notes"))
}

// author resolves the user object at v, warning when there is none at all.
func author(ctx context.Context, field string, v payload.Value) string {
	user, err := v.AsObject()
	if err != nil {
		slog.WarnContext(ctx, "payload field unavailable, using fallback",
			"field", field,
			"error", err,
			"fallback", unknownUser,
		)
		return unknownUser
	}
	return userFullName(ctx, user)
}

// userFullName prefers "firstname lastname", then login.
func userFullName(ctx context.Context, user payload.Value) string {
	name := payload.Or(ctx, "user full name", slog.LevelDebug, "", func() (string, error) {
		first, err := namepart(user.Get("firstname"))
		if err != nil {
			return "", err
		}
		last, err := namepart(user.Get("lastname"))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(first + " " + last), nil
	})
	if name != "" {
		return name
	}

	login := payload.Or(ctx, "user login", slog.LevelDebug, "", user.Get("login").AsString)
	if login == "" {
		return unknownUser
	}
	return login
}

// namepart accepts a string, null or an absent key.
func namepart(v payload.Value) (string, error) {
	if !v.Exists() {
		return "", nil
	}
	s, _, err := v.AsNullableString()
	return s, err
}

func optionalText(ctx context.Context, field string, v payload.Value) string {
	return payload.Or(ctx, field, slog.LevelDebug, "", func() (string, error) {
		s, _, err := v.AsNullableString()
		return s, err
	})
}
