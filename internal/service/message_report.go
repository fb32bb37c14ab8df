package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"basegraph.app/herald/core/config"
	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/report"
	"basegraph.app/herald/internal/store"
)

var (
	ErrReportingDisabled         = errors.New("message reporting is not enabled in this organization")
	ErrInvalidReportType         = errors.New("invalid report type")
	ErrReportDescriptionRequired = errors.New("a description is required for this report type")
	ErrReportDescriptionTooLong  = errors.New("report description is too long")
	ErrMessageNotFound           = errors.New("message not found")
	ErrCannotReportOwnMessage    = errors.New("you cannot report your own messages")
)

type ReportParams struct {
	Reporter    *model.User
	MessageID   int64
	ReportType  string
	Description string
}

type MessageReportService interface {
	// Report validates a user's report and sends it to the moderation stream.
	Report(ctx context.Context, params ReportParams) error
	// SendMessageReport composes and sends a report as the notification bot.
	// The realm must have a moderation request stream.
	SendMessageReport(ctx context.Context, reporter model.User, realm *model.Realm, reported *model.Message, reportType, description string) error
}

type messageReportService struct {
	realms   store.RealmStore
	users    store.UserStore
	stored   store.MessageStore
	messages MessageService
	composer *report.Composer
	cfg      config.MessagingConfig
}

func NewMessageReportService(realms store.RealmStore, users store.UserStore, stored store.MessageStore, messages MessageService, cfg config.MessagingConfig) MessageReportService {
	return &messageReportService{
		realms:   realms,
		users:    users,
		stored:   stored,
		messages: messages,
		composer: report.NewComposer(cfg.ReportSnippetLength()),
		cfg:      cfg,
	}
}

func (s *messageReportService) Report(ctx context.Context, params ReportParams) error {
	if params.Reporter == nil {
		return fmt.Errorf("reporter is required")
	}

	reportType := model.ReportType(params.ReportType)
	if !reportType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReportType, params.ReportType)
	}
	if reportType == model.ReportTypeOther && params.Description == "" {
		return ErrReportDescriptionRequired
	}
	if utf8.RuneCountInString(params.Description) > s.cfg.MaxReportExplanationLength {
		return fmt.Errorf("%w: limit is %d characters", ErrReportDescriptionTooLong, s.cfg.MaxReportExplanationLength)
	}

	realm, err := s.realms.GetByID(ctx, params.Reporter.RealmID)
	if err != nil {
		return fmt.Errorf("fetching realm: %w", err)
	}
	if !realm.ReportingEnabled() {
		return ErrReportingDisabled
	}

	msg, err := s.stored.GetByID(ctx, params.MessageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("fetching message: %w", err)
	}
	if msg.RealmID != realm.ID || !canAccess(params.Reporter, msg) {
		return ErrMessageNotFound
	}
	if msg.Sender.ID == params.Reporter.ID {
		return ErrCannotReportOwnMessage
	}

	return s.SendMessageReport(ctx, *params.Reporter, realm, msg, params.ReportType, params.Description)
}

func (s *messageReportService) SendMessageReport(ctx context.Context, reporter model.User, realm *model.Realm, reported *model.Message, reportType, description string) error {
	destination := realm.ModerationRequestStream
	if destination == nil {
		panic(fmt.Sprintf("realm %d has no moderation request stream", realm.ID))
	}

	bot, err := s.users.GetByEmail(ctx, realm.ID, s.cfg.NotificationBotEmail)
	if err != nil {
		return fmt.Errorf("fetching notification bot: %w", err)
	}

	composed := s.composer.Compose(report.Input{
		Reporter:    reporter,
		Message:     *reported,
		ReportType:  reportType,
		Description: description,
		Destination: *destination,
	})

	msg, err := s.messages.SendChannelMessage(ctx, SendChannelMessageParams{
		Sender:  bot,
		Stream:  destination,
		Topic:   composed.Topic,
		Content: composed.Content,
	})
	if err != nil {
		return fmt.Errorf("sending message report: %w", err)
	}

	slog.InfoContext(ctx, "message report sent",
		"reported_message_id", reported.ID,
		"report_message_id", msg.ID,
		"report_type", reportType)
	return nil
}

// canAccess reports whether user may see msg: any realm member for channel
// messages, only the sender and participants for direct messages.
func canAccess(user *model.User, msg *model.Message) bool {
	if msg.Sender.ID == user.ID {
		return true
	}
	switch r := msg.Recipient.(type) {
	case model.ChannelRecipient:
		return true
	case model.DirectRecipient:
		return r.User.ID == user.ID
	case model.GroupRecipient:
		for _, p := range r.Participants {
			if p.ID == user.ID {
				return true
			}
		}
	}
	return false
}
