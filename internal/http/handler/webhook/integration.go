// Package webhook receives third-party webhooks. Once the caller is
// authenticated, every outcome is acknowledged with success so senders
// never retry or disable the hook.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/herald/common/logger"
	"basegraph.app/herald/internal/http/dto"
	"basegraph.app/herald/internal/integration"
	"basegraph.app/herald/internal/mapper"
	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/payload"
	"basegraph.app/herald/internal/service"
)

// Bodies larger than this are not read past the limit.
const maxBodyBytes = 5 << 20

type IntegrationWebhookHandler struct {
	auth     service.AuthService
	registry *integration.Registry
	webhooks service.WebhookMessageService
}

func NewIntegrationWebhookHandler(auth service.AuthService, registry *integration.Registry, webhooks service.WebhookMessageService) *IntegrationWebhookHandler {
	return &IntegrationWebhookHandler{
		auth:     auth,
		registry: registry,
		webhooks: webhooks,
	}
}

type webhookRequest struct {
	bot           *model.User
	normalizer    integration.Normalizer
	body          []byte
	headers       map[string]string
	streamName    string
	topic         string
	onlyEvents    []string
	excludeEvents []string
}

func (h *IntegrationWebhookHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("integration")

	normalizer, err := h.registry.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.Error(fmt.Sprintf("unknown integration %q", name)))
		return
	}

	bot, err := h.auth.AuthenticateAPIKey(ctx, apiKey(c))
	if err != nil {
		if !errors.Is(err, service.ErrUnauthorized) {
			slog.ErrorContext(ctx, "webhook authentication failed", "error", err, "integration", name)
		}
		c.JSON(http.StatusUnauthorized, dto.Error("invalid API key"))
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RealmID:     logger.Ptr(bot.RealmID),
		UserID:      logger.Ptr(bot.ID),
		Integration: name,
		Component:   "herald.webhook." + name,
	})

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		slog.WarnContext(ctx, "failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, dto.Success())
		return
	}

	h.handleSilently(ctx, webhookRequest{
		bot:           bot,
		normalizer:    normalizer,
		body:          body,
		headers:       firstHeaderValues(c.Request.Header),
		streamName:    c.Query("stream"),
		topic:         c.Query("topic"),
		onlyEvents:    service.ParseEventPatterns(c.Query("only_events")),
		excludeEvents: service.ParseEventPatterns(c.Query("exclude_events")),
	})

	c.JSON(http.StatusOK, dto.Success())
}

// handleSilently runs the pipeline and logs whatever goes wrong, panics
// included. It never reports failure to the caller.
func (h *IntegrationWebhookHandler) handleSilently(ctx context.Context, req webhookRequest) {
	span := logger.StartSpan(ctx, "webhook.handle")
	defer span.End()
	ctx = span.Context()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			span.RecordError(err)
			slog.ErrorContext(ctx, "webhook processing panicked", "error", err)
		}
	}()

	msg, err := h.process(ctx, req)
	if err != nil {
		span.RecordError(err)
		logOutcome(ctx, err)
		return
	}

	span.SetAttributes(attribute.Int64("herald.message_id", msg.ID))
	slog.InfoContext(ctx, "webhook message sent",
		"message_id", msg.ID,
		"event_type", msg.EventType,
		"topic", msg.Topic())
}

func (h *IntegrationWebhookHandler) process(ctx context.Context, req webhookRequest) (*model.Message, error) {
	body, err := payload.Parse(req.body)
	if err != nil {
		return nil, err
	}

	notification, err := req.normalizer.Normalize(ctx, body, req.headers)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		EventType: logger.Ptr(string(notification.EventType)),
	})

	return h.webhooks.Send(ctx, service.WebhookSendParams{
		Bot:           req.bot,
		Notification:  notification,
		StreamName:    req.streamName,
		TopicOverride: req.topic,
		OnlyEvents:    req.onlyEvents,
		ExcludeEvents: req.excludeEvents,
	})
}

func logOutcome(ctx context.Context, err error) {
	switch {
	case errors.Is(err, mapper.ErrUnsupportedEvent):
		slog.DebugContext(ctx, "webhook event ignored", "reason", err)
	case errors.Is(err, service.ErrEventFiltered):
		slog.InfoContext(ctx, "webhook event filtered", "reason", err)
	case errors.Is(err, payload.ErrInvalidJSON):
		slog.WarnContext(ctx, "webhook payload is not valid JSON")
	default:
		slog.ErrorContext(ctx, "webhook processing failed", "error", err)
	}
}

// apiKey reads the key from the query string, falling back to the basic
// auth password.
func apiKey(c *gin.Context) string {
	if key := c.Query("api_key"); key != "" {
		return key
	}
	if _, password, ok := c.Request.BasicAuth(); ok {
		return password
	}
	return ""
}

func firstHeaderValues(header http.Header) map[string]string {
	headers := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}
	return headers
}
