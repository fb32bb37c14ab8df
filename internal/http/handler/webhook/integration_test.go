package webhook_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/herald/internal/http/handler/webhook"
	"basegraph.app/herald/internal/integration"
	"basegraph.app/herald/internal/integration/gitlab"
	"basegraph.app/herald/internal/integration/redmine"
	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/payload"
	"basegraph.app/herald/internal/service"
)

type fakeAuthService struct {
	bot *model.User
	err error
}

func (f *fakeAuthService) AuthenticateAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if apiKey != "secret" {
		return nil, service.ErrUnauthorized
	}
	return f.bot, nil
}

func (f *fakeAuthService) AuthenticateBasic(ctx context.Context, email, apiKey string) (*model.User, error) {
	return f.AuthenticateAPIKey(ctx, apiKey)
}

type fakeWebhookMessageService struct {
	sent []service.WebhookSendParams
	err  error
}

func (f *fakeWebhookMessageService) Send(ctx context.Context, params service.WebhookSendParams) (*model.Message, error) {
	f.sent = append(f.sent, params)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Message{ID: 1001, EventType: string(params.Notification.EventType)}, nil
}

type panickingNormalizer struct{}

func (panickingNormalizer) Name() string { return "boom" }

func (panickingNormalizer) Normalize(context.Context, payload.Value, map[string]string) (*integration.Notification, error) {
	panic("formatter bug")
}

const openedPayload = `{"payload": {
	"action": "opened",
	"issue": {
		"id": 123,
		"subject": "Test Issue Subject",
		"project": {"name": "TestProject"},
		"status": {"name": "New"},
		"priority": {"name": "Normal"},
		"author": {"firstname": "Vmeetx"}
	}
}}`

var _ = Describe("IntegrationWebhookHandler", func() {
	var (
		router   *gin.Engine
		auth     *fakeAuthService
		webhooks *fakeWebhookMessageService
		logs     *bytes.Buffer
	)

	post := func(url, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		logs = &bytes.Buffer{}
		slog.SetDefault(slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

		auth = &fakeAuthService{bot: &model.User{ID: 7, RealmID: 1, IsBot: true}}
		webhooks = &fakeWebhookMessageService{}
		registry := integration.NewRegistry(redmine.New(), gitlab.New(), panickingNormalizer{})

		h := webhook.NewIntegrationWebhookHandler(auth, registry, webhooks)
		router.POST("/api/v1/external/:integration", h.HandleEvent)
	})

	It("sends the rendered notification", func() {
		w := post("/api/v1/external/redmine?api_key=secret&stream=redmine&topic=issues&only_events=opened", openedPayload)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"result":"success","msg":""}`))
		Expect(webhooks.sent).To(HaveLen(1))

		sent := webhooks.sent[0]
		Expect(sent.Bot.ID).To(Equal(int64(7)))
		Expect(sent.StreamName).To(Equal("redmine"))
		Expect(sent.TopicOverride).To(Equal("issues"))
		Expect(sent.OnlyEvents).To(Equal([]string{"opened"}))
		Expect(sent.Notification.Topic).To(Equal("TestProject #123: Test Issue Subject"))
		Expect(sent.Notification.Body).To(Equal(
			`Vmeetx opened issue #123: Test Issue Subject with status "New" and priority "Normal".`))
	})

	It("rejects unknown integrations", func() {
		w := post("/api/v1/external/jira?api_key=secret", openedPayload)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects invalid api keys", func() {
		w := post("/api/v1/external/redmine?api_key=wrong", openedPayload)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Body.String()).To(MatchJSON(`{"result":"error","msg":"invalid API key"}`))
		Expect(webhooks.sent).To(BeEmpty())
	})

	It("accepts the api key as a basic auth password", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/external/redmine", bytes.NewBufferString(openedPayload))
		req.SetBasicAuth("bot@example.com", "secret")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(webhooks.sent).To(HaveLen(1))
	})

	DescribeTable("acknowledges without sending",
		func(body string) {
			w := post("/api/v1/external/redmine?api_key=secret", body)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"result":"success","msg":""}`))
			Expect(webhooks.sent).To(BeEmpty())
		},
		Entry("malformed JSON", `{ invalid json content: }`),
		Entry("unsupported action", `{"payload": {"action": "closed", "other_data": "irrelevant"}}`),
		Entry("missing action", `{"payload": {"issue": {"id": 999, "subject": "Test"}}}`),
		Entry("missing envelope", `{"issue": {"id": 999}}`),
		Entry("empty body", ``),
	)

	It("acknowledges dispatch failures", func() {
		webhooks.err = errors.New("redis down")
		w := post("/api/v1/external/redmine?api_key=secret", openedPayload)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"result":"success","msg":""}`))
		Expect(logs.String()).To(ContainSubstring("webhook processing failed"))
	})

	It("acknowledges formatter panics", func() {
		w := post("/api/v1/external/boom?api_key=secret", `{}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"result":"success","msg":""}`))
		Expect(logs.String()).To(ContainSubstring("webhook processing panicked"))
	})

	It("routes gitlab events through the same endpoint", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/external/gitlab?api_key=secret", bytes.NewBufferString(`{
			"object_kind": "issue",
			"user": {"name": "Administrator"},
			"project": {"name": "Gitlab Test"},
			"object_attributes": {"iid": 23, "title": "Bug", "action": "reopen", "url": "http://example.com/issues/23"}
		}`))
		req.Header.Set("X-Gitlab-Event", "Issue Hook")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(webhooks.sent).To(HaveLen(1))
		Expect(webhooks.sent[0].Notification.Body).To(Equal("Administrator reopened issue [#23 Bug](http://example.com/issues/23)."))
	})
})
