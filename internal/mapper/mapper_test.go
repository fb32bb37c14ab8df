package mapper_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/herald/internal/mapper"
	"basegraph.app/herald/internal/payload"
)

func mustParse(body string) payload.Value {
	v, err := payload.Parse([]byte(body))
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("RedmineEventMapper", func() {
	var (
		redmineMapper mapper.EventMapper
		ctx           context.Context
	)

	BeforeEach(func() {
		redmineMapper = mapper.NewRedmineEventMapper()
		ctx = context.Background()
	})

	It("maps opened and updated actions", func() {
		for _, action := range []string{"opened", "updated"} {
			body := mustParse(`{"payload": {"action": "` + action + `"}}`)
			eventType, err := redmineMapper.Map(ctx, body, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(eventType)).To(Equal(action))
		}
	})

	It("rejects other actions as unsupported", func() {
		_, err := redmineMapper.Map(ctx, mustParse(`{"payload": {"action": "deleted"}}`), nil)
		Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
	})

	It("rejects a missing envelope as unsupported", func() {
		_, err := redmineMapper.Map(ctx, mustParse(`{"action": "opened"}`), nil)
		Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
	})

	It("rejects a non-string action as unsupported", func() {
		_, err := redmineMapper.Map(ctx, mustParse(`{"payload": {"action": 7}}`), nil)
		Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
	})

	It("rejects a non-object body as unsupported", func() {
		_, err := redmineMapper.Map(ctx, mustParse(`[1, 2]`), nil)
		Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
	})
})

var _ = Describe("GitLabEventMapper", func() {
	var (
		gitlabMapper mapper.EventMapper
		ctx          context.Context
	)

	BeforeEach(func() {
		gitlabMapper = mapper.NewGitLabEventMapper()
		ctx = context.Background()
	})

	Context("when mapping Issue Hook events", func() {
		It("maps each action to its own event type", func() {
			cases := map[string]mapper.EventType{
				"open":   mapper.EventIssueOpened,
				"close":  mapper.EventIssueClosed,
				"reopen": mapper.EventIssueReopened,
				"update": mapper.EventIssueUpdated,
			}
			for action, want := range cases {
				headers := map[string]string{"X-Gitlab-Event": "Issue Hook"}
				body := mustParse(`{"object_kind": "issue", "object_attributes": {"action": "` + action + `"}}`)

				eventType, err := gitlabMapper.Map(ctx, body, headers)
				Expect(err).NotTo(HaveOccurred())
				Expect(eventType).To(Equal(want))
			}
		})

		It("falls back to object_kind without a header", func() {
			body := mustParse(`{"object_kind": "issue", "object_attributes": {"action": "open"}}`)
			eventType, err := gitlabMapper.Map(ctx, body, map[string]string{})
			Expect(err).NotTo(HaveOccurred())
			Expect(eventType).To(Equal(mapper.EventIssueOpened))
		})

		It("rejects unknown actions", func() {
			body := mustParse(`{"object_kind": "issue", "object_attributes": {"action": "move"}}`)
			_, err := gitlabMapper.Map(ctx, body, map[string]string{"X-Gitlab-Event": "Issue Hook"})
			Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
		})
	})

	Context("when mapping Note Hook events", func() {
		It("maps issue notes", func() {
			body := mustParse(`{"object_kind": "note", "object_attributes": {"noteable_type": "Issue"}}`)
			eventType, err := gitlabMapper.Map(ctx, body, map[string]string{"X-Gitlab-Event": "Note Hook"})
			Expect(err).NotTo(HaveOccurred())
			Expect(eventType).To(Equal(mapper.EventNote))
		})

		It("rejects notes on other noteables", func() {
			for _, noteable := range []string{"MergeRequest", "Commit", "Snippet"} {
				body := mustParse(`{"object_kind": "note", "object_attributes": {"noteable_type": "` + noteable + `"}}`)
				_, err := gitlabMapper.Map(ctx, body, map[string]string{"X-Gitlab-Event": "Note Hook"})
				Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
			}
		})
	})

	It("rejects unknown hooks", func() {
		body := mustParse(`{"object_kind": "pipeline"}`)
		_, err := gitlabMapper.Map(ctx, body, map[string]string{"X-Gitlab-Event": "Pipeline Hook"})
		Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
	})
})
