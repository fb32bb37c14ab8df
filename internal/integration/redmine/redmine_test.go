package redmine_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/herald/internal/integration"
	"basegraph.app/herald/internal/integration/redmine"
	"basegraph.app/herald/internal/mapper"
	"basegraph.app/herald/internal/payload"
)

func fixture(name string) payload.Value {
	data, err := os.ReadFile(filepath.Join("testdata", name+".json"))
	Expect(err).NotTo(HaveOccurred())
	v, err := payload.Parse(data)
	Expect(err).NotTo(HaveOccurred())
	return v
}

func parse(body string) payload.Value {
	v, err := payload.Parse([]byte(body))
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("Normalizer", func() {
	var (
		normalizer *redmine.Normalizer
		ctx        context.Context
	)

	BeforeEach(func() {
		normalizer = redmine.New()
		ctx = context.Background()
	})

	It("is registered as redmine", func() {
		Expect(normalizer.Name()).To(Equal("redmine"))
	})

	Describe("opened events", func() {
		It("renders the fixture with a linked issue", func() {
			n, err := normalizer.Normalize(ctx, fixture("issue_opened"), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.EventType).To(Equal(mapper.EventOpened))
			Expect(n.Topic).To(Equal("TestProject #123: Test Issue Subject"))
			Expect(n.Body).To(Equal(
				`Vmeetx opened issue [#123: Test Issue Subject](http://example.com/issues/123) with status "New" and priority "Normal".` +
					"\nDescription: This is the issue description."))
		})

		It("renders a plain issue reference when the url is absent", func() {
			body := parse(`{"payload": {
				"action": "opened",
				"issue": {
					"id": 123,
					"subject": "Test Issue Subject",
					"project": {"name": "TestProject"},
					"status": {"name": "New"},
					"priority": {"name": "Normal"},
					"author": {"firstname": "Vmeetx"}
				}
			}}`)

			n, err := normalizer.Normalize(ctx, body, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Topic).To(Equal("TestProject #123: Test Issue Subject"))
			Expect(n.Body).To(Equal(`Vmeetx opened issue #123: Test Issue Subject with status "New" and priority "Normal".`))
		})

		It("treats the placeholder and blank urls as absent", func() {
			for _, url := range []string{"not yet implemented", "  not yet implemented  ", "   ", ""} {
				body := parse(`{"payload": {"action": "opened", "url": "` + url + `",
					"issue": {"id": 5, "subject": "S", "author": {"login": "jdoe"}}}}`)

				n, err := normalizer.Normalize(ctx, body, nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(n.Body).To(HavePrefix("jdoe opened issue #5: S with"))
			}
		})

		It("falls back for every missing field", func() {
			n, err := normalizer.Normalize(ctx, parse(`{"payload": {"action": "opened"}}`), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Topic).To(Equal("Unknown project #unknown: No subject"))
			Expect(n.Body).To(Equal(`Unknown user opened issue #unknown: No subject with status "unknown" and priority "unknown".`))
		})

		It("falls back for fields of the wrong type", func() {
			body := parse(`{"payload": {
				"action": "opened",
				"url": 42,
				"issue": {
					"id": "123",
					"subject": ["x"],
					"project": "TestProject",
					"status": {"name": null},
					"author": {"firstname": 1, "login": "jdoe"},
					"description": {"text": "nested"}
				}
			}}`)

			n, err := normalizer.Normalize(ctx, body, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Topic).To(Equal("Unknown project #unknown: No subject"))
			Expect(n.Body).To(Equal(`jdoe opened issue #unknown: No subject with status "unknown" and priority "unknown".`))
		})

		It("joins first and last names", func() {
			body := parse(`{"payload": {"action": "opened",
				"issue": {"id": 1, "subject": "S", "author": {"firstname": "Ada", "lastname": "Lovelace", "login": "ada"}}}}`)

			n, err := normalizer.Normalize(ctx, body, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Body).To(HavePrefix("Ada Lovelace opened issue"))
		})

		It("uses a lone last name before the login", func() {
			body := parse(`{"payload": {"action": "opened",
				"issue": {"id": 1, "subject": "S", "author": {"lastname": "Doe", "login": "jdoe"}}}}`)

			n, err := normalizer.Normalize(ctx, body, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Body).To(HavePrefix("Doe opened issue"))
		})
	})

	Describe("updated events", func() {
		It("takes author and notes from the journal", func() {
			n, err := normalizer.Normalize(ctx, fixture("issue_updated"), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.EventType).To(Equal(mapper.EventUpdated))
			Expect(n.Topic).To(Equal("TestProject #123: Test Issue Subject"))
			Expect(n.Body).To(Equal(
				"Vmeetx updated issue [#123: Test Issue Subject](http://example.com/issues/123).\nNotes: This is a note added to the issue."))
		})

		It("omits the notes line when notes are null", func() {
			body := parse(`{"payload": {"action": "updated",
				"issue": {"id": 7, "subject": "S", "project": {"name": "P"}, "author": {"login": "issue-author"}},
				"journal": {"notes": null, "author": {"login": "editor"}}}}`)

			n, err := normalizer.Normalize(ctx, body, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Body).To(Equal("editor updated issue #7: S."))
		})

		It("uses the unknown user without a journal", func() {
			body := parse(`{"payload": {"action": "updated",
				"issue": {"id": 7, "subject": "S", "author": {"login": "issue-author"}}}}`)

			n, err := normalizer.Normalize(ctx, body, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Body).To(Equal("Unknown user updated issue #7: S."))
		})
	})

	Describe("unsupported events", func() {
		It("rejects other actions", func() {
			_, err := normalizer.Normalize(ctx, parse(`{"payload": {"action": "closed", "other_data": "irrelevant"}}`), nil)
			Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
		})

		It("rejects a missing action", func() {
			_, err := normalizer.Normalize(ctx, parse(`{"payload": {"issue": {"id": 999, "subject": "Test"}}}`), nil)
			Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
		})

		It("rejects a missing envelope", func() {
			_, err := normalizer.Normalize(ctx, parse(`"just a string"`), nil)
			Expect(err).To(MatchError(mapper.ErrUnsupportedEvent))
		})
	})

	It("can be looked up from a registry", func() {
		registry := integration.NewRegistry(normalizer)
		found, err := registry.Get("redmine")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeIdenticalTo(normalizer))
	})
})
