package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/herald/internal/http/middleware"
)

var _ = Describe("Middleware", func() {
	var (
		router *gin.Engine
		logs   *bytes.Buffer
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		logs = &bytes.Buffer{}
		slog.SetDefault(slog.New(slog.NewJSONHandler(logs, nil)))

		router = gin.New()
		router.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logger())
		router.POST("/hook", func(c *gin.Context) { c.Status(http.StatusOK) })
		router.GET("/panic", func(c *gin.Context) { panic("boom") })
	})

	It("never logs the api key", func() {
		req := httptest.NewRequest(http.MethodPost, "/hook?api_key=s3cret&stream=ops", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(logs.String()).NotTo(ContainSubstring("s3cret"))
		Expect(logs.String()).To(ContainSubstring("api_key=REDACTED"))
		Expect(logs.String()).To(ContainSubstring("stream=ops"))
	})

	It("assigns a request id when none is supplied", func() {
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		requestID := w.Header().Get(middleware.RequestIDHeader)
		_, err := uuid.Parse(requestID)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs.String()).To(ContainSubstring(requestID))
	})

	It("keeps a valid caller request id", func() {
		supplied := uuid.NewString()
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		req.Header.Set(middleware.RequestIDHeader, supplied)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Header().Get(middleware.RequestIDHeader)).To(Equal(supplied))
	})

	It("replaces a malformed caller request id", func() {
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		req.Header.Set(middleware.RequestIDHeader, "<script>")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Header().Get(middleware.RequestIDHeader)).NotTo(Equal("<script>"))
	})

	It("turns panics into a 500 error response", func() {
		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"result":"error","msg":"internal server error"}`))
		Expect(logs.String()).To(ContainSubstring("panic recovered"))
	})
})
