package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/user/moviebot/internal/agent"
	"github.com/user/moviebot/internal/config"
	"github.com/user/moviebot/internal/handler"
	"github.com/user/moviebot/internal/logger"
	"github.com/user/moviebot/internal/middleware"
	"github.com/user/moviebot/internal/router"
	"github.com/user/moviebot/internal/service"
)

type nopServices struct{}

func (nopServices) Match(context.Context, string) service.Result     { return service.Result{} }
func (nopServices) Recommend(context.Context, string) service.Result { return service.Result{} }
func (nopServices) Trending(context.Context) service.Result {
	return service.Result{Kind: service.KindNotFound, Message: service.MsgNoTrending}
}

type nopChatter struct{}

func (nopChatter) Chat(context.Context, string) (string, error) { return "hello", nil }

type countingIndexer struct {
	runs atomic.Int32
}

func (i *countingIndexer) Run(context.Context, service.IndexOptions) (*service.IndexReport, error) {
	i.runs.Add(1)
	return &service.IndexReport{}, nil
}

var _ = Describe("Router", func() {
	var (
		r   *gin.Engine
		cfg *config.Config
	)

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(dir, "layouts"), 0o755)).To(Succeed())
		Expect(os.MkdirAll(filepath.Join(dir, "pages"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "layouts", "base.html"),
			[]byte(`<title>{{.Title | default "x"}}</title>{{template "content" .}}`), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "pages", "index.html"),
			[]byte(`{{define "content"}}<main>{{.SiteName}}</main>{{end}}`), 0o644)).To(Succeed())

		cfg = &config.Config{SiteName: "Movie Chatbot", AppSecret: "s3cret"}
		tools := agent.NewMovieTools(nopServices{}, nopServices{}, nopServices{}, logger.Nop())
		h := handler.NewHandler(cfg, nopChatter{}, tools, nil, logger.Nop())

		renderer, err := router.LoadTemplates(dir)
		Expect(err).NotTo(HaveOccurred())

		r = gin.New()
		r.HTMLRender = renderer
		mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
		router.RegisterRoutes(r, h, mcp)
	})

	get := func(target string, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	It("renders the chat page", func() {
		w := get("/", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("<title>Movie Chatbot</title>"))
		Expect(w.Body.String()).To(ContainSubstring("<main>Movie Chatbot</main>"))
	})

	It("serves chat, tools, health, metrics and mcp", func() {
		Expect(get("/chat?q=hi", "").Body.String()).To(MatchJSON(`{"response":"hello"}`))
		Expect(get("/api/tools/trending", "").Code).To(Equal(http.StatusOK))
		Expect(get("/health", "").Code).To(Equal(http.StatusOK))
		Expect(get("/metrics", "").Body.String()).To(ContainSubstring("go_goroutines"))
		Expect(get("/mcp", "").Code).To(Equal(http.StatusTeapot))
	})

	It("guards admin routes", func() {
		Expect(get("/admin/reindex", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("lets admins read the reindex status", func() {
		token, err := middleware.GenerateToken("ops", middleware.RoleAdmin, cfg.AppSecret, time.Hour)
		Expect(err).NotTo(HaveOccurred())
		Expect(get("/admin/reindex", token).Code).To(Equal(http.StatusOK))
	})

	Context("in production with the default secret", func() {
		var indexer *countingIndexer

		BeforeEach(func() {
			prod := &config.Config{Env: "production", AppSecret: config.DefaultAppSecret}
			tools := agent.NewMovieTools(nopServices{}, nopServices{}, nopServices{}, logger.Nop())
			indexer = &countingIndexer{}

			r = gin.New()
			router.RegisterRoutes(r, handler.NewHandler(prod, nopChatter{}, tools, indexer, logger.Nop()), nil)
		})

		It("does not mount the admin routes", func() {
			token, err := middleware.GenerateToken("intruder", middleware.RoleAdmin, config.DefaultAppSecret, time.Hour)
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/admin/reindex", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(get("/admin/reindex", token).Code).To(Equal(http.StatusNotFound))
			Consistently(indexer.runs.Load, "50ms").Should(BeZero())
		})

		It("keeps the public routes", func() {
			Expect(get("/health", "").Code).To(Equal(http.StatusOK))
		})
	})

	It("mounts the admin routes in production once a secret is set", func() {
		prod := &config.Config{Env: "production", AppSecret: "real-secret"}
		tools := agent.NewMovieTools(nopServices{}, nopServices{}, nopServices{}, logger.Nop())
		r = gin.New()
		router.RegisterRoutes(r, handler.NewHandler(prod, nopChatter{}, tools, nil, logger.Nop()), nil)

		token, err := middleware.GenerateToken("ops", middleware.RoleAdmin, "real-secret", time.Hour)
		Expect(err).NotTo(HaveOccurred())
		Expect(get("/admin/reindex", token).Code).To(Equal(http.StatusOK))
	})

	It("fails when no layouts exist", func() {
		_, err := router.LoadTemplates(GinkgoT().TempDir())
		Expect(err).To(HaveOccurred())
	})
})
