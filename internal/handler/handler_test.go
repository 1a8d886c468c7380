package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/user/moviebot/internal/agent"
	"github.com/user/moviebot/internal/config"
	"github.com/user/moviebot/internal/handler"
	"github.com/user/moviebot/internal/logger"
	"github.com/user/moviebot/internal/service"
)

type fakeChatter struct {
	answer string
	err    error
	asked  []string
}

func (f *fakeChatter) Chat(_ context.Context, q string) (string, error) {
	f.asked = append(f.asked, q)
	return f.answer, f.err
}

type fakeServices struct{}

func (fakeServices) Match(_ context.Context, quote string) service.Result {
	if quote == "unknown" {
		return service.Result{Kind: service.KindNotFound, Message: service.MsgQuoteNotFound}
	}
	return service.Result{Kind: service.KindSuccess, Lines: []string{"**Inception** (2010)"}}
}

func (fakeServices) Recommend(context.Context, string) service.Result {
	return service.Result{Kind: service.KindSuccess, Header: service.HeaderRecommendations, Lines: []string{"- **Heat** (1995)"}}
}

func (fakeServices) Trending(context.Context) service.Result {
	return service.Result{Kind: service.KindNotFound, Message: service.MsgNoTrending}
}

type fakeIndexer struct {
	mu      sync.Mutex
	release chan struct{}
	runs    int
	opts    service.IndexOptions
}

func (f *fakeIndexer) Run(_ context.Context, opts service.IndexOptions) (*service.IndexReport, error) {
	f.mu.Lock()
	f.runs++
	f.opts = opts
	f.mu.Unlock()
	<-f.release
	return &service.IndexReport{Movies: 2, Indexed: 2}, nil
}

func (f *fakeIndexer) Runs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

var _ = Describe("Handler", func() {
	var (
		chat    *fakeChatter
		indexer *fakeIndexer
		h       *handler.Handler
		r       *gin.Engine
	)

	BeforeEach(func() {
		chat = &fakeChatter{answer: "Try **Heat** (1995)."}
		indexer = &fakeIndexer{release: make(chan struct{})}
		tools := agent.NewMovieTools(fakeServices{}, fakeServices{}, fakeServices{}, logger.Nop())
		cfg := &config.Config{SiteName: "Movie Chatbot", IndexWorkers: 2}
		h = handler.NewHandler(cfg, chat, tools, indexer, logger.Nop())

		r = gin.New()
		r.GET("/health", h.Health)
		r.GET("/chat", h.Chat)
		r.GET("/api/tools/quote", h.ToolQuote)
		r.GET("/api/tools/recommend", h.ToolRecommend)
		r.GET("/api/tools/trending", h.ToolTrending)
		r.POST("/admin/reindex", h.AdminReindex)
		r.GET("/admin/reindex", h.AdminReindexStatus)
	})

	do := func(method, target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
		return w
	}

	chatResponse := func(w *httptest.ResponseRecorder) string {
		var body map[string]string
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		return body["response"]
	}

	decode := func(w *httptest.ResponseRecorder) envelope {
		var env envelope
		Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
		return env
	}

	Describe("GET /chat", func() {
		It("returns the agent's answer", func() {
			w := do(http.MethodGet, "/chat?q="+url.QueryEscape("something like Heat"))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(chatResponse(w)).To(Equal("Try **Heat** (1995)."))
			Expect(chat.asked).To(Equal([]string{"something like Heat"}))
		})

		It("asks for a question when q is blank or missing", func() {
			for _, target := range []string{"/chat?q=%20%20", "/chat"} {
				w := do(http.MethodGet, target)
				Expect(w.Code).To(Equal(http.StatusOK))
				Expect(chatResponse(w)).To(Equal(handler.MsgEmptyQuestion))
			}
			Expect(chat.asked).To(BeEmpty())
		})

		It("rejects overly long questions", func() {
			w := do(http.MethodGet, "/chat?q="+strings.Repeat("a", 2001))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("renders agent failures as text", func() {
			chat.err = errors.New("quota exceeded")

			w := do(http.MethodGet, "/chat?q=hi")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(chatResponse(w)).To(Equal("Error: quota exceeded"))
		})
	})

	Describe("tool API", func() {
		It("wraps results in the response envelope", func() {
			env := decode(do(http.MethodGet, "/api/tools/recommend?titles="+url.QueryEscape("Inception, Interstellar")))
			Expect(env.Success).To(BeTrue())

			var data handler.ToolResponse
			Expect(json.Unmarshal(env.Data, &data)).To(Succeed())
			Expect(data).To(Equal(handler.ToolResponse{Kind: "success", Text: "Recommended for you:\n- **Heat** (1995)"}))
		})

		It("reports business misses by kind", func() {
			env := decode(do(http.MethodGet, "/api/tools/quote?q=unknown"))
			Expect(env.Code).To(Equal(http.StatusOK))

			var data handler.ToolResponse
			Expect(json.Unmarshal(env.Data, &data)).To(Succeed())
			Expect(data.Kind).To(Equal("not_found"))
			Expect(data.Text).To(Equal(service.MsgQuoteNotFound))
		})

		It("serves trending without arguments", func() {
			env := decode(do(http.MethodGet, "/api/tools/trending"))
			Expect(string(env.Data)).To(ContainSubstring(service.MsgNoTrending))
		})

		It("rejects blank input", func() {
			w := do(http.MethodGet, "/api/tools/quote?q=+")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w).Success).To(BeFalse())
		})
	})

	Describe("reindex", func() {
		It("runs in the background and refuses overlapping runs", func() {
			w := do(http.MethodPost, "/admin/reindex")
			Expect(w.Code).To(Equal(http.StatusAccepted))
			Eventually(indexer.Runs).Should(Equal(1))

			Expect(do(http.MethodPost, "/admin/reindex").Code).To(Equal(http.StatusConflict))

			close(indexer.release)
			Eventually(func() string {
				return string(decode(do(http.MethodGet, "/admin/reindex")).Data)
			}).Should(ContainSubstring(`"indexed":2`))

			Expect(h.IndexOptions.Workers).To(Equal(2))
			Eventually(func() int {
				return do(http.MethodPost, "/admin/reindex").Code
			}).Should(Equal(http.StatusAccepted))
		})
	})

	It("reports health", func() {
		w := do(http.MethodGet, "/health")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"status":"ok"}`))
	})
})
