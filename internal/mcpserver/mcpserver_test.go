package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/user/moviebot/internal/agent"
	"github.com/user/moviebot/internal/logger"
	"github.com/user/moviebot/internal/service"
)

type fakeTools struct {
	lastQuote string
	lastLiked string
	trendErr  error
}

func (f *fakeTools) Match(_ context.Context, quote string) service.Result {
	f.lastQuote = quote
	return service.Result{Kind: service.KindNotFound, Message: service.MsgQuoteNotFound}
}

func (f *fakeTools) Recommend(_ context.Context, liked string) service.Result {
	f.lastLiked = liked
	return service.Result{Kind: service.KindSuccess, Header: service.HeaderRecommendations, Lines: []string{"- **Heat** (1995)"}}
}

func (f *fakeTools) Trending(context.Context) service.Result {
	return service.Result{Kind: service.KindInfrastructure, Message: "Trending error: " + f.trendErr.Error(), Err: f.trendErr}
}

var _ = Describe("MCP server", func() {
	var (
		ctx   context.Context
		tools *fakeTools
		srv   *Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		tools = &fakeTools{trendErr: errors.New("db down")}

		var err error
		srv, err = NewServer(Config{
			Tools:  agent.NewMovieTools(tools, tools, tools, logger.Nop()),
			Logger: logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	text := func(res *mcp.CallToolResult) string {
		Expect(res.Content).To(HaveLen(1))
		tc, ok := res.Content[0].(*mcp.TextContent)
		Expect(ok).To(BeTrue())
		return tc.Text
	}

	It("requires a tool registry", func() {
		_, err := NewServer(Config{Logger: logger.Nop()})
		Expect(err).To(MatchError("tool registry is required"))
	})

	It("exposes an HTTP handler", func() {
		Expect(srv.Handler()).NotTo(BeNil())
	})

	It("returns successful recommendations as text and structured output", func() {
		res, out, err := srv.handleRecommend(ctx, nil, RecommendInput{LikedTitles: "Inception"})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.IsError).To(BeFalse())
		Expect(out).To(Equal(ToolOutput{Kind: "success", Text: "Recommended for you:\n- **Heat** (1995)"}))
		Expect(text(res)).To(Equal(out.Text))
		Expect(tools.lastLiked).To(Equal("Inception"))
	})

	It("does not flag business misses as errors", func() {
		res, out, err := srv.handleQuote(ctx, nil, QuoteInput{Quote: "nope"})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.IsError).To(BeFalse())
		Expect(out.Kind).To(Equal("not_found"))
		Expect(text(res)).To(Equal(service.MsgQuoteNotFound))
	})

	It("flags infrastructure failures", func() {
		res, out, err := srv.handleTrending(ctx, nil, TrendingInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.IsError).To(BeTrue())
		Expect(out.Text).To(Equal("Trending error: db down"))
	})

	It("uses the registry descriptions", func() {
		Expect(srv.tool(agent.ToolTrending).Description).To(ContainSubstring("top 5 trending"))
	})
})
