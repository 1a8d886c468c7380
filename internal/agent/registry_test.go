package agent_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/user/moviebot/internal/agent"
	"github.com/user/moviebot/internal/logger"
	"github.com/user/moviebot/internal/service"
)

var _ = Describe("Registry", func() {
	var (
		ctx   context.Context
		stubs *stubTools
		reg   *agent.Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		stubs = newStubTools()
		reg = agent.NewMovieTools(stubs, stubs, stubs, logger.Nop())
	})

	It("registers the three movie tools in order", func() {
		var names []string
		for _, t := range reg.List() {
			names = append(names, t.Name)
		}
		Expect(names).To(Equal([]string{agent.ToolFindByQuote, agent.ToolRecommend, agent.ToolTrending}))
	})

	It("rejects duplicate names", func() {
		err := reg.Register(agent.Tool{Name: agent.ToolTrending})
		Expect(err).To(MatchError(agent.ErrDuplicateTool))
	})

	It("passes the single argument through and renders the result", func() {
		out := reg.Call(ctx, agent.ToolRecommend, "Inception, Interstellar")
		Expect(out).To(Equal("Recommended for you:\n- **Tenet** (2020)"))
		Expect(stubs.liked).To(Equal([]string{"Inception, Interstellar"}))
	})

	It("renders failures as plain messages", func() {
		Expect(reg.Call(ctx, agent.ToolTrending, "")).To(Equal(service.MsgNoTrending))
	})

	It("reports unknown tools without failing", func() {
		Expect(reg.Call(ctx, "delete_everything", "")).To(Equal("Unknown tool: delete_everything"))

		_, err := reg.Invoke(ctx, "delete_everything", "")
		Expect(err).To(MatchError(agent.ErrUnknownTool))
	})

	It("recovers from panics", func() {
		stubs.panicking = true

		res, err := reg.Invoke(ctx, agent.ToolFindByQuote, "x")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Kind).To(Equal(service.KindInfrastructure))
		Expect(res.String()).To(Equal("Tool error: panic: boom"))
	})

	It("declares a single string parameter per tool", func() {
		defs := reg.Definitions()
		Expect(defs).To(HaveLen(3))

		Expect(defs[0].Name).To(Equal(agent.ToolFindByQuote))
		Expect(defs[0].Parameters["required"]).To(Equal([]string{"quote"}))
		Expect(defs[0].Parameters["properties"]).To(HaveKey("quote"))

		Expect(defs[1].Parameters["required"]).To(Equal([]string{"liked_titles"}))

		Expect(defs[2].Parameters).NotTo(HaveKey("required"))
		Expect(defs[2].Parameters["properties"]).To(HaveKey("dummy"))
	})
})
