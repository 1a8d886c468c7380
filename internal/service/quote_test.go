package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/user/moviebot/internal/logger"
	"github.com/user/moviebot/internal/service"
	"github.com/user/moviebot/internal/testutil"
	"github.com/user/moviebot/internal/vector"
	"github.com/user/moviebot/internal/vector/memory"
)

func quoteDoc(movieID string, emb ...float32) vector.Document {
	return vector.Document{
		ID:        vector.DocumentID(vector.KindQuote, movieID),
		Embedding: emb,
		Payload:   vector.Payload{MovieID: movieID},
	}
}

var _ = Describe("QuoteMatcher", func() {
	var (
		ctx      context.Context
		movies   *testutil.MovieStore
		quotes   vector.Collection
		embedder *testutil.MockEmbedder
		matcher  *service.QuoteMatcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		movies = seedCatalog()
		embedder = testutil.NewMockEmbedder()
		embedder.Embeddings["you mustn't be afraid to dream a little bigger"] = []float32{1, 0, 0}
		embedder.Embeddings["ghost quote"] = []float32{0, 0, 1}

		var err error
		quotes, err = memory.New().Collection(ctx, vector.KindQuote.Collection())
		Expect(err).NotTo(HaveOccurred())
		Expect(quotes.Upsert(ctx, []vector.Document{
			quoteDoc("1", 1, 0, 0),
			quoteDoc("3", 0.5, 0.5, 0),
			quoteDoc("404", 0, 0, 1),
		})).To(Succeed())

		matcher = service.NewQuoteMatcher(movies, quotes, embedder, logger.Nop())
	})

	It("returns the closest movie as title and year", func() {
		res := matcher.Match(ctx, "you mustn't be afraid to dream a little bigger")
		Expect(res.Kind).To(Equal(service.KindSuccess))
		Expect(res.String()).To(Equal("**Inception** (2010)"))
	})

	It("is idempotent for the same quote", func() {
		first := matcher.Match(ctx, "you mustn't be afraid to dream a little bigger")
		second := matcher.Match(ctx, "you mustn't be afraid to dream a little bigger")
		Expect(second).To(Equal(first))
	})

	It("distinguishes a quote without a relational row", func() {
		res := matcher.Match(ctx, "ghost quote")
		Expect(res.Kind).To(Equal(service.KindInconsistency))
		Expect(res.String()).To(Equal(service.MsgQuoteNoMovieInfo))
		Expect(res.String()).NotTo(Equal(service.MsgQuoteNotFound))
	})

	It("reports not found when the collection is empty", func() {
		Expect(quotes.Truncate(ctx)).To(Succeed())

		res := matcher.Match(ctx, "anything")
		Expect(res.Kind).To(Equal(service.KindNotFound))
		Expect(res.String()).To(Equal(service.MsgQuoteNotFound))
	})

	It("asks for a quote when the input is blank", func() {
		res := matcher.Match(ctx, "   ")
		Expect(res.Kind).To(Equal(service.KindInputEmpty))
		Expect(embedder.Calls("   ")).To(BeZero())
	})

	It("turns embedding failures into an infrastructure result", func() {
		embedder.Err = errors.New("ollama offline")

		res := matcher.Match(ctx, "anything")
		Expect(res.Kind).To(Equal(service.KindInfrastructure))
		Expect(res.String()).To(Equal("Search error: ollama offline"))
	})
})

var _ = Describe("Closest", func() {
	It("picks the minimum distance regardless of order", func() {
		hits := []vector.Hit{
			{Document: vector.Document{ID: "quote_1"}, Distance: 0.4},
			{Document: vector.Document{ID: "quote_2"}, Distance: 0.1},
			{Document: vector.Document{ID: "quote_3"}, Distance: 0.3},
		}
		best, ok := service.Closest(hits)
		Expect(ok).To(BeTrue())
		Expect(best.ID).To(Equal("quote_2"))
	})

	It("keeps the first hit on ties", func() {
		hits := []vector.Hit{
			{Document: vector.Document{ID: "quote_7"}, Distance: 0.2},
			{Document: vector.Document{ID: "quote_8"}, Distance: 0.2},
		}
		best, _ := service.Closest(hits)
		Expect(best.ID).To(Equal("quote_7"))
	})

	It("reports an empty candidate list", func() {
		_, ok := service.Closest(nil)
		Expect(ok).To(BeFalse())
	})
})
