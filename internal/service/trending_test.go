package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/user/moviebot/internal/logger"
	"github.com/user/moviebot/internal/service"
	"github.com/user/moviebot/internal/testutil"
	"github.com/user/moviebot/internal/utils"
)

var _ = Describe("TrendingSelector", func() {
	var (
		ctx    context.Context
		movies *testutil.MovieStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		movies = testutil.NewMovieStore(
			testutil.Rated(testutil.Movie(1, "The Shawshank Redemption", 1994), 8.7, 26000),
			testutil.Rated(testutil.Movie(2, "The Godfather", 1972), 8.7, 20000),
			testutil.Rated(testutil.Movie(3, "Spirited Away", 2001), 8.5, 16000),
			testutil.Rated(testutil.Movie(4, "Borderline", 2000), 8.0, 5000),
			testutil.Rated(testutil.Movie(5, "Cult Classic", 0), 9.1, 1000),
			testutil.Rated(testutil.Movie(6, "Parasite", 2019), 8.5, 17000),
			testutil.Rated(testutil.Movie(7, "Seven Samurai", 1954), 8.4, 3500),
			testutil.Rated(testutil.Movie(8, "Whiplash", 2014), 8.4, 14000),
			testutil.Movie(9, "Unrated", 2020),
		)
	})

	It("lists the top five by rating then votes", func() {
		res := service.NewTrendingSelector(movies, nil, logger.Nop()).Trending(ctx)

		Expect(res.Kind).To(Equal(service.KindSuccess))
		Expect(res.Header).To(Equal(service.HeaderTrending))
		Expect(res.Lines).To(Equal([]string{
			"- **The Shawshank Redemption** (1994) – 8.7 rating from 26000 votes",
			"- **The Godfather** (1972) – 8.7 rating from 20000 votes",
			"- **Parasite** (2019) – 8.5 rating from 17000 votes",
			"- **Spirited Away** (2001) – 8.5 rating from 16000 votes",
			"- **Whiplash** (2014) – 8.4 rating from 14000 votes",
		}))
	})

	It("prints ratings at full precision", func() {
		precise := testutil.NewMovieStore(
			testutil.Rated(testutil.Movie(1, "Two Decimals", 2001), 8.75, 4000),
			testutil.Rated(testutil.Movie(2, "Whole Number", 2002), 9.0, 2000),
		)

		res := service.NewTrendingSelector(precise, nil, logger.Nop()).Trending(ctx)
		Expect(res.Lines).To(Equal([]string{
			"- **Whole Number** (2002) – 9.0 rating from 2000 votes",
			"- **Two Decimals** (2001) – 8.75 rating from 4000 votes",
		}))
	})

	It("applies strict thresholds", func() {
		res := service.NewTrendingSelector(movies, nil, logger.Nop()).Trending(ctx)
		Expect(res.String()).NotTo(ContainSubstring("Borderline"))
		Expect(res.String()).NotTo(ContainSubstring("Cult Classic"))
	})

	It("returns the exact no-data message when nothing qualifies", func() {
		empty := testutil.NewMovieStore(testutil.Rated(testutil.Movie(1, "Meh", 2000), 6.1, 50000))

		res := service.NewTrendingSelector(empty, nil, logger.Nop()).Trending(ctx)
		Expect(res.Kind).To(Equal(service.KindNotFound))
		Expect(res.String()).To(Equal(service.MsgNoTrending))
	})

	It("serves repeated calls from the cache", func() {
		sel := service.NewTrendingSelector(movies, utils.NewTTLCache(time.Minute), logger.Nop())
		first := sel.Trending(ctx)
		second := sel.Trending(ctx)

		Expect(second).To(Equal(first))
		Expect(movies.TrendingCalls).To(Equal(1))
	})

	It("queries every time without a cache", func() {
		sel := service.NewTrendingSelector(movies, nil, logger.Nop())
		sel.Trending(ctx)
		sel.Trending(ctx)
		Expect(movies.TrendingCalls).To(Equal(2))
	})

	It("turns store failures into an infrastructure result", func() {
		movies.Err = errors.New("timeout")

		res := service.NewTrendingSelector(movies, nil, logger.Nop()).Trending(ctx)
		Expect(res.Kind).To(Equal(service.KindInfrastructure))
		Expect(res.String()).To(Equal("Trending error: timeout"))
	})
})
