package agent

import (
	"context"
	"log/slog"

	"github.com/user/moviebot/internal/service"
)

const (
	ToolFindByQuote = "find_movie_by_quote"
	ToolRecommend   = "recommend_movie_from_likes"
	ToolTrending    = "get_trending_movies"
)

type QuoteSearcher interface {
	Match(ctx context.Context, quote string) service.Result
}

type Recommender interface {
	Recommend(ctx context.Context, likedTitles string) service.Result
}

type TrendingSource interface {
	Trending(ctx context.Context) service.Result
}

// NewMovieTools 注册台词搜索、相似推荐、热门榜三个工具
func NewMovieTools(quotes QuoteSearcher, rec Recommender, trending TrendingSource, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)

	// 名字固定，不会重复
	_ = r.Register(Tool{
		Name:             ToolFindByQuote,
		Description:      "Find a movie by one of its quotes using semantic search.",
		Param:            "quote",
		ParamDescription: "the quote or line of dialogue",
		Handler:          quotes.Match,
	})
	_ = r.Register(Tool{
		Name:             ToolRecommend,
		Description:      "Recommend movies similar to the movies the user likes.",
		Param:            "liked_titles",
		ParamDescription: "comma separated titles the user likes, e.g. \"Inception, Interstellar\"",
		Handler:          rec.Recommend,
	})
	_ = r.Register(Tool{
		Name:             ToolTrending,
		Description:      "Get the top 5 trending movies by rating and vote count.",
		Param:            "dummy",
		ParamDescription: "unused, may be empty",
		Optional:         true,
		Handler: func(ctx context.Context, _ string) service.Result {
			return trending.Trending(ctx)
		},
	})
	return r
}
