package service

import (
	"context"
	"log/slog"

	"github.com/patrickmn/go-cache"

	"github.com/user/moviebot/internal/model"
)

// 热门榜规则固定，不对外开放配置
const (
	trendingMinRating = 8.0
	trendingMinVotes  = 1000
	trendingLimit     = 5

	trendingCacheKey = "trending:top5"
)

// TrendingSelector 热门电影榜
type TrendingSelector struct {
	movies MovieStore
	cache  *cache.Cache
	logger *slog.Logger
}

// NewTrendingSelector c 为 nil 时不缓存
func NewTrendingSelector(movies MovieStore, c *cache.Cache, logger *slog.Logger) *TrendingSelector {
	return &TrendingSelector{movies: movies, cache: c, logger: logger}
}

func (t *TrendingSelector) Trending(ctx context.Context) Result {
	rows, err := t.load(ctx)
	if err != nil {
		t.logger.Error("查询热门电影失败", "error", err)
		return infraFailure(prefixTrendingError, err)
	}
	if len(rows) == 0 {
		return failure(KindNotFound, MsgNoTrending)
	}

	lines := make([]string, len(rows))
	for i := range rows {
		m := &rows[i]
		lines[i] = formatTrending(m.Title, m.Year(), m.VoteAverage, m.VoteCount)
	}
	return success(HeaderTrending, lines...)
}

func (t *TrendingSelector) load(ctx context.Context) ([]model.TrendingMovie, error) {
	if t.cache != nil {
		if v, ok := t.cache.Get(trendingCacheKey); ok {
			return v.([]model.TrendingMovie), nil
		}
	}

	rows, err := t.movies.Trending(ctx, trendingMinRating, trendingMinVotes, trendingLimit)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		t.cache.SetDefault(trendingCacheKey, rows)
	}
	return rows, nil
}
