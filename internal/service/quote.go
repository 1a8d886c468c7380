package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/user/moviebot/internal/embedding"
	"github.com/user/moviebot/internal/metrics"
	"github.com/user/moviebot/internal/vector"
)

const quoteCandidates = 3

// QuoteMatcher 根据台词找电影
type QuoteMatcher struct {
	movies   MovieStore
	quotes   vector.Collection
	embedder embedding.Embedder
	logger   *slog.Logger
}

func NewQuoteMatcher(movies MovieStore, quotes vector.Collection, embedder embedding.Embedder, logger *slog.Logger) *QuoteMatcher {
	return &QuoteMatcher{movies: movies, quotes: quotes, embedder: embedder, logger: logger}
}

// Match 返回距离最近的一部电影
func (q *QuoteMatcher) Match(ctx context.Context, quote string) Result {
	quote = strings.TrimSpace(quote)
	if quote == "" {
		return failure(KindInputEmpty, MsgEmptyQuote)
	}

	emb, err := q.embedder.Embed(ctx, quote)
	if err != nil {
		q.logger.Error("台词向量化失败", "error", err)
		return infraFailure(prefixQuoteError, err)
	}

	start := time.Now()
	hits, err := q.quotes.Query(ctx, emb, quoteCandidates, nil)
	metrics.RecordVectorQuery(q.quotes.Name(), time.Since(start))
	if err != nil {
		q.logger.Error("台词检索失败", "error", err)
		return infraFailure(prefixQuoteError, err)
	}

	best, ok := closest(hits)
	if !ok {
		return failure(KindNotFound, MsgQuoteNotFound)
	}

	id, err := strconv.ParseInt(best.MovieID(), 10, 64)
	if err != nil {
		q.logger.Warn("台词文档缺少合法的 movie_id", "doc_id", best.ID)
		return failure(KindInconsistency, MsgQuoteNoMovieInfo)
	}

	movie, err := q.movies.FindByID(ctx, id)
	if err != nil {
		q.logger.Error("回查电影失败", "movie_id", id, "error", err)
		return infraFailure(prefixQuoteError, err)
	}
	if movie == nil {
		q.logger.Warn("台词命中的电影在关系库中不存在", "movie_id", id)
		return failure(KindInconsistency, MsgQuoteNoMovieInfo)
	}

	return success("", formatMovie(movie.Title, movie.Year()))
}

// closest 不依赖后端的排序，显式取距离最小的一条，相同距离取先出现的
func closest(hits []vector.Hit) (vector.Hit, bool) {
	if len(hits) == 0 {
		return vector.Hit{}, false
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h.Distance < best.Distance {
			best = h
		}
	}
	return best, true
}
