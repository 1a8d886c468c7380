package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/user/moviebot/internal/metrics"
	"github.com/user/moviebot/internal/vector"
)

const (
	recommendCandidates = 6
	recommendLimit      = 3
)

// Recommender 根据喜欢的电影，用简介向量的质心找相似电影
type Recommender struct {
	movies    MovieStore
	overviews vector.Collection
	logger    *slog.Logger
}

func NewRecommender(movies MovieStore, overviews vector.Collection, logger *slog.Logger) *Recommender {
	return &Recommender{movies: movies, overviews: overviews, logger: logger}
}

// Recommend likedTitles 为逗号分隔的片名片段
func (r *Recommender) Recommend(ctx context.Context, likedTitles string) Result {
	titles := ParseTitles(likedTitles)
	if len(titles) == 0 {
		return failure(KindInputEmpty, MsgNoLikedTitles)
	}

	liked, err := r.resolveTitles(ctx, titles)
	if err != nil {
		r.logger.Error("解析片名失败", "titles", titles, "error", err)
		return infraFailure(prefixRecommendError, err)
	}
	if len(liked) == 0 {
		return failure(KindNotFound, MsgLikedNotFound)
	}

	docIDs := make([]string, len(liked))
	for i, id := range liked {
		docIDs[i] = vector.DocumentID(vector.KindOverview, id)
	}
	docs, err := r.overviews.Get(ctx, docIDs)
	if err != nil {
		r.logger.Error("读取简介向量失败", "ids", docIDs, "error", err)
		return infraFailure(prefixRecommendError, err)
	}

	vectors := make([][]float32, 0, len(docs))
	for _, d := range docs {
		if len(d.Embedding) > 0 {
			vectors = append(vectors, d.Embedding)
		}
	}
	if len(vectors) == 0 {
		return failure(KindNoData, MsgNoOverviewData)
	}

	centroid, err := Centroid(vectors)
	if err != nil {
		return infraFailure(prefixRecommendError, err)
	}

	start := time.Now()
	hits, err := r.overviews.Query(ctx, centroid, recommendCandidates, &vector.Filter{MovieIDNotIn: liked})
	metrics.RecordVectorQuery(r.overviews.Name(), time.Since(start))
	if err != nil {
		r.logger.Error("向量检索失败", "error", err)
		return infraFailure(prefixRecommendError, err)
	}

	// 后端未必支持排除过滤，这里再过滤一遍
	exclude := make(map[string]struct{}, len(liked))
	for _, id := range liked {
		exclude[id] = struct{}{}
	}

	lines := make([]string, 0, recommendLimit)
	taken := 0
	for _, hit := range hits {
		if taken == recommendLimit {
			break
		}
		movieID := hit.MovieID()
		if _, skip := exclude[movieID]; skip || movieID == "" {
			continue
		}
		taken++

		line, ok := r.describe(ctx, movieID)
		if !ok {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return failure(KindNotFound, MsgNoRecommendations)
	}
	return success(HeaderRecommendations, lines...)
}

// resolveTitles 每个片段取第一条匹配，按发现顺序返回字符串形式的 ID
func (r *Recommender) resolveTitles(ctx context.Context, titles []string) ([]string, error) {
	seen := make(map[int64]bool, len(titles))
	ids := make([]string, 0, len(titles))
	for _, t := range titles {
		id, ok, err := r.movies.FindIDByTitle(ctx, t)
		if err != nil {
			return nil, err
		}
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return ids, nil
}

// describe 回查关系库，查不到或出错时跳过该条
func (r *Recommender) describe(ctx context.Context, movieID string) (string, bool) {
	id, err := strconv.ParseInt(movieID, 10, 64)
	if err != nil {
		r.logger.Warn("向量文档的 movie_id 非法", "movie_id", movieID)
		return "", false
	}
	movie, err := r.movies.FindByID(ctx, id)
	if err != nil {
		r.logger.Warn("回查电影失败", "movie_id", id, "error", err)
		return "", false
	}
	if movie == nil {
		r.logger.Warn("向量库中的电影在关系库中不存在", "movie_id", id)
		return "", false
	}
	return formatBullet(movie.Title, movie.Year()), true
}
