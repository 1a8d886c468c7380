package service

import (
	"context"

	"github.com/user/moviebot/internal/model"
)

// MovieStore 关系库中工具用到的只读查询
type MovieStore interface {
	// FindIDByTitle 标题不区分大小写的子串匹配，只取第一条
	FindIDByTitle(ctx context.Context, title string) (int64, bool, error)

	// FindByID 不存在时返回 nil, nil
	FindByID(ctx context.Context, id int64) (*model.Movie, error)

	Trending(ctx context.Context, minRating float64, minVotes, limit int) ([]model.TrendingMovie, error)
}

// IndexSource 离线索引读取的电影列表
type IndexSource interface {
	ListIndexable(ctx context.Context, minVotes, limit int) ([]model.IndexableMovie, error)
}
