package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/user/moviebot/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// FindIDByTitle 按标题模糊匹配（不区分大小写），返回第一条命中的 ID
func (r *MovieRepository) FindIDByTitle(ctx context.Context, title string) (int64, bool, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Movie{}).
		Where("title ILIKE ?", "%"+escapeLike(title)+"%").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// FindByID 根据 ID 查找电影，不存在时返回 nil, nil
func (r *MovieRepository) FindByID(ctx context.Context, id int64) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.WithContext(ctx).
		Select("id", "title", "release_date", "vote_average", "vote_count", "overview").
		Where("id = ?", id).
		First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// Trending 评分和投票数都超过阈值的电影，按评分、投票数降序
func (r *MovieRepository) Trending(ctx context.Context, minRating float64, minVotes, limit int) ([]model.TrendingMovie, error) {
	var movies []model.TrendingMovie
	err := r.db.WithContext(ctx).Model(&model.Movie{}).
		Select("title", "release_date", "vote_average", "vote_count").
		Where("vote_average > ? AND vote_count > ?", minRating, minVotes).
		Order("vote_average DESC, vote_count DESC").
		Limit(limit).
		Scan(&movies).Error
	return movies, err
}

// ListIndexable 有简介且投票数足够的电影，按投票数降序
func (r *MovieRepository) ListIndexable(ctx context.Context, minVotes, limit int) ([]model.IndexableMovie, error) {
	var movies []model.IndexableMovie
	err := r.db.WithContext(ctx).Model(&model.Movie{}).
		Select("id", "title", "overview", "release_date").
		Where("overview IS NOT NULL AND overview <> '' AND vote_count > ?", minVotes).
		Order("vote_count DESC").
		Limit(limit).
		Scan(&movies).Error
	return movies, err
}

// MaxID 当前最大的电影 ID，空表返回 0
func (r *MovieRepository) MaxID(ctx context.Context) (int64, error) {
	var maxID sql.NullInt64
	err := r.db.WithContext(ctx).Model(&model.Movie{}).
		Select("MAX(id)").
		Row().
		Scan(&maxID)
	if err != nil {
		return 0, err
	}
	return maxID.Int64, nil
}

// InsertBatch 批量写入，已存在的 ID 忽略；返回实际写入的行数
func (r *MovieRepository) InsertBatch(ctx context.Context, movies []model.Movie) (int64, error) {
	if len(movies) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		CreateInBatches(movies, 100)
	return result.RowsAffected, result.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 转义 LIKE 通配符，标题按字面匹配
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
