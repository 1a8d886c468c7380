package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/user/moviebot/internal/model"
)

// MovieStore 内存版电影库，标题匹配规则与 ILIKE '%x%' 一致
type MovieStore struct {
	mu     sync.Mutex
	movies []model.Movie

	// Err 非空时所有查询都返回该错误
	Err error

	TrendingCalls int
}

func NewMovieStore(movies ...model.Movie) *MovieStore {
	return &MovieStore{movies: movies}
}

// Movie 构造测试用电影，year 为 0 时没有上映日期
func Movie(id int64, title string, year int) model.Movie {
	m := model.Movie{ID: id, Title: title, Overview: title + " overview"}
	if year > 0 {
		d := time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
		m.ReleaseDate = &d
	}
	return m
}

// Rated 设置评分和投票数
func Rated(m model.Movie, avg float64, votes int) model.Movie {
	m.VoteAverage = &avg
	m.VoteCount = &votes
	return m
}

func (s *MovieStore) Add(movies ...model.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = append(s.movies, movies...)
}

func (s *MovieStore) FindIDByTitle(_ context.Context, title string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, false, s.Err
	}
	needle := strings.ToLower(title)
	for _, m := range s.movies {
		if strings.Contains(strings.ToLower(m.Title), needle) {
			return m.ID, true, nil
		}
	}
	return 0, false, nil
}

func (s *MovieStore) FindByID(_ context.Context, id int64) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.movies {
		if s.movies[i].ID == id {
			m := s.movies[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (s *MovieStore) Trending(_ context.Context, minRating float64, minVotes, limit int) ([]model.TrendingMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TrendingCalls++
	if s.Err != nil {
		return nil, s.Err
	}

	var rows []model.TrendingMovie
	for _, m := range s.movies {
		if m.VoteAverage == nil || m.VoteCount == nil {
			continue
		}
		if *m.VoteAverage > minRating && *m.VoteCount > minVotes {
			rows = append(rows, model.TrendingMovie{
				Title:       m.Title,
				ReleaseDate: m.ReleaseDate,
				VoteAverage: *m.VoteAverage,
				VoteCount:   *m.VoteCount,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].VoteAverage != rows[j].VoteAverage {
			return rows[i].VoteAverage > rows[j].VoteAverage
		}
		return rows[i].VoteCount > rows[j].VoteCount
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *MovieStore) ListIndexable(_ context.Context, minVotes, limit int) ([]model.IndexableMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	var picked []model.Movie
	for _, m := range s.movies {
		if strings.TrimSpace(m.Overview) == "" {
			continue
		}
		// 与 SQL 一致：vote_count 为 NULL 时比较结果不为真
		if m.VoteCount == nil || *m.VoteCount <= minVotes {
			continue
		}
		picked = append(picked, m)
	}
	sort.SliceStable(picked, func(i, j int) bool { return *picked[i].VoteCount > *picked[j].VoteCount })
	if limit > 0 && len(picked) > limit {
		picked = picked[:limit]
	}
	rows := make([]model.IndexableMovie, 0, len(picked))
	for _, m := range picked {
		rows = append(rows, model.IndexableMovie{ID: m.ID, Title: m.Title, Overview: m.Overview, ReleaseDate: m.ReleaseDate})
	}
	return rows, nil
}

func (s *MovieStore) MaxID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, s.Err
	}
	var maxID int64
	for _, m := range s.movies {
		maxID = max(maxID, m.ID)
	}
	return maxID, nil
}

// InsertBatch 已存在的 ID 忽略
func (s *MovieStore) InsertBatch(_ context.Context, movies []model.Movie) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, s.Err
	}
	existing := make(map[int64]bool, len(s.movies))
	for _, m := range s.movies {
		existing[m.ID] = true
	}
	var n int64
	for _, m := range movies {
		if existing[m.ID] {
			continue
		}
		existing[m.ID] = true
		s.movies = append(s.movies, m)
		n++
	}
	return n, nil
}

// All 当前所有电影
func (s *MovieStore) All() []model.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Movie(nil), s.movies...)
}
