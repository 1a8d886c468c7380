package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/user/moviebot/internal/model"
	"github.com/user/moviebot/internal/utils"
)

// ErrMovieNotFound TMDB 上没有该 ID
var ErrMovieNotFound = errors.New("tmdb: movie not found")

// CrawlStore 抓取写入关系库用到的操作
type CrawlStore interface {
	MaxID(ctx context.Context) (int64, error)
	InsertBatch(ctx context.Context, movies []model.Movie) (int64, error)
}

// CrawlOptions 增量抓取参数
type CrawlOptions struct {
	// StartID 为 0 时从库中最大 ID + 1 开始
	StartID int64
	// MaxMisses 连续多少个 404 后停止
	MaxMisses int
	BatchSize int
	Delay     time.Duration
	// MaxMovies 大于 0 时抓到这么多部就停止
	MaxMovies int
}

// DefaultCrawlOptions 连续 5 个 404 停止，每 100 部写一次库，请求间隔 100ms
func DefaultCrawlOptions() CrawlOptions {
	return CrawlOptions{MaxMisses: 5, BatchSize: 100, Delay: 100 * time.Millisecond}
}

// CrawlReport 抓取结果
type CrawlReport struct {
	StartID  int64 `json:"start_id"`
	LastID   int64 `json:"last_id"`
	Found    int   `json:"found"`
	Inserted int64 `json:"inserted"`
	Misses   int   `json:"misses"`
}

type TMDBService struct {
	store   CrawlStore
	client  *utils.HTTPClient
	baseURL string
	token   string
	logger  *slog.Logger
	group   singleflight.Group
}

func NewTMDBService(store CrawlStore, baseURL, token string, logger *slog.Logger) *TMDBService {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &TMDBService{
		store:   store,
		client:  utils.NewHTTPClient(30 * time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
	}
}

// FetchMovie 拉取单部电影详情（含演职员），并发请求同一 ID 只发一次
func (s *TMDBService) FetchMovie(ctx context.Context, id int64) (*model.Movie, error) {
	val, err, _ := s.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		var details tmdbMovieResponse
		url := fmt.Sprintf("%s/movie/%d?append_to_response=credits", s.baseURL, id)
		err := s.client.GetJSON(ctx, url, map[string]string{"Authorization": "Bearer " + s.token}, &details)
		if utils.IsStatus(err, http.StatusNotFound) {
			return nil, ErrMovieNotFound
		}
		if err != nil {
			return nil, err
		}
		if details.ID == 0 {
			return nil, ErrMovieNotFound
		}
		return details.toMovie(), nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*model.Movie), nil
}

// Crawl 从起始 ID 逐个递增抓取，遇到非 404 错误立即停止
func (s *TMDBService) Crawl(ctx context.Context, opts CrawlOptions) (*CrawlReport, error) {
	if opts.MaxMisses <= 0 {
		opts.MaxMisses = 5
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}

	current := opts.StartID
	if current <= 0 {
		maxID, err := s.store.MaxID(ctx)
		if err != nil {
			return nil, fmt.Errorf("获取最大 ID 失败: %w", err)
		}
		current = maxID + 1
	}

	report := &CrawlReport{StartID: current}
	batch := make([]model.Movie, 0, opts.BatchSize)

	// 取消后仍要把已抓到的写进库
	writeCtx := context.WithoutCancel(ctx)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.store.InsertBatch(writeCtx, batch)
		if err != nil {
			return fmt.Errorf("批量写入失败: %w", err)
		}
		report.Inserted += n
		s.logger.Info("[TMDB] 批量写入", "count", len(batch), "inserted", n)
		batch = batch[:0]
		return nil
	}

	var crawlErr error
	misses := 0
	for misses < opts.MaxMisses {
		if opts.MaxMovies > 0 && report.Found >= opts.MaxMovies {
			break
		}
		if err := ctx.Err(); err != nil {
			crawlErr = err
			break
		}

		movie, err := s.FetchMovie(ctx, current)
		switch {
		case err == nil:
			misses = 0
			report.Found++
			batch = append(batch, *movie)
			if len(batch) >= opts.BatchSize {
				if err := flush(); err != nil {
					return report, err
				}
			}
		case errors.Is(err, ErrMovieNotFound):
			misses++
			s.logger.Debug("[TMDB] 电影不存在", "id", current, "misses", misses)
		default:
			crawlErr = fmt.Errorf("抓取 ID %d 失败: %w", current, err)
		}
		if crawlErr != nil {
			break
		}

		report.LastID = current
		current++

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.Delay):
			}
		}
	}
	report.Misses = misses

	if err := flush(); err != nil {
		return report, err
	}
	return report, crawlErr
}

type tmdbNamed struct {
	Name        string `json:"name"`
	EnglishName string `json:"english_name"`
	Job         string `json:"job"`
}

type tmdbMovieResponse struct {
	ID                  int64       `json:"id"`
	Title               string      `json:"title"`
	VoteAverage         *float64    `json:"vote_average"`
	VoteCount           *int        `json:"vote_count"`
	Status              string      `json:"status"`
	ReleaseDate         string      `json:"release_date"`
	Revenue             int64       `json:"revenue"`
	Runtime             int         `json:"runtime"`
	Budget              int64       `json:"budget"`
	IMDbID              string      `json:"imdb_id"`
	OriginalLanguage    string      `json:"original_language"`
	OriginalTitle       string      `json:"original_title"`
	Overview            string      `json:"overview"`
	Popularity          float64     `json:"popularity"`
	Tagline             string      `json:"tagline"`
	PosterPath          string      `json:"poster_path"`
	Genres              []tmdbNamed `json:"genres"`
	ProductionCompanies []tmdbNamed `json:"production_companies"`
	ProductionCountries []tmdbNamed `json:"production_countries"`
	SpokenLanguages     []tmdbNamed `json:"spoken_languages"`
	Credits             struct {
		Cast []tmdbNamed `json:"cast"`
		Crew []tmdbNamed `json:"crew"`
	} `json:"credits"`
}

func (d *tmdbMovieResponse) toMovie() *model.Movie {
	m := &model.Movie{
		ID:                    d.ID,
		Title:                 d.Title,
		VoteAverage:           d.VoteAverage,
		VoteCount:             d.VoteCount,
		Status:                d.Status,
		Revenue:               d.Revenue,
		Runtime:               d.Runtime,
		Budget:                d.Budget,
		IMDbID:                d.IMDbID,
		OriginalLanguage:      d.OriginalLanguage,
		OriginalTitle:         d.OriginalTitle,
		Overview:              d.Overview,
		Popularity:            d.Popularity,
		Tagline:               d.Tagline,
		PosterPath:            d.PosterPath,
		Genres:                joinNames(d.Genres, 20, false),
		ProductionCompanies:   joinNames(d.ProductionCompanies, 20, false),
		ProductionCountries:   joinNames(d.ProductionCountries, 20, false),
		SpokenLanguages:       joinNames(d.SpokenLanguages, 20, true),
		Cast:                  joinNames(d.Credits.Cast, 30, false),
		Director:              firstCrew(d.Credits.Crew, "Director"),
		DirectorOfPhotography: firstCrew(d.Credits.Crew, "Director of Photography"),
		Writers:               crewByJob(d.Credits.Crew, "Writer", 5),
		Producers:             crewByJob(d.Credits.Crew, "Producer", 5),
		MusicComposer:         firstCrew(d.Credits.Crew, "Original Music Composer"),
	}
	if t, err := time.Parse("2006-01-02", d.ReleaseDate); err == nil {
		m.ReleaseDate = &t
	}
	return m
}

func joinNames(items []tmdbNamed, limit int, english bool) string {
	names := make([]string, 0, min(len(items), limit))
	for _, it := range items {
		if len(names) == limit {
			break
		}
		name := it.Name
		if english {
			name = it.EnglishName
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

func firstCrew(crew []tmdbNamed, job string) string {
	for _, c := range crew {
		if c.Job == job {
			return c.Name
		}
	}
	return ""
}

func crewByJob(crew []tmdbNamed, job string, limit int) string {
	var names []string
	for _, c := range crew {
		if c.Job == job && len(names) < limit {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ", ")
}
