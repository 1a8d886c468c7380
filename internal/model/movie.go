package model

import "time"

// Movie 电影目录（TMDB 字段，人员信息已扁平化为逗号分隔的字符串）
type Movie struct {
	ID                    int64      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title                 string     `json:"title"`
	VoteAverage           *float64   `json:"vote_average" gorm:"index"`
	VoteCount             *int       `json:"vote_count" gorm:"index"`
	Status                string     `json:"status"`
	ReleaseDate           *time.Time `json:"release_date" gorm:"type:date"`
	Revenue               int64      `json:"revenue"`
	Runtime               int        `json:"runtime"`
	Budget                int64      `json:"budget"`
	IMDbID                string     `json:"imdb_id" gorm:"column:imdb_id"`
	OriginalLanguage      string     `json:"original_language"`
	OriginalTitle         string     `json:"original_title"`
	Overview              string     `json:"overview"`
	Popularity            float64    `json:"popularity"`
	Tagline               string     `json:"tagline"`
	Genres                string     `json:"genres"`
	ProductionCompanies   string     `json:"production_companies"`
	ProductionCountries   string     `json:"production_countries"`
	SpokenLanguages       string     `json:"spoken_languages"`
	Cast                  string     `json:"cast"`
	Director              string     `json:"director"`
	DirectorOfPhotography string     `json:"director_of_photography"`
	Writers               string     `json:"writers"`
	Producers             string     `json:"producers"`
	MusicComposer         string     `json:"music_composer"`
	IMDbRating            float64    `json:"imdb_rating" gorm:"column:imdb_rating"`
	IMDbVotes             int        `json:"imdb_votes" gorm:"column:imdb_votes"`
	PosterPath            string     `json:"poster_path"`
}

// TableName 沿用原有的 movies 表
func (Movie) TableName() string {
	return "movies"
}

// Year 上映年份，缺失时为空
func (m *Movie) Year() string {
	return yearOf(m.ReleaseDate)
}

// TrendingMovie 热门榜单的一行
type TrendingMovie struct {
	Title       string     `json:"title"`
	ReleaseDate *time.Time `json:"release_date"`
	VoteAverage float64    `json:"vote_average"`
	VoteCount   int        `json:"vote_count"`
}

func (m *TrendingMovie) Year() string {
	return yearOf(m.ReleaseDate)
}

// IndexableMovie 需要写入向量库的电影
type IndexableMovie struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Overview    string     `json:"overview"`
	ReleaseDate *time.Time `json:"release_date"`
}

func (m *IndexableMovie) Year() string {
	return yearOf(m.ReleaseDate)
}

func yearOf(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006")
}
