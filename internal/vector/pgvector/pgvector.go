// Package pgvector 基于 PostgreSQL + pgvector 扩展的向量库实现
package pgvector

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/user/moviebot/internal/vector"
)

const tableName = "movie_vectors"

// row movie_vectors 表的一行，三个集合共用一张表，用 collection 列区分
type row struct {
	Collection string          `gorm:"primaryKey"`
	DocID      string          `gorm:"primaryKey;column:doc_id"`
	MovieID    string          `gorm:"column:movie_id"`
	Title      string          `gorm:"column:title"`
	Year       string          `gorm:"column:year"`
	Content    string          `gorm:"column:content"`
	Embedding  pgvector.Vector `gorm:"column:embedding"`
}

func (row) TableName() string {
	return tableName
}

func (r row) document() vector.Document {
	return vector.Document{
		ID:        r.DocID,
		Embedding: r.Embedding.Slice(),
		Payload:   vector.Payload{MovieID: r.MovieID, Title: r.Title, Year: r.Year},
		Text:      r.Content,
	}
}

type hitRow struct {
	row
	Distance float64 `gorm:"column:distance"`
}

// Store pgvector 向量库，数据库连接由调用方管理
type Store struct {
	db   *gorm.DB
	dims int
}

// New 确保扩展和表存在
func New(ctx context.Context, db *gorm.DB, dims int) (*Store, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("pgvector: dimensions must be positive, got %d", dims)
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			collection TEXT NOT NULL,
			doc_id     TEXT NOT NULL,
			movie_id   TEXT NOT NULL DEFAULT '',
			title      TEXT NOT NULL DEFAULT '',
			year       TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL DEFAULT '',
			embedding  vector(%d) NOT NULL,
			PRIMARY KEY (collection, doc_id)
		)`, tableName, dims),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_movie ON %s (collection, movie_id)", tableName, tableName),
	}
	for _, stmt := range stmts {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("%w: pgvector schema: %v", vector.ErrConnection, err)
		}
	}

	return &Store{db: db, dims: dims}, nil
}

func (s *Store) Collection(_ context.Context, name string) (vector.Collection, error) {
	return &Collection{db: s.db, name: name, dims: s.dims}, nil
}

func (s *Store) Close() error {
	return nil
}

// Collection pgvector 集合
type Collection struct {
	db   *gorm.DB
	name string
	dims int
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	rows := make([]row, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) != c.dims {
			return fmt.Errorf("%w: collection %s expects %d, got %d", vector.ErrDimensionMismatch, c.name, c.dims, len(doc.Embedding))
		}
		rows = append(rows, row{
			Collection: c.name,
			DocID:      doc.ID,
			MovieID:    doc.Payload.MovieID,
			Title:      doc.Payload.Title,
			Year:       doc.Payload.Year,
			Content:    doc.Text,
			Embedding:  pgvector.NewVector(doc.Embedding),
		})
	}

	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"movie_id", "title", "year", "content", "embedding"}),
	}).Create(&rows).Error
}

func (c *Collection) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []row
	err := c.db.WithContext(ctx).
		Where("collection = ? AND doc_id IN ?", c.name, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	docs := make([]vector.Document, len(rows))
	for i, r := range rows {
		docs[i] = r.document()
	}
	return docs, nil
}

func (c *Collection) Query(ctx context.Context, embedding []float32, topK int, filter *vector.Filter) ([]vector.Hit, error) {
	if topK <= 0 {
		return nil, nil
	}
	if len(embedding) != c.dims {
		return nil, fmt.Errorf("%w: collection %s expects %d, got %d", vector.ErrDimensionMismatch, c.name, c.dims, len(embedding))
	}

	q := c.db.WithContext(ctx).Model(&row{}).
		Select("collection, doc_id, movie_id, title, year, content, embedding, embedding <=> ? AS distance", pgvector.NewVector(embedding)).
		Where("collection = ?", c.name)
	if filter != nil && len(filter.MovieIDNotIn) > 0 {
		q = q.Where("movie_id <> ALL(?)", pq.StringArray(filter.MovieIDNotIn))
	}

	var rows []hitRow
	if err := q.Order("distance").Limit(topK).Scan(&rows).Error; err != nil {
		return nil, err
	}

	hits := make([]vector.Hit, len(rows))
	for i, r := range rows {
		hits[i] = vector.Hit{Document: r.document(), Distance: float32(r.Distance)}
	}
	return hits, nil
}

func (c *Collection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).
		Where("collection = ? AND doc_id IN ?", c.name, ids).
		Delete(&row{}).Error
}

func (c *Collection) Truncate(ctx context.Context) error {
	return c.db.WithContext(ctx).
		Where("collection = ?", c.name).
		Delete(&row{}).Error
}
