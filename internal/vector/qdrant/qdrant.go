// Package qdrant 基于 Qdrant gRPC 客户端的向量库实现
package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/user/moviebot/internal/vector"
)

// Config Qdrant 连接配置
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Dimensions int
}

// Store Qdrant 向量库
type Store struct {
	client *qc.Client
	dims   int
	logger *slog.Logger
}

// New 建立 gRPC 连接
func New(c Config, logger *slog.Logger) (*Store, error) {
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant: dimensions must be positive, got %d", c.Dimensions)
	}
	client, err := qc.NewClient(&qc.Config{
		Host:   c.Host,
		Port:   c.Port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant: %v", vector.ErrConnection, err)
	}
	return &Store{client: client, dims: c.Dimensions, logger: logger}, nil
}

// Collection 集合不存在时按余弦距离创建
func (s *Store) Collection(ctx context.Context, name string) (vector.Collection, error) {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant collection %q: %v", vector.ErrConnection, name, err)
	}
	c := &Collection{store: s, name: name}
	if !exists {
		if err := c.create(ctx); err != nil {
			return nil, err
		}
		s.logger.Info("创建 Qdrant 集合", "collection", name, "dims", s.dims)
	}
	return c, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Collection Qdrant 集合
type Collection struct {
	store *Store
	name  string
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) create(ctx context.Context) error {
	err := c.store.client.CreateCollection(ctx, &qc.CreateCollection{
		CollectionName: c.name,
		VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
			Size:     uint64(c.store.dims),
			Distance: qc.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: create qdrant collection %q: %v", vector.ErrConnection, c.name, err)
	}
	return nil
}

// pointID Qdrant 只接受整数或 UUID，用文档 ID 派生固定的 UUID
func pointID(docID string) *qc.PointId {
	return qc.NewID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID)).String())
}

func (c *Collection) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qc.PointStruct, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) != c.store.dims {
			return fmt.Errorf("%w: collection %s expects %d, got %d", vector.ErrDimensionMismatch, c.name, c.store.dims, len(doc.Embedding))
		}
		points = append(points, &qc.PointStruct{
			Id:      pointID(doc.ID),
			Vectors: qc.NewVectors(doc.Embedding...),
			Payload: qc.NewValueMap(map[string]any{
				"doc_id":   doc.ID,
				"movie_id": doc.Payload.MovieID,
				"title":    doc.Payload.Title,
				"year":     doc.Payload.Year,
				"text":     doc.Text,
			}),
		})
	}

	wait := true
	_, err := c.store.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: c.name,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", c.name, err)
	}
	return nil
}

func (c *Collection) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pids := make([]*qc.PointId, len(ids))
	for i, id := range ids {
		pids[i] = pointID(id)
	}

	points, err := c.store.client.Get(ctx, &qc.GetPoints{
		CollectionName: c.name,
		Ids:            pids,
		WithPayload:    qc.NewWithPayload(true),
		WithVectors:    qc.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get from %s: %w", c.name, err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, toDocument(p.GetPayload(), p.GetVectors()))
	}
	return docs, nil
}

func (c *Collection) Query(ctx context.Context, embedding []float32, topK int, filter *vector.Filter) ([]vector.Hit, error) {
	if topK <= 0 {
		return nil, nil
	}

	limit := uint64(topK)
	req := &qc.QueryPoints{
		CollectionName: c.name,
		Query:          qc.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qc.NewWithPayload(true),
	}
	if filter != nil && len(filter.MovieIDNotIn) > 0 {
		req.Filter = &qc.Filter{
			MustNot: []*qc.Condition{qc.NewMatchKeywords("movie_id", filter.MovieIDNotIn...)},
		}
	}

	points, err := c.store.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.name, err)
	}

	hits := make([]vector.Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, vector.Hit{
			Document: toDocument(p.GetPayload(), nil),
			// 余弦相似度转成距离
			Distance: 1 - p.GetScore(),
		})
	}
	return hits, nil
}

func (c *Collection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pids := make([]*qc.PointId, len(ids))
	for i, id := range ids {
		pids[i] = pointID(id)
	}

	_, err := c.store.client.Delete(ctx, &qc.DeletePoints{
		CollectionName: c.name,
		Points:         qc.NewPointsSelector(pids...),
	})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.name, err)
	}
	return nil
}

// Truncate 删除后重建集合
func (c *Collection) Truncate(ctx context.Context) error {
	if err := c.store.client.DeleteCollection(ctx, c.name); err != nil {
		return fmt.Errorf("drop %s: %w", c.name, err)
	}
	return c.create(ctx)
}

func toDocument(payload map[string]*qc.Value, vectors *qc.VectorsOutput) vector.Document {
	doc := vector.Document{
		ID:   payload["doc_id"].GetStringValue(),
		Text: payload["text"].GetStringValue(),
		Payload: vector.Payload{
			MovieID: payload["movie_id"].GetStringValue(),
			Title:   payload["title"].GetStringValue(),
			Year:    payload["year"].GetStringValue(),
		},
	}
	doc.Embedding = denseVector(vectors)
	return doc
}

// denseVector 新版服务端只填 dense 字段，旧版只填已废弃的 data 字段
func denseVector(vectors *qc.VectorsOutput) []float32 {
	v := vectors.GetVector()
	if v == nil {
		return nil
	}
	if dense := v.GetDense(); dense != nil {
		return dense.GetData()
	}
	return v.GetData()
}
