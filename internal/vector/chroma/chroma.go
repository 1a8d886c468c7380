// Package chroma 通过 Chroma v2 REST API 实现向量库
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/user/moviebot/internal/vector"
)

const collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"

// Config Chroma 连接配置
type Config struct {
	// URL 形如 "http://localhost:8000"
	URL string

	// Timeout 单次请求超时，默认 60 秒
	Timeout time.Duration
}

// Store Chroma 向量库
type Store struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New 创建 Chroma 客户端，不会立即发起请求
func New(c Config, logger *slog.Logger) (*Store, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Store{
		baseURL:    strings.TrimRight(c.URL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Collection 获取或创建集合，新集合使用余弦距离
func (s *Store) Collection(ctx context.Context, name string) (vector.Collection, error) {
	var existing chromaCollection
	status, err := s.do(ctx, http.MethodGet, collectionsPath+"/"+name, nil, &existing)
	if err == nil {
		s.logger.Debug("连接 Chroma 集合", "collection", name, "id", existing.ID)
		return &Collection{store: s, name: name, id: existing.ID}, nil
	}
	if status != http.StatusNotFound && status != http.StatusBadRequest {
		return nil, fmt.Errorf("%w: get collection %q: %v", vector.ErrConnection, name, err)
	}

	var created chromaCollection
	_, err = s.do(ctx, http.MethodPost, collectionsPath, chromaCreateRequest{
		Name:     name,
		Metadata: map[string]any{"hnsw:space": "cosine"},
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("%w: create collection %q: %v", vector.ErrConnection, name, err)
	}

	s.logger.Info("创建 Chroma 集合", "collection", name, "id", created.ID)
	return &Collection{store: s, name: name, id: created.ID}, nil
}

func (s *Store) Close() error {
	return nil
}

// do 发送 JSON 请求，非 2xx 时返回错误和状态码
func (s *Store) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Collection Chroma 集合
type Collection struct {
	store *Store
	name  string
	id    string
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) path(op string) string {
	return collectionsPath + "/" + c.id + "/" + op
}

func (c *Collection) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	req := chromaUpsertRequest{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Metadatas:  make([]map[string]any, len(docs)),
		Documents:  make([]string, len(docs)),
	}
	for i, doc := range docs {
		req.IDs[i] = doc.ID
		req.Embeddings[i] = doc.Embedding
		req.Metadatas[i] = toMetadata(doc.Payload)
		req.Documents[i] = doc.Text
	}

	if _, err := c.store.do(ctx, http.MethodPost, c.path("upsert"), req, nil); err != nil {
		return fmt.Errorf("upsert into %s: %w", c.name, err)
	}

	c.store.logger.Debug("写入 Chroma", "collection", c.name, "count", len(docs))
	return nil
}

func (c *Collection) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var resp chromaGetResponse
	_, err := c.store.do(ctx, http.MethodPost, c.path("get"), chromaGetRequest{
		IDs:     ids,
		Include: []string{"embeddings", "metadatas", "documents"},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("get from %s: %w", c.name, err)
	}

	docs := make([]vector.Document, len(resp.IDs))
	for i, id := range resp.IDs {
		docs[i] = vector.Document{ID: id}
		if i < len(resp.Embeddings) {
			docs[i].Embedding = resp.Embeddings[i]
		}
		if i < len(resp.Metadatas) {
			docs[i].Payload = fromMetadata(resp.Metadatas[i])
		}
		if i < len(resp.Documents) {
			docs[i].Text = resp.Documents[i]
		}
	}
	return docs, nil
}

func (c *Collection) Query(ctx context.Context, embedding []float32, topK int, filter *vector.Filter) ([]vector.Hit, error) {
	if topK <= 0 {
		return nil, nil
	}

	req := chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"metadatas", "documents", "distances"},
	}
	if filter != nil && len(filter.MovieIDNotIn) > 0 {
		req.Where = map[string]any{"movie_id": map[string]any{"$nin": filter.MovieIDNotIn}}
	}

	var resp chromaQueryResponse
	if _, err := c.store.do(ctx, http.MethodPost, c.path("query"), req, &resp); err != nil {
		return nil, fmt.Errorf("query %s: %w", c.name, err)
	}

	// 只查询了一个向量，取第一组结果
	if len(resp.IDs) == 0 {
		return nil, nil
	}
	ids := resp.IDs[0]
	hits := make([]vector.Hit, len(ids))
	for i, id := range ids {
		hits[i].ID = id
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			hits[i].Distance = resp.Distances[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hits[i].Payload = fromMetadata(resp.Metadatas[0][i])
		}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hits[i].Text = resp.Documents[0][i]
		}
	}

	c.store.logger.Debug("查询 Chroma", "collection", c.name, "results", len(hits))
	return hits, nil
}

func (c *Collection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := c.store.do(ctx, http.MethodPost, c.path("delete"), chromaDeleteRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("delete from %s: %w", c.name, err)
	}
	return nil
}

// Truncate 先列出全部 ID 再删除
func (c *Collection) Truncate(ctx context.Context) error {
	var resp chromaGetResponse
	if _, err := c.store.do(ctx, http.MethodPost, c.path("get"), chromaGetRequest{Include: []string{}}, &resp); err != nil {
		return fmt.Errorf("list %s: %w", c.name, err)
	}
	return c.Delete(ctx, resp.IDs)
}

// toMetadata 空 payload 返回 nil，Chroma 不接受空的元数据对象
func toMetadata(p vector.Payload) map[string]any {
	m := map[string]any{}
	if p.MovieID != "" {
		m["movie_id"] = p.MovieID
	}
	if p.Title != "" {
		m["title"] = p.Title
	}
	if p.Year != "" {
		m["year"] = p.Year
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func fromMetadata(m map[string]any) vector.Payload {
	var p vector.Payload
	p.MovieID = metaString(m["movie_id"])
	p.Title = metaString(m["title"])
	p.Year = metaString(m["year"])
	return p
}

// metaString 兼容数字类型的元数据
func metaString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
