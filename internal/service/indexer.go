package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/user/moviebot/internal/embedding"
	"github.com/user/moviebot/internal/metrics"
	"github.com/user/moviebot/internal/model"
	"github.com/user/moviebot/internal/vector"
)

// IndexOptions 离线索引参数
type IndexOptions struct {
	MinVotes int
	Limit    int
	Workers  int
}

// DefaultIndexOptions 简介非空、投票数超过 50 的前 10000 部电影
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{MinVotes: 50, Limit: 10000, Workers: 4}
}

// IndexReport 索引结果统计
type IndexReport struct {
	Movies  int `json:"movies"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

// Indexer 清空三个集合后按电影重新写入向量文档
type Indexer struct {
	source   IndexSource
	embedder embedding.Embedder
	cols     *vector.Collections
	logger   *slog.Logger
}

func NewIndexer(source IndexSource, embedder embedding.Embedder, cols *vector.Collections, logger *slog.Logger) *Indexer {
	return &Indexer{source: source, embedder: embedder, cols: cols, logger: logger}
}

// Run 单部电影失败只记录，不中断整体
func (ix *Indexer) Run(ctx context.Context, opts IndexOptions) (*IndexReport, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	movies, err := ix.source.ListIndexable(ctx, opts.MinVotes, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	report := &IndexReport{Movies: len(movies)}
	if len(movies) == 0 {
		ix.logger.Warn("没有可索引的电影")
		return report, nil
	}

	ix.logger.Info("清空向量集合")
	for _, k := range vector.Kinds() {
		if err := ix.cols.ByKind(k).Truncate(ctx); err != nil {
			return nil, fmt.Errorf("truncate %s: %w", k.Collection(), err)
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range movies {
		m := movies[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			err := ix.indexMovie(gctx, &m)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				metrics.IndexFailures.Inc()
				ix.logger.Warn("索引电影失败", "movie_id", m.ID, "title", m.Title, "error", err)
				return nil
			}
			report.Indexed++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	ix.logger.Info("索引完成", "movies", report.Movies, "indexed", report.Indexed, "failed", report.Failed)
	return report, nil
}

// indexMovie 生成 overview、quote、meta 三个文档
func (ix *Indexer) indexMovie(ctx context.Context, m *model.IndexableMovie) error {
	for _, doc := range BuildDocuments(m) {
		emb, err := ix.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return err
		}
		doc.Document.Embedding = emb

		coll := ix.cols.ByKind(doc.Kind)
		if err := coll.Upsert(ctx, []vector.Document{doc.Document}); err != nil {
			return fmt.Errorf("upsert %s: %w", doc.ID, err)
		}
		metrics.IndexedDocuments.WithLabelValues(coll.Name()).Inc()
	}
	return nil
}

// KindDocument 带类型的待写入文档
type KindDocument struct {
	Kind vector.Kind
	vector.Document
}

// BuildDocuments 生成一部电影的三个文档（不含向量）。
// quote 集合没有真实台词数据，用片名拼出占位文本。
func BuildDocuments(m *model.IndexableMovie) []KindDocument {
	mid := strconv.FormatInt(m.ID, 10)
	year := YearOrNA(m.Year())
	meta := vector.Payload{MovieID: mid, Title: m.Title, Year: year}

	return []KindDocument{
		{Kind: vector.KindOverview, Document: vector.Document{
			ID:      vector.DocumentID(vector.KindOverview, mid),
			Payload: meta,
			Text:    strings.TrimSpace(m.Overview),
		}},
		{Kind: vector.KindQuote, Document: vector.Document{
			ID:      vector.DocumentID(vector.KindQuote, mid),
			Payload: vector.Payload{MovieID: mid},
			Text:    fmt.Sprintf("Famous line from %s...", m.Title),
		}},
		{Kind: vector.KindMeta, Document: vector.Document{
			ID:      vector.DocumentID(vector.KindMeta, mid),
			Payload: meta,
			Text:    m.Title + " " + year,
		}},
	}
}
