// Package metrics Prometheus 指标，通过 /metrics 暴露
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviebot_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// 工具调用，kind 为结果类型（success、not_found 等）
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebot_tool_calls_total",
			Help: "Total number of tool invocations by outcome",
		},
		[]string{"tool", "kind"},
	)

	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviebot_tool_duration_seconds",
			Help:    "Tool invocation latency in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"tool"},
	)

	// Embedding
	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviebot_embedding_cache_hits_total",
			Help: "Total number of embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviebot_embedding_cache_misses_total",
			Help: "Total number of embedding cache misses",
		},
	)

	EmbeddingErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviebot_embedding_errors_total",
			Help: "Total number of failed embedding requests",
		},
	)

	// 向量检索
	VectorQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviebot_vector_query_duration_seconds",
			Help:    "Vector store query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	// Agent
	AgentSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviebot_agent_steps",
			Help:    "Number of model round trips per chat turn",
			Buckets: []float64{1, 2, 3, 4, 5, 8, 13},
		},
	)

	AgentErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviebot_agent_errors_total",
			Help: "Total number of failed chat turns",
		},
	)

	// 离线索引
	IndexedDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebot_indexed_documents_total",
			Help: "Total number of documents written to the vector store",
		},
		[]string{"collection"},
	)

	IndexFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviebot_index_failures_total",
			Help: "Total number of movies that failed to index",
		},
	)
)

// RecordHTTPRequest 记录一次 HTTP 请求
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordToolCall 记录一次工具调用
func RecordToolCall(tool, kind string, duration time.Duration) {
	ToolCalls.WithLabelValues(tool, kind).Inc()
	ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordEmbeddingCache 记录缓存命中情况
func RecordEmbeddingCache(hit bool) {
	if hit {
		EmbeddingCacheHits.Inc()
		return
	}
	EmbeddingCacheMisses.Inc()
}

// RecordVectorQuery 记录一次向量检索
func RecordVectorQuery(collection string, duration time.Duration) {
	VectorQueryDuration.WithLabelValues(collection).Observe(duration.Seconds())
}

// RecordAgentTurn 记录一轮对话用了多少步，失败时计入错误
func RecordAgentTurn(steps int, err error) {
	AgentSteps.Observe(float64(steps))
	if err != nil {
		AgentErrors.Inc()
	}
}
