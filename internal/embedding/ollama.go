package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/moviebot/internal/utils"
)

const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "nomic-embed-text"
)

// OllamaConfig Ollama 配置
type OllamaConfig struct {
	Host  string
	Model string
	// Dimensions 大于 0 时校验返回的向量维度
	Dimensions int
	Timeout    time.Duration
}

// ollamaRequest Ollama embedding API 请求结构
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaResponse Ollama embedding API 响应结构
type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Ollama 调用本地 Ollama 的 /api/embeddings 生成向量
type Ollama struct {
	host   string
	model  string
	dims   int
	client *utils.HTTPClient
}

func NewOllama(cfg OllamaConfig) *Ollama {
	host := strings.TrimRight(cfg.Host, "/")
	if host == "" {
		host = DefaultOllamaHost
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	return &Ollama{
		host:   host,
		model:  model,
		dims:   cfg.Dimensions,
		client: utils.NewHTTPClient(cfg.Timeout),
	}
}

// Embed 生成单条文本的向量
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var result ollamaResponse
	err := o.client.PostJSON(ctx, o.host+"/api/embeddings", nil, ollamaRequest{
		Model:  o.model,
		Prompt: text,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", ErrEmbedding, err)
	}

	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("%w: ollama 返回了空向量", ErrEmbedding)
	}
	if o.dims > 0 && len(result.Embedding) != o.dims {
		return nil, fmt.Errorf("%w: 向量维度不匹配: 期望 %d, 实际 %d", ErrEmbedding, o.dims, len(result.Embedding))
	}

	return result.Embedding, nil
}

func (o *Ollama) Close() error {
	return nil
}
