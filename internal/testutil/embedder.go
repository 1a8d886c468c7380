// Package testutil 测试用的内存实现
package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockEmbedder 返回预置的向量，未预置的文本返回 Default
type MockEmbedder struct {
	mu         sync.Mutex
	Embeddings map[string][]float32
	Default    []float32

	// FailOn 输入等于该文本时返回错误
	FailOn string
	// Err 非空时所有调用都返回该错误
	Err error

	calls map[string]int
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Default:    []float32{0.1, 0.2, 0.3},
		calls:      make(map[string]int),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[text]++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}
	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}
	return m.Default, nil
}

// Calls 某段文本被向量化的次数
func (m *MockEmbedder) Calls(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[text]
}

func (m *MockEmbedder) Close() error {
	return nil
}
