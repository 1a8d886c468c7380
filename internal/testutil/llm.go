package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/user/moviebot/internal/llm"
)

// FakeProvider 按顺序返回预置的回复，并记录每次请求
type FakeProvider struct {
	mu        sync.Mutex
	Responses []*llm.ChatResponse
	Err       error
	Requests  []*llm.ChatRequest
}

func NewFakeProvider(responses ...*llm.ChatResponse) *FakeProvider {
	return &FakeProvider{Responses: responses}
}

func (p *FakeProvider) Name() string {
	return "fake"
}

func (p *FakeProvider) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := *req
	snapshot.Messages = append([]llm.Message(nil), req.Messages...)
	p.Requests = append(p.Requests, &snapshot)

	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.Responses) == 0 {
		return nil, errors.New("fake provider: no more responses")
	}
	resp := p.Responses[0]
	p.Responses = p.Responses[1:]
	return resp, nil
}

// Text 纯文本回复
func Text(content string) *llm.ChatResponse {
	return &llm.ChatResponse{Content: content, StopReason: llm.StopReasonEnd}
}

// CallTool 请求调用一个工具
func CallTool(name string, args map[string]any) *llm.ChatResponse {
	return &llm.ChatResponse{
		ToolCalls:  []llm.ToolCall{{ID: "call_" + name, Name: name, Arguments: args}},
		StopReason: llm.StopReasonToolCall,
	}
}
