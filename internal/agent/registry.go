// Package agent 工具注册表和对话循环
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/user/moviebot/internal/llm"
	"github.com/user/moviebot/internal/metrics"
	"github.com/user/moviebot/internal/service"
)

var (
	ErrUnknownTool   = errors.New("unknown tool")
	ErrDuplicateTool = errors.New("tool already registered")
)

// Handler 工具实现，只接收一个字符串参数，失败也用 Result 表达
type Handler func(ctx context.Context, arg string) service.Result

// Tool 一个可被模型调用的工具
type Tool struct {
	Name        string
	Description string
	// Param 唯一参数的名字
	Param            string
	ParamDescription string
	// Optional 参数可以省略
	Optional bool
	Handler  Handler
}

// Registry 按注册顺序保存工具
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	order  []string
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{tools: make(map[string]*Tool), logger: logger}
}

func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
	}
	r.tools[t.Name] = &t
	r.order = append(r.order, t.Name)
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return Tool{}, false
	}
	return *t, true
}

func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.tools[name])
	}
	return out
}

// Invoke 执行工具；只有工具不存在时返回 error，panic 会被转成基础设施错误
func (r *Registry) Invoke(ctx context.Context, name, arg string) (res service.Result, err error) {
	t, ok := r.Get(name)
	if !ok {
		return service.Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("工具执行 panic", "tool", name, "panic", p)
			perr := fmt.Errorf("panic: %v", p)
			res = service.Result{Kind: service.KindInfrastructure, Message: "Tool error: " + perr.Error(), Err: perr}
		}
		metrics.RecordToolCall(name, string(res.Kind), time.Since(start))
		r.logger.Debug("工具调用", "tool", name, "kind", res.Kind, "duration", time.Since(start))
	}()

	return t.Handler(ctx, arg), nil
}

// Call 执行工具并渲染成文本，从不返回 error
func (r *Registry) Call(ctx context.Context, name, arg string) string {
	res, err := r.Invoke(ctx, name, arg)
	if err != nil {
		return fmt.Sprintf("Unknown tool: %s", name)
	}
	return res.String()
}

// Definitions 生成给模型的函数声明
func (r *Registry) Definitions() []llm.ToolDefinition {
	tools := r.List()
	defs := make([]llm.ToolDefinition, len(tools))
	for i, t := range tools {
		params := map[string]any{
			"type": "object",
			"properties": map[string]any{
				t.Param: map[string]any{"type": "string", "description": t.ParamDescription},
			},
		}
		if !t.Optional {
			params["required"] = []string{t.Param}
		}
		defs[i] = llm.ToolDefinition{Name: t.Name, Description: t.Description, Parameters: params}
	}
	return defs
}
