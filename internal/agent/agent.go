package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/user/moviebot/internal/llm"
	"github.com/user/moviebot/internal/metrics"
)

var (
	ErrMaxSteps    = errors.New("agent stopped due to step limit")
	ErrEmptyAnswer = errors.New("model returned an empty answer")
)

// Config 对话循环参数
type Config struct {
	// MaxSteps 一轮对话最多调用几次模型
	MaxSteps     int
	Temperature  float64
	SystemPrompt string
}

// DefaultConfig 最多 5 步，温度 0.5
func DefaultConfig() Config {
	return Config{MaxSteps: 5, Temperature: 0.5, SystemPrompt: SystemPrompt}
}

// Agent 把用户问题交给模型，按模型要求调用工具，直到得到文本回答
type Agent struct {
	provider llm.Provider
	tools    *Registry
	cfg      Config
	logger   *slog.Logger
}

func New(provider llm.Provider, tools *Registry, cfg Config, logger *slog.Logger) *Agent {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 5
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = SystemPrompt
	}
	return &Agent{provider: provider, tools: tools, cfg: cfg, logger: logger}
}

// Chat 回答一个问题
func (a *Agent) Chat(ctx context.Context, query string) (answer string, err error) {
	steps := 0
	defer func() {
		metrics.RecordAgentTurn(steps, err)
	}()

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.cfg.SystemPrompt},
		{Role: llm.RoleUser, Content: query},
	}
	defs := a.tools.Definitions()

	for steps < a.cfg.MaxSteps {
		steps++
		resp, err := a.provider.Chat(ctx, &llm.ChatRequest{
			Messages:    messages,
			Tools:       defs,
			Temperature: a.cfg.Temperature,
		})
		if err != nil {
			return "", fmt.Errorf("%s: %w", a.provider.Name(), err)
		}

		if len(resp.ToolCalls) == 0 {
			text := strings.TrimSpace(resp.Content)
			if text == "" {
				return "", ErrEmptyAnswer
			}
			return text, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			arg := a.argument(call)
			a.logger.Info("调用工具", "tool", call.Name, "arg", arg, "step", steps)
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Name:       call.Name,
				ToolCallID: call.ID,
				Content:    a.tools.Call(ctx, call.Name, arg),
			})
		}
	}

	a.logger.Warn("达到最大步数仍未得到回答", "max_steps", a.cfg.MaxSteps)
	return "", ErrMaxSteps
}

// argument 取出工具唯一参数；模型偶尔换了参数名或传数组，尽量兼容
func (a *Agent) argument(call llm.ToolCall) string {
	if len(call.Arguments) == 0 {
		return ""
	}
	if t, ok := a.tools.Get(call.Name); ok {
		if v, ok := call.Arguments[t.Param]; ok {
			return stringify(v)
		}
	}
	if len(call.Arguments) == 1 {
		for _, v := range call.Arguments {
			return stringify(v)
		}
	}
	return ""
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
