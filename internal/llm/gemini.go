package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/moviebot/internal/utils"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.5-pro"
)

// GeminiConfig Gemini 配置
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Gemini 调用 generateContent 接口
type Gemini struct {
	apiKey  string
	baseURL string
	model   string
	client  *utils.HTTPClient
}

func NewGemini(cfg GeminiConfig) *Gemini {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	// LLM 生成较慢，默认给 60 秒
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gemini{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		client:  utils.NewHTTPClient(timeout),
	}
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if g.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	model := req.Model
	if model == "" {
		model = g.model
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)

	var raw geminiResponse
	err := g.client.PostJSON(ctx, url, map[string]string{"x-goog-api-key": g.apiKey}, buildGeminiRequest(req), &raw)
	if err != nil {
		return nil, fmt.Errorf("gemini chat: %w", err)
	}
	if raw.Error != nil {
		return nil, fmt.Errorf("gemini api error: %s", raw.Error.Message)
	}
	if len(raw.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no content")
	}
	return convertGeminiResponse(&raw), nil
}

func buildGeminiRequest(req *ChatRequest) *geminiRequest {
	out := &geminiRequest{Contents: make([]geminiContent, 0, len(req.Messages))}

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			out.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}

		case RoleTool:
			part := geminiPart{FunctionResponse: &geminiFunctionResponse{
				Name:     m.Name,
				Response: map[string]any{"result": m.Content},
			}}
			// 同一轮的多个工具结果合并到一条 content 里
			if n := len(out.Contents); n > 0 && out.Contents[n-1].Role == "function" {
				out.Contents[n-1].Parts = append(out.Contents[n-1].Parts, part)
				continue
			}
			out.Contents = append(out.Contents, geminiContent{Role: "function", Parts: []geminiPart{part}})

		default:
			role := RoleUser
			if m.Role == RoleAssistant {
				role = "model"
			}
			var parts []geminiPart
			if m.Content != "" {
				parts = append(parts, geminiPart{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, geminiPart{
					FunctionCall:     &geminiFunctionCall{Name: tc.Name, Args: tc.Arguments},
					ThoughtSignature: tc.Signature,
				})
			}
			if len(parts) == 0 {
				continue
			}
			out.Contents = append(out.Contents, geminiContent{Role: role, Parts: parts})
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]geminiFunctionDeclaration, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = geminiFunctionDeclaration{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
		}
		out.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}

	if req.Temperature > 0 || req.MaxTokens > 0 {
		cfg := &geminiGenerationConfig{MaxOutputTokens: req.MaxTokens}
		if req.Temperature > 0 {
			t := req.Temperature
			cfg.Temperature = &t
		}
		out.GenerationConfig = cfg
	}
	return out
}

func convertGeminiResponse(raw *geminiResponse) *ChatResponse {
	cr := &ChatResponse{}
	if raw.UsageMetadata != nil {
		cr.Usage = Usage{
			PromptTokens:     raw.UsageMetadata.PromptTokenCount,
			CompletionTokens: raw.UsageMetadata.CandidatesTokenCount,
		}
	}

	candidate := raw.Candidates[0]
	var text []string
	for _, part := range candidate.Content.Parts {
		if part.Thought {
			continue
		}
		if part.Text != "" {
			text = append(text, part.Text)
		}
		if part.FunctionCall != nil {
			cr.ToolCalls = append(cr.ToolCalls, ToolCall{
				ID:        fmt.Sprintf("call_%d_%s", len(cr.ToolCalls), part.FunctionCall.Name),
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
				Signature: part.ThoughtSignature,
			})
		}
	}
	cr.Content = strings.Join(text, "")

	switch candidate.FinishReason {
	case "MAX_TOKENS":
		cr.StopReason = StopReasonMaxTokens
	case "SAFETY", "RECITATION", "PROHIBITED_CONTENT":
		cr.StopReason = StopReasonFilter
	default:
		if len(cr.ToolCalls) > 0 {
			cr.StopReason = StopReasonToolCall
		} else {
			cr.StopReason = StopReasonEnd
		}
	}
	return cr
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	Thought          bool                    `json:"thought,omitempty"`
	ThoughtSignature string                  `json:"thoughtSignature,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type geminiFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiFunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

// geminiResponse Gemini API 响应结构
type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
