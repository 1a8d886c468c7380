// Package mcpserver 通过 MCP (Model Context Protocol) 暴露三个电影工具
package mcpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/user/moviebot/internal/agent"
	"github.com/user/moviebot/internal/service"
	"github.com/user/moviebot/internal/utils"
)

type Config struct {
	// Tools 与对话接口共用的工具注册表
	Tools  *agent.Registry
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// QuoteInput find_movie_by_quote 的参数
type QuoteInput struct {
	Quote string `json:"quote" jsonschema:"the quote or line of dialogue to search for"`
}

// RecommendInput recommend_movie_from_likes 的参数
type RecommendInput struct {
	LikedTitles string `json:"liked_titles" jsonschema:"comma separated titles the user likes"`
}

// TrendingInput get_trending_movies 的参数
type TrendingInput struct {
	Dummy string `json:"dummy,omitempty" jsonschema:"unused, may be empty"`
}

// ToolOutput 结构化输出：结果类型和展示文本
type ToolOutput struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func NewServer(c Config) (*Server, error) {
	if c.Tools == nil {
		return nil, errors.New("tool registry is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{config: c}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "moviebot",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, s.tool(agent.ToolFindByQuote), s.handleQuote)
	mcp.AddTool(mcpServer, s.tool(agent.ToolRecommend), s.handleRecommend)
	mcp.AddTool(mcpServer, s.tool(agent.ToolTrending), s.handleTrending)

	s.mcpServer = mcpServer
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)
	return s, nil
}

// Handler 挂到 /mcp 的 HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) tool(name string) *mcp.Tool {
	t, _ := s.config.Tools.Get(name)
	return &mcp.Tool{Name: name, Description: t.Description}
}

func (s *Server) handleQuote(ctx context.Context, _ *mcp.CallToolRequest, in QuoteInput) (*mcp.CallToolResult, ToolOutput, error) {
	return s.invoke(ctx, agent.ToolFindByQuote, in.Quote)
}

func (s *Server) handleRecommend(ctx context.Context, _ *mcp.CallToolRequest, in RecommendInput) (*mcp.CallToolResult, ToolOutput, error) {
	return s.invoke(ctx, agent.ToolRecommend, in.LikedTitles)
}

func (s *Server) handleTrending(ctx context.Context, _ *mcp.CallToolRequest, in TrendingInput) (*mcp.CallToolResult, ToolOutput, error) {
	return s.invoke(ctx, agent.ToolTrending, in.Dummy)
}

// invoke 业务失败照常返回文本，只有基础设施错误标记 IsError
func (s *Server) invoke(ctx context.Context, name, arg string) (*mcp.CallToolResult, ToolOutput, error) {
	res, err := s.config.Tools.Invoke(ctx, name, arg)
	if err != nil {
		return nil, ToolOutput{}, err
	}

	s.config.Logger.Debug("MCP tool call", "tool", name, "kind", res.Kind)
	out := ToolOutput{Kind: string(res.Kind), Text: res.String()}
	return &mcp.CallToolResult{
		IsError: res.Kind == service.KindInfrastructure,
		Content: []mcp.Content{
			&mcp.TextContent{Text: out.Text},
		},
	}, out, nil
}
