package router

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/moviebot/internal/handler"
	"github.com/user/moviebot/internal/middleware"
)

// RegisterRoutes 注册所有路由；mcp 为 nil 时不挂载 /mcp，密钥不安全时不挂载 /admin
func RegisterRoutes(r *gin.Engine, h *handler.Handler, mcp http.Handler) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 页面与对话 ====================
	r.GET("/", h.Home)
	r.GET("/chat", h.Chat)

	// ==================== 工具 API ====================
	tools := r.Group("/api/tools")
	{
		tools.GET("/quote", h.ToolQuote)
		tools.GET("/recommend", h.ToolRecommend)
		tools.GET("/trending", h.ToolTrending)
	}

	// ==================== MCP ====================
	if mcp != nil {
		r.Any("/mcp", gin.WrapH(mcp))
	}

	// ==================== 管理接口 ====================
	if !h.Config.AdminEnabled() {
		h.Logger.Warn("生产环境正在使用默认 APP_SECRET，管理接口已关闭")
		return
	}
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin(h.Config.AppSecret))
	{
		admin.GET("/reindex", h.AdminReindexStatus)
		admin.POST("/reindex", h.AdminReindex)
	}
}

// LoadTemplates 使用 multitemplate 加载模板，页面继承 layouts 下的布局
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts found in %s", templatesDir)
	}

	funcMap := template.FuncMap{
		"default": func(defaultValue, value any) any {
			switch v := value.(type) {
			case string:
				if v == "" {
					return defaultValue
				}
			case nil:
				return defaultValue
			}
			return value
		},
	}

	pages := []string{"index"}
	for _, page := range pages {
		files := append(append([]string{}, layouts...), filepath.Join(templatesDir, "pages", page+".html"))
		r.AddFromFilesFuncs(page, funcMap, files...)
	}
	return r, nil
}
