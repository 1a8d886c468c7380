package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/user/moviebot/internal/app"
	"github.com/user/moviebot/internal/config"
	"github.com/user/moviebot/internal/handler"
	"github.com/user/moviebot/internal/logger"
	"github.com/user/moviebot/internal/mcpserver"
	"github.com/user/moviebot/internal/middleware"
	"github.com/user/moviebot/internal/router"
)

func main() {
	// 加载环境变量
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.FromSettings(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogFile != "" {
		teed, closeLog, err := logger.WithFile(log, cfg.LogFile, strings.EqualFold(cfg.LogLevel, "debug"))
		if err != nil {
			log.Error("打开日志文件失败", "path", cfg.LogFile, "error", err)
			os.Exit(1)
		}
		defer closeLog()
		log = teed
	}
	if envErr != nil {
		log.Info("未找到 .env 文件，使用系统环境变量")
	}

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Error("初始化失败", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	tools := a.Tools()
	bot := a.Agent(tools)

	mcpSrv, err := mcpserver.NewServer(mcpserver.Config{Tools: tools, Logger: log})
	if err != nil {
		log.Error("MCP 初始化失败", "error", err)
		os.Exit(1)
	}

	if err := handler.RegisterValidators(); err != nil {
		log.Error("注册校验规则失败", "error", err)
		os.Exit(1)
	}

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip；MCP 走流式响应，不压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/mcp"})))

	renderer, err := router.LoadTemplates(cfg.WebDir + "/templates")
	if err != nil {
		log.Error("加载模板失败", "error", err)
		os.Exit(1)
	}
	r.HTMLRender = renderer
	r.Static("/static", cfg.WebDir+"/static")

	// 中间件
	r.Use(middleware.Logger(log))
	r.Use(middleware.Security())
	r.Use(middleware.CORS())

	h := handler.NewHandler(cfg, bot, tools, a.Indexer(), log)
	router.RegisterRoutes(r, h, mcpSrv.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
		// Agent 可能调用多次模型，写超时放宽
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.Info("服务器启动", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("服务器启动失败", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("服务器强制关闭", "error", err)
	}

	log.Info("服务器已退出")
}
