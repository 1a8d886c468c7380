package logger

import (
	"io"
	"log/slog"
)

// Option 配置 New 创建的日志
type Option func(*config)

// WithDebug 为 true 时输出 Debug 级别
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithPretty 使用 charmbracelet/log 彩色输出，适合本地开发
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithJSON 使用 JSON 输出，优先级高于 WithPretty
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter 指定输出目标
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writers = []io.Writer{w}
	}
}

// WithWriters 同时写入多个目标
func WithWriters(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}

// WithSource 输出调用位置
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
