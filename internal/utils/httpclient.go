package utils

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusError 上游返回了非 2xx 状态码
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("请求失败，状态码: %d", e.StatusCode)
	}
	return fmt.Sprintf("请求失败，状态码: %d: %s", e.StatusCode, e.Body)
}

// IsStatus 判断错误是否为指定状态码
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// HTTPClient JSON API 客户端，自动处理 gzip/deflate 响应
type HTTPClient struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPClient timeout <= 0 时默认 30 秒
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "moviebot/1.0",
	}
}

// GetJSON 发送 GET 请求并解析 JSON 响应
func (c *HTTPClient) GetJSON(ctx context.Context, url string, headers map[string]string, target any) error {
	return c.DoJSON(ctx, http.MethodGet, url, headers, nil, target)
}

// PostJSON 发送 JSON 请求体并解析 JSON 响应
func (c *HTTPClient) PostJSON(ctx context.Context, url string, headers map[string]string, body, target any) error {
	return c.DoJSON(ctx, http.MethodPost, url, headers, body, target)
}

// DoJSON target 为 nil 时丢弃响应体
func (c *HTTPClient) DoJSON(ctx context.Context, method, url string, headers map[string]string, body, target any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var rc io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		rc, err = gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("创建gzip读取器失败: %w", err)
		}
		defer rc.Close()
	case "deflate":
		rc = flate.NewReader(resp.Body)
		defer rc.Close()
	default:
		rc = resp.Body
	}

	raw, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(raw)), 512)}
	}

	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
