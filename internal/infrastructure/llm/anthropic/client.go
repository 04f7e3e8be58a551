// Package anthropic 提供 Messages API 的出站调用客户端
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"plugin-ai-proxy/internal/config"
	"plugin-ai-proxy/pkg/logger"
	"plugin-ai-proxy/pkg/metrics"
	"plugin-ai-proxy/pkg/tracer"
)

const (
	providerName   = "anthropic"
	messagesPath   = "/v1/messages"
	defaultBaseURL = "https://api.anthropic.com"
	defaultVersion = "2023-06-01"

	// maxResponseBytes 上游响应体读取上限
	maxResponseBytes = 16 << 20
)

// Message 单条对话消息；Content 可以是字符串或内容块数组，原样透传
type Message struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// UserMessage 构造一条纯文本 user 消息
func UserMessage(text string) Message {
	b, _ := json.Marshal(text)
	return Message{Role: "user", Content: b}
}

// MessagesRequest 出站请求体
type MessagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	System      string    `json:"system,omitempty"`
}

// Usage token 用量
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// MessagesResponse 上游成功响应；Raw 保留原始响应体以便透传
type MessagesResponse struct {
	ID          string
	Model       string
	Text        string
	Usage       Usage
	UsageRaw    json.RawMessage
	StatusCode  int
	ContentType string
	Raw         []byte
}

// APIError 上游返回非 2xx 状态
type APIError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic api returned status %d: %s", e.StatusCode, truncate(string(e.Body), 200))
}

// Details 返回可嵌入响应的错误体：合法 JSON 原样返回，否则返回字符串
func (e *APIError) Details() any {
	if len(e.Body) > 0 && gjson.ValidBytes(e.Body) {
		return json.RawMessage(e.Body)
	}
	return string(e.Body)
}

// Client Messages API 客户端
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
}

// NewClient 根据提供商配置创建客户端
func NewClient(cfg config.ProviderConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = defaultVersion
	}
	return &Client{
		baseURL: baseURL,
		version: version,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			// 0 表示不设客户端超时，由平台/服务端超时兜底
			Timeout: cfg.Timeout,
		},
	}
}

// NewClientFromConfig 使用默认提供商配置创建客户端
func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(cfg.LLM.Provider())
}

// CreateMessage 调用 Messages API；非 2xx 返回 *APIError
func (c *Client) CreateMessage(ctx context.Context, apiKey string, req MessagesRequest) (*MessagesResponse, error) {
	ctx, span := tracer.Start(ctx, "anthropic.CreateMessage")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.message_count", len(req.Messages)),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build messages request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", c.version)

	logger.Debug(ctx, "calling messages api", "model", req.Model, "message_count", len(req.Messages))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.LLMCallDuration.WithLabelValues(providerName, req.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(providerName, req.Model, "transport_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, fmt.Errorf("messages api request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(providerName, req.Model, "read_error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read messages api response: %w", err)
	}

	status := strconv.Itoa(resp.StatusCode)
	metrics.LLMCallTotal.WithLabelValues(providerName, req.Model, status).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, ContentType: contentType, Body: raw}
		span.SetStatus(codes.Error, "upstream status "+status)
		return nil, apiErr
	}

	out := &MessagesResponse{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Raw:         raw,
	}
	if gjson.ValidBytes(raw) {
		parsed := gjson.ParseBytes(raw)
		out.ID = parsed.Get("id").String()
		out.Model = parsed.Get("model").String()
		out.Text = parsed.Get("content.0.text").String()
		if u := parsed.Get("usage"); u.Exists() {
			out.UsageRaw = json.RawMessage(u.Raw)
			out.Usage = Usage{
				InputTokens:  u.Get("input_tokens").Int(),
				OutputTokens: u.Get("output_tokens").Int(),
			}
		}
	}

	model := out.Model
	if model == "" {
		model = req.Model
	}
	if out.Usage.InputTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(providerName, model, "input").Add(float64(out.Usage.InputTokens))
	}
	if out.Usage.OutputTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(providerName, model, "output").Add(float64(out.Usage.OutputTokens))
	}

	return out, nil
}

// IsJSON 响应体是否为可解析的 JSON
func (r *MessagesResponse) IsJSON() bool {
	return r != nil && gjson.ValidBytes(r.Raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close 释放空闲连接
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
