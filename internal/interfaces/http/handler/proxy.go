package handler

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"plugin-ai-proxy/internal/application/content"
	"plugin-ai-proxy/internal/config"
	"plugin-ai-proxy/internal/infrastructure/llm/anthropic"
	"plugin-ai-proxy/internal/interfaces/http/dto"
	"plugin-ai-proxy/pkg/errors"
	"plugin-ai-proxy/pkg/logger"
)

const (
	proxyDefaultModel     = "claude-3-sonnet-20240229"
	proxyDefaultMaxTokens = 1000
)

// ProxyHandler Messages API 转发处理器
type ProxyHandler struct {
	client   content.MessageCreator
	apiKey   string
	defaults content.CallOptions
}

// NewProxyHandler 创建转发处理器；/api/claude 的默认参数取自提供商配置
func NewProxyHandler(client content.MessageCreator, cfg *config.Config) *ProxyHandler {
	provider := cfg.LLM.Provider()
	return &ProxyHandler{
		client:   client,
		apiKey:   provider.APIKey,
		defaults: content.ProviderDefaults(provider),
	}
}

func (h *ProxyHandler) claudeDefaults() anthropic.MessagesRequest {
	temp := *h.defaults.Temperature
	return anthropic.MessagesRequest{
		Model:       h.defaults.Model,
		MaxTokens:   h.defaults.MaxTokens,
		Temperature: &temp,
	}
}

// Claude 使用服务端密钥转发请求
// @Summary 转发 Messages 请求（服务端密钥）
// @Tags Proxy
// @Accept json
// @Produce json
// @Param body body dto.ProxyRequest true "messages 或 prompt"
// @Success 200 {object} object "上游原始响应"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/claude [post]
func (h *ProxyHandler) Claude(c *gin.Context) {
	ctx := c.Request.Context()
	if !requireServerKey(c, h.apiKey) {
		return
	}

	var req dto.ProxyRequest
	if appErr := bindJSON(c, &req); appErr != nil {
		dto.Error(c, appErr)
		return
	}
	msgReq, err := req.ToMessagesRequest(h.claudeDefaults())
	if err != nil {
		dto.Error(c, errors.AsAppError(err))
		return
	}

	keyLen, keyPrefix := logger.RedactKey(h.apiKey, keyPrefixLen)
	logger.Info(ctx, "forwarding messages request",
		"model", msgReq.Model,
		"message_count", len(msgReq.Messages),
		"key_length", keyLen,
		"key_prefix", keyPrefix,
	)

	resp, err := h.client.CreateMessage(ctx, h.apiKey, msgReq)
	if err != nil {
		writeCallError(c, err, errors.ErrProxyFailure)
		return
	}
	if !resp.IsJSON() {
		logger.Error(ctx, "messages api returned non-json body", nil, "content_type", resp.ContentType)
		dto.ErrorWithTimestamp(c, errors.ErrProxyFailure)
		return
	}

	logger.Info(ctx, "messages request succeeded", "model", resp.Model, "text_length", len(resp.Text))
	c.Data(http.StatusOK, "application/json; charset=utf-8", resp.Raw)
}

// Proxy 使用调用方自带密钥转发请求，原样透传上游状态码与响应体
// @Summary 转发 Messages 请求（调用方密钥）
// @Tags Proxy
// @Accept json
// @Produce json
// @Param x-api-key header string false "Claude API key"
// @Param body body dto.ProxyRequest true "messages 或 prompt"
// @Success 200 {object} object "上游原始响应"
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/proxy [post]
func (h *ProxyHandler) Proxy(c *gin.Context) {
	ctx := c.Request.Context()
	apiKey := clientAPIKey(c)
	if apiKey == "" {
		dto.Error(c, errors.ErrMissingAPIKey)
		return
	}

	var req dto.ProxyRequest
	if appErr := bindJSON(c, &req); appErr != nil {
		dto.Error(c, appErr)
		return
	}
	msgReq, err := req.ToMessagesRequest(anthropic.MessagesRequest{
		Model:     proxyDefaultModel,
		MaxTokens: proxyDefaultMaxTokens,
	})
	if err != nil {
		dto.Error(c, errors.AsAppError(err))
		return
	}

	logger.Info(ctx, "proxying messages request", "model", msgReq.Model, "message_count", len(msgReq.Messages))

	resp, err := h.client.CreateMessage(ctx, apiKey, msgReq)
	if err != nil {
		var apiErr *anthropic.APIError
		if stderrors.As(err, &apiErr) {
			relay(c, apiErr.StatusCode, apiErr.ContentType, apiErr.Body)
			return
		}
		logger.Error(ctx, "proxy request failed", err)
		dto.ErrorWithTimestamp(c, errors.ErrProxyFailure.WithError(err))
		return
	}
	relay(c, resp.StatusCode, resp.ContentType, resp.Raw)
}

// relay 按上游内容类型写回响应体；声明为 JSON 但无法解析时包装为错误对象
func relay(c *gin.Context, status int, contentType string, body []byte) {
	if strings.Contains(contentType, "application/json") {
		if gjson.ValidBytes(body) {
			c.Data(status, "application/json; charset=utf-8", body)
			return
		}
		c.JSON(status, gin.H{
			"error":       "Invalid JSON response from Claude API",
			"rawResponse": string(body),
		})
		return
	}
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	c.Data(status, contentType, body)
}
