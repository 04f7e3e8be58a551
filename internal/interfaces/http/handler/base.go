// Package handler 提供 HTTP 请求处理器
package handler

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"plugin-ai-proxy/internal/infrastructure/llm/anthropic"
	"plugin-ai-proxy/internal/interfaces/http/dto"
	"plugin-ai-proxy/pkg/errors"
	"plugin-ai-proxy/pkg/logger"
)

// keyPrefixLen 日志中保留的密钥前缀长度
const keyPrefixLen = 8

// bindJSON 解析请求体；空请求体按空对象处理
func bindJSON(c *gin.Context, v any) *errors.AppError {
	if err := c.ShouldBindJSON(v); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.ErrInvalidBody.WithError(err)
	}
	return nil
}

// requireServerKey 服务端密钥缺失时写出 500 并返回 false
func requireServerKey(c *gin.Context, apiKey string) bool {
	if apiKey != "" {
		return true
	}
	logger.Error(c.Request.Context(), "server api key not configured", nil, "path", c.FullPath())
	dto.Error(c, errors.ErrAPIKeyNotConfigured)
	return false
}

// upstreamMessage 按上游状态码给出对外提示
func upstreamMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "Authentication failed - check API key configuration"
	case status == http.StatusTooManyRequests:
		return "Rate limit exceeded - please try again later"
	case status >= http.StatusInternalServerError:
		return "Claude API service temporarily unavailable"
	default:
		return "Claude API request failed"
	}
}

// upstreamError 把上游非 2xx 转换为沿用上游状态码的 AppError，details 附带上游错误体
func upstreamError(apiErr *anthropic.APIError) *errors.AppError {
	appErr := errors.ErrUpstream.
		WithStatus(apiErr.StatusCode).
		WithDetails(apiErr.Details()).
		WithError(apiErr)
	appErr.Message = upstreamMessage(apiErr.StatusCode)
	return appErr
}

// writeCallError 输出出站调用失败：上游状态透传，其余按 500 处理
func writeCallError(c *gin.Context, err error, internal *errors.AppError) {
	ctx := c.Request.Context()
	var apiErr *anthropic.APIError
	if stderrors.As(err, &apiErr) {
		logger.Warn(ctx, "messages api returned error",
			"status", apiErr.StatusCode,
			"body", truncateForLog(string(apiErr.Body)),
		)
		dto.UpstreamError(c, upstreamError(apiErr))
		return
	}
	logger.Error(ctx, "messages api call failed", err)
	dto.ErrorWithTimestamp(c, internal.WithError(err))
}

// clientAPIKey 读取调用方自带的密钥：x-api-key 优先，其次 Authorization: Bearer
func clientAPIKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader("x-api-key")); key != "" {
		return key
	}
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

func truncateForLog(s string) string {
	const max = 500
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
