// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"plugin-ai-proxy/internal/application/content"
	"plugin-ai-proxy/pkg/errors"
)

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Status    int    `json:"status,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// GenerateResponse structured 格式的生成结果
type GenerateResponse struct {
	Success     bool                      `json:"success"`
	Content     content.StructuredContent `json:"content"`
	RawResponse string                    `json:"rawResponse"`
	Usage       json.RawMessage           `json:"usage,omitempty"`
	Model       string                    `json:"model"`
	Outcome     content.ParseOutcome      `json:"outcome"`
	Topic       content.Topic             `json:"topic"`
}

// PlainGenerateResponse plain 格式的生成结果
type PlainGenerateResponse struct {
	Success bool            `json:"success"`
	Content string          `json:"content"`
	Usage   json.RawMessage `json:"usage,omitempty"`
	Model   string          `json:"model"`
}

// LibraryMetadata /api/generate-content 返回的元数据
type LibraryMetadata struct {
	Generated       string   `json:"generated"`
	TotalVariations int      `json:"totalVariations"`
	Specialties     []string `json:"specialties"`
}

// LibraryResponse /api/generate-content 响应
type LibraryResponse struct {
	Success        bool             `json:"success"`
	ContentLibrary *content.Library `json:"contentLibrary"`
	Metadata       LibraryMetadata  `json:"metadata"`
}

// NewLibraryResponse 从内容库构造响应
func NewLibraryResponse(lib *content.Library) LibraryResponse {
	return LibraryResponse{
		Success:        true,
		ContentLibrary: lib,
		Metadata: LibraryMetadata{
			Generated:       lib.Metadata.Generated,
			TotalVariations: lib.Metadata.TotalVariations,
			Specialties:     lib.Metadata.Specialties,
		},
	}
}

// Now 响应时间戳格式
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Error 按 AppError 写出错误响应
func Error(c *gin.Context, appErr *errors.AppError) {
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Error:   appErr.Title,
		Message: appErr.Message,
		Details: appErr.Details,
		TraceID: c.GetString("trace_id"),
	})
}

// ErrorWithTimestamp 写出带时间戳的错误响应
func ErrorWithTimestamp(c *gin.Context, appErr *errors.AppError) {
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Error:     appErr.Title,
		Message:   appErr.Message,
		Details:   appErr.Details,
		Timestamp: Now(),
		TraceID:   c.GetString("trace_id"),
	})
}

// UpstreamError 写出上游错误响应，状态码与上游一致
func UpstreamError(c *gin.Context, appErr *errors.AppError) {
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Error:   appErr.Title,
		Message: appErr.Message,
		Details: appErr.Details,
		Status:  appErr.HTTPStatus,
		TraceID: c.GetString("trace_id"),
	})
}
