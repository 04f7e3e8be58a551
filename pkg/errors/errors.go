// Package errors 提供统一的错误定义
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeUnknown          ErrorCode = "1000"
	CodeInvalidParam     ErrorCode = "1001"
	CodeNotFound         ErrorCode = "1004"
	CodeMethodNotAllowed ErrorCode = "1005"
	CodeInternalError    ErrorCode = "1007"

	// 配置错误 (2xxx)
	CodeConfiguration ErrorCode = "2001"

	// 业务错误 (4xxx)
	CodeGenerationFailed ErrorCode = "4001"

	// 外部服务错误 (5xxx)
	CodeLLMProviderError ErrorCode = "5005"
)

// AppError 应用错误
type AppError struct {
	Code ErrorCode `json:"code"`
	// Title 对外的错误类别，序列化为响应体中的 error 字段
	Title   string `json:"error"`
	Message string `json:"message"`
	// Details 上游返回的原始错误体等附加信息
	Details    any   `json:"details,omitempty"`
	HTTPStatus int   `json:"-"`
	Err        error `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Title, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Title, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails 添加附加信息（返回副本，避免污染预定义错误）
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithError 添加底层错误（返回副本）
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithStatus 覆盖 HTTP 状态码（返回副本），用于透传上游状态
func (e *AppError) WithStatus(status int) *AppError {
	cp := *e
	cp.HTTPStatus = status
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, title, message string) *AppError {
	return &AppError{
		Code:       code,
		Title:      title,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, title, message string) *AppError {
	return &AppError{
		Code:       code,
		Title:      title,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeLLMProviderError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrMethodNotAllowed = New(CodeMethodNotAllowed, "Method not allowed", "Only POST requests are supported")
	ErrMessagesRequired = New(CodeInvalidParam, "Invalid request", "Messages array is required")
	ErrPromptRequired   = New(CodeInvalidParam, "Invalid request", "Prompt is required")
	ErrInvalidBody      = New(CodeInvalidParam, "Invalid request", "Request body must be valid JSON")
	ErrInvalidFormat    = New(CodeInvalidParam, "Invalid request", "Format must be plain or structured")
	ErrUpstream         = New(CodeLLMProviderError, "Claude API error", "Claude API request failed")
	ErrMissingAPIKey    = New(CodeInvalidParam, "Missing API key",
		"Please provide your Claude API key in x-api-key header or Authorization header")
	ErrAPIKeyNotConfigured = New(CodeConfiguration, "Configuration error", "API key not configured on server")
	ErrProxyFailure        = New(CodeInternalError, "Proxy server error", "Internal server error occurred")
	ErrGenerationFailed    = New(CodeGenerationFailed, "Content generation failed", "content generation failed")
	ErrNotFound            = New(CodeNotFound, "Not found", "resource not found")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "Proxy server error", err.Error())
}
