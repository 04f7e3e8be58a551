package handler

import (
	"net/http"
	"runtime"
	"strings"

	"github.com/gin-gonic/gin"

	"plugin-ai-proxy/internal/config"
	"plugin-ai-proxy/internal/interfaces/http/dto"
	"plugin-ai-proxy/pkg/logger"
)

// debugKeyPrefixLen /api/debug 展示的密钥前缀长度
const debugKeyPrefixLen = 10

// sensitiveHeaders 回显请求头时需要遮蔽的字段
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"x-api-key":     true,
	"cookie":        true,
}

// DiagnosticsHandler 部署自检处理器
type DiagnosticsHandler struct {
	apiKey string
}

// NewDiagnosticsHandler 创建自检处理器
func NewDiagnosticsHandler(cfg *config.Config) *DiagnosticsHandler {
	return &DiagnosticsHandler{apiKey: cfg.LLM.APIKey()}
}

// EnvCheck 密钥配置检查
type EnvCheck struct {
	HasAPIKey    bool `json:"has_api_key"`
	APIKeyLength int  `json:"api_key_length"`
}

// TestResponse /api/test 响应
type TestResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Timestamp string            `json:"timestamp"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	EnvCheck  EnvCheck          `json:"env_check"`
}

// DebugResponse /api/debug 响应
type DebugResponse struct {
	HasAPIKey         bool     `json:"hasApiKey"`
	KeyLength         int      `json:"keyLength"`
	KeyPrefix         string   `json:"keyPrefix"`
	Timestamp         string   `json:"timestamp"`
	ConfiguredEnvKeys []string `json:"configuredEnvKeys"`
	GoVersion         string   `json:"goVersion"`
}

// Test CORS 与部署连通性检查
// @Summary CORS 测试
// @Tags System
// @Produce json
// @Success 200 {object} TestResponse
// @Router /api/test [get]
func (h *DiagnosticsHandler) Test(c *gin.Context) {
	headers := make(map[string]string, len(c.Request.Header))
	for name, values := range c.Request.Header {
		lower := strings.ToLower(name)
		if sensitiveHeaders[lower] {
			headers[lower] = "[redacted]"
			continue
		}
		headers[lower] = strings.Join(values, ", ")
	}

	c.JSON(http.StatusOK, TestResponse{
		Success:   true,
		Message:   "CORS test successful",
		Timestamp: dto.Now(),
		Method:    c.Request.Method,
		Headers:   headers,
		EnvCheck: EnvCheck{
			HasAPIKey:    h.apiKey != "",
			APIKeyLength: len(h.apiKey),
		},
	})
}

// Debug 密钥配置诊断，只输出长度与前缀
// @Summary 配置诊断
// @Tags System
// @Produce json
// @Success 200 {object} DebugResponse
// @Router /api/debug [get]
func (h *DiagnosticsHandler) Debug(c *gin.Context) {
	keyLen, keyPrefix := logger.RedactKey(h.apiKey, debugKeyPrefixLen)
	if h.apiKey == "" {
		keyPrefix = "No key found"
	}

	envKeys := config.APIKeyEnvNames()
	if envKeys == nil {
		envKeys = []string{}
	}

	c.JSON(http.StatusOK, DebugResponse{
		HasAPIKey:         h.apiKey != "",
		KeyLength:         keyLen,
		KeyPrefix:         keyPrefix,
		Timestamp:         dto.Now(),
		ConfiguredEnvKeys: envKeys,
		GoVersion:         runtime.Version(),
	})
}
