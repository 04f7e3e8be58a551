// Package middleware 提供 HTTP 中间件
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// DefaultAllowedHeaders 插件与浏览器调用需要的请求头
var DefaultAllowedHeaders = []string{
	"Content-Type", "Authorization", "x-api-key", "X-Requested-With", "Accept", "Origin", "X-Request-ID",
}

// CORS 跨域中间件；预检请求返回 200 且无响应体
func CORS(cfg CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = DefaultAllowedHeaders
	}

	return cors.New(cors.Config{
		AllowOrigins:              cfg.AllowedOrigins,
		AllowMethods:              cfg.AllowedMethods,
		AllowHeaders:              cfg.AllowedHeaders,
		ExposeHeaders:             []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials:          false,
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	})
}

// Preflight 处理未携带 Origin 的 OPTIONS 请求
func Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}
