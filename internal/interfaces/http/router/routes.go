// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"

	"plugin-ai-proxy/internal/config"
	"plugin-ai-proxy/internal/interfaces/http/middleware"
)

// RegisterAPIRoutes 注册插件使用的 /api 路由；每个路由同时注册 OPTIONS 以应答无 Origin 的预检
func RegisterAPIRoutes(api *gin.RouterGroup, features config.FeaturesConfig, h *RouterHandlers) {
	post := func(path string, fn gin.HandlerFunc) {
		api.POST(path, fn)
		api.OPTIONS(path, middleware.Preflight)
	}

	post("/claude", h.Proxy.Claude)
	post("/generate", h.Generate.Generate)
	post("/generate-content", h.Library.GenerateContent)

	if features.ClientKeyPassthrough {
		post("/proxy", h.Proxy.Proxy)
	}

	// 自检端点接受任意常用方法
	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		api.Handle(method, "/test", h.Diagnostics.Test)
	}
	api.OPTIONS("/test", middleware.Preflight)

	if features.Diagnostics {
		api.GET("/debug", h.Diagnostics.Debug)
		api.POST("/debug", h.Diagnostics.Debug)
		api.OPTIONS("/debug", middleware.Preflight)
	}
}
