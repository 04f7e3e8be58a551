//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"plugin-ai-proxy/internal/application/content"
	"plugin-ai-proxy/internal/config"
	"plugin-ai-proxy/internal/infrastructure/llm/anthropic"
	"plugin-ai-proxy/internal/interfaces/http/handler"
	"plugin-ai-proxy/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		LLMSet,
		ContentSet,
		RouterSet,
	)
	return nil, nil, nil
}

// LLMSet 出站模型客户端提供者集合
var LLMSet = wire.NewSet(
	ProvideAnthropicClient,
	wire.Bind(new(content.MessageCreator), new(*anthropic.Client)),
)

// ContentSet 内容生成提供者集合
var ContentSet = wire.NewSet(
	ProvideContentService,
	ProvideLibraryGenerator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewProxyHandler,
	handler.NewGenerateHandler,
	handler.NewLibraryHandler,
	handler.NewDiagnosticsHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
