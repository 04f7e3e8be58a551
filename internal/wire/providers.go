// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"plugin-ai-proxy/internal/application/content"
	"plugin-ai-proxy/internal/config"
	"plugin-ai-proxy/internal/infrastructure/llm/anthropic"
	"plugin-ai-proxy/pkg/logger"
)

// ProvideAnthropicClient 提供 Messages API 客户端；服务端密钥缺失只告警，调用时返回 500
func ProvideAnthropicClient(ctx context.Context, cfg *config.Config) (*anthropic.Client, func(), error) {
	provider := cfg.LLM.Provider()
	if provider.APIKey == "" {
		logger.Warn(ctx, "server api key not configured, server-key endpoints will return 500",
			"provider", cfg.LLM.DefaultProvider,
			"env_names", config.APIKeyEnvNames(),
		)
	}
	client := anthropic.NewClient(provider)
	return client, client.Close, nil
}

// ProvideContentService 提供单次生成服务，默认调用参数取自提供商配置
func ProvideContentService(client content.MessageCreator, cfg *config.Config) *content.Service {
	return content.NewService(client, cfg.LLM.Provider())
}

// ProvideLibraryGenerator 提供内容库生成器
func ProvideLibraryGenerator(client content.MessageCreator, cfg *config.Config) *content.LibraryGenerator {
	return content.NewLibraryGenerator(client, cfg.Content)
}
