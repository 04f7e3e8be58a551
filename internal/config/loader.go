// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultDir 默认配置目录
	DefaultDir = "configs"

	// ProviderAnthropic 默认 LLM 提供商名称
	ProviderAnthropic = "anthropic"
)

// apiKeyEnvAliases 服务端密钥的环境变量名（按优先级）
var apiKeyEnvAliases = []string{"ANTHROPIC_API_KEY", "CLAUDE_API_KEY"}

var placeholderRe = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// Load 加载配置文件
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func Load() (*Config, error) {
	dir := os.Getenv("APP_CONFIG_DIR")
	if dir == "" {
		dir = DefaultDir
	}
	return LoadFrom(dir)
}

// LoadFrom 从指定目录加载配置；基础配置文件缺失时仅使用默认值
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), true); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值 (兜底)
	setDefaults(v)

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyAPIKeyAliases(&cfg)
	return &cfg, nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// 执行环境变量替换
	expanded := expandEnv(string(content))

	reader := strings.NewReader(expanded)
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		// 手动标记已加载文件，后续文件走 Merge
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}

	return nil
}

// expandEnv 替换字符串中的 ${VAR:default} 占位符
func expandEnv(s string) string {
	// g1: 变量名, g2: 默认值部分（含冒号）, g3: 默认值内容
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		submatch := placeholderRe.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		// 保留原样以便识别未定义的变量
		return match
	})
}

// applyAPIKeyAliases 密钥未通过配置文件给出时，依次尝试别名环境变量
func applyAPIKeyAliases(cfg *Config) {
	name := cfg.LLM.DefaultProvider
	if name == "" {
		return
	}
	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]ProviderConfig)
	}
	p := cfg.LLM.Providers[name]
	// 未展开的占位符视为空
	if placeholderRe.MatchString(p.APIKey) {
		p.APIKey = ""
	}
	if strings.TrimSpace(p.APIKey) == "" {
		for _, key := range apiKeyEnvAliases {
			if val := strings.TrimSpace(os.Getenv(key)); val != "" {
				p.APIKey = val
				break
			}
		}
	}
	cfg.LLM.Providers[name] = p
}

// APIKeyEnvNames 返回当前进程中已设置的密钥相关环境变量名（仅名称）
func APIKeyEnvNames() []string {
	var names []string
	for _, key := range apiKeyEnvAliases {
		if _, ok := os.LookupEnv(key); ok {
			names = append(names, key)
		}
	}
	return names
}

// MustLoad 加载配置，失败时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	// 应用默认值
	v.SetDefault("app.name", "plugin-ai-proxy")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	// HTTP 服务器默认值
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "300s")
	v.SetDefault("server.http.idle_timeout", "120s")

	// LLM 默认值
	v.SetDefault("llm.default_provider", ProviderAnthropic)
	v.SetDefault("llm.providers.anthropic.base_url", "https://api.anthropic.com")
	v.SetDefault("llm.providers.anthropic.version", "2023-06-01")
	v.SetDefault("llm.providers.anthropic.model", "claude-3-haiku-20240307")
	v.SetDefault("llm.providers.anthropic.max_tokens", 1200)
	v.SetDefault("llm.providers.anthropic.temperature", 0.8)
	v.SetDefault("llm.providers.anthropic.timeout", "0s")

	// 内容库默认值
	v.SetDefault("content.specialties", []string{
		"general", "cardiac", "emergency", "spine", "cancer",
		"pediatric", "mental", "women", "surgical", "wellness",
	})
	v.SetDefault("content.batch_size", 25)
	v.SetDefault("content.cross_specialty_batch_size", 40)
	v.SetDefault("content.batch_delay", "500ms")
	v.SetDefault("content.batch_model", "claude-3-sonnet-20240229")
	v.SetDefault("content.batch_max_tokens", 3000)

	// 可观测性默认值
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	// 安全默认值
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{
		"Content-Type", "Authorization", "x-api-key", "X-Requested-With", "Accept", "Origin", "X-Request-ID",
	})

	// 功能开关默认值
	v.SetDefault("features.client_key_passthrough", false)
	v.SetDefault("features.diagnostics", false)
}
