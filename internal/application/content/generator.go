package content

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"plugin-ai-proxy/internal/config"
	"plugin-ai-proxy/internal/infrastructure/llm/anthropic"
	"plugin-ai-proxy/pkg/logger"
	"plugin-ai-proxy/pkg/metrics"
	"plugin-ai-proxy/pkg/tracer"
)

const (
	// CrossSpecialty 跨专科批次的键名
	CrossSpecialty = "cross-specialty"
	// LibraryVersion 内容库元数据版本
	LibraryVersion = "1.0.0"

	defaultModel       = "claude-3-haiku-20240307"
	defaultMaxTokens   = 1200
	defaultTemperature = 0.8
)

// MessageCreator 出站 Messages API 调用
type MessageCreator interface {
	CreateMessage(ctx context.Context, apiKey string, req anthropic.MessagesRequest) (*anthropic.MessagesResponse, error)
}

// CallOptions 单次调用参数；零值字段使用默认值
type CallOptions struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	System      string
}

func (o CallOptions) withDefaults(d CallOptions) CallOptions {
	if o.Model == "" {
		o.Model = d.Model
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = d.MaxTokens
	}
	if o.Temperature == nil {
		o.Temperature = d.Temperature
	}
	if o.System == "" {
		o.System = d.System
	}
	return o
}

// GenerationResult 单次生成结果；Resolution 仅在 structured 格式下有效
type GenerationResult struct {
	Format     ResponseFormat
	Text       string
	Resolution Resolution
	Response   *anthropic.MessagesResponse
}

// Service 单次内容生成：构建提示词、调用模型、解析输出
type Service struct {
	client   MessageCreator
	defaults CallOptions
}

// NewService 创建生成服务；提供商配置中的零值字段回退到内置默认值
func NewService(client MessageCreator, provider config.ProviderConfig) *Service {
	return &Service{client: client, defaults: ProviderDefaults(provider)}
}

// ProviderDefaults 由提供商配置得到调用默认值
func ProviderDefaults(provider config.ProviderConfig) CallOptions {
	d := CallOptions{Model: provider.Model, MaxTokens: provider.MaxTokens}
	if d.Model == "" {
		d.Model = defaultModel
	}
	if d.MaxTokens <= 0 {
		d.MaxTokens = defaultMaxTokens
	}
	temp := provider.Temperature
	if temp == 0 {
		temp = defaultTemperature
	}
	d.Temperature = &temp
	return d
}

// Generate 执行一次生成；上游错误原样返回（*anthropic.APIError 或传输错误）
func (s *Service) Generate(ctx context.Context, apiKey string, req GenerationRequest, opts CallOptions) (*GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "content.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("content.format", string(req.Format())))

	opts = opts.withDefaults(s.defaults)

	prompt := req.Prompt()
	if req.Format() == FormatStructured {
		prompt = BuildStructuredPrompt(req.Prompt(), req.Context())
	}

	resp, err := s.client.CreateMessage(ctx, apiKey, anthropic.MessagesRequest{
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Messages:    []anthropic.Message{anthropic.UserMessage(prompt)},
		Temperature: opts.Temperature,
		System:      opts.System,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := &GenerationResult{Format: req.Format(), Text: resp.Text, Response: resp}
	if req.Format() == FormatStructured {
		result.Resolution = Resolve(resp.Text, req.Context())
		metrics.ResolverOutcomeTotal.WithLabelValues(result.Resolution.Outcome.String(), string(result.Resolution.Topic)).Inc()
		span.SetAttributes(
			attribute.String("content.outcome", result.Resolution.Outcome.String()),
			attribute.String("content.topic", string(result.Resolution.Topic)),
		)
		logger.Debug(ctx, "structured content resolved",
			"outcome", result.Resolution.Outcome.String(),
			"topic", result.Resolution.Topic,
		)
	}
	return result, nil
}

// LibraryMetadata 内容库元数据
type LibraryMetadata struct {
	Generated       string   `json:"generated"`
	Version         string   `json:"version"`
	TotalVariations int      `json:"totalVariations"`
	Specialties     []string `json:"specialties"`
	Source          string   `json:"source"`
}

// Library 按专科分组的批量内容
type Library struct {
	Metadata LibraryMetadata     `json:"metadata"`
	Content  map[string][]Record `json:"content"`
}

// LibraryGenerator 串行批量内容生成器
type LibraryGenerator struct {
	client      MessageCreator
	specialties []string
	batchSize   int
	crossSize   int
	delay       time.Duration
	model       string
	maxTokens   int

	pause func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	group singleflight.Group
}

// LibraryOption 生成器可选项
type LibraryOption func(*LibraryGenerator)

// WithPause 替换批次间的等待实现
func WithPause(pause func(ctx context.Context, d time.Duration) error) LibraryOption {
	return func(g *LibraryGenerator) { g.pause = pause }
}

// WithClock 替换时间来源
func WithClock(now func() time.Time) LibraryOption {
	return func(g *LibraryGenerator) { g.now = now }
}

// NewLibraryGenerator 根据内容配置创建生成器
func NewLibraryGenerator(client MessageCreator, cfg config.ContentConfig, opts ...LibraryOption) *LibraryGenerator {
	g := &LibraryGenerator{
		client:      client,
		specialties: append([]string(nil), cfg.Specialties...),
		batchSize:   cfg.BatchSize,
		crossSize:   cfg.CrossSpecialtyBatchSize,
		delay:       cfg.BatchDelay,
		model:       cfg.BatchModel,
		maxTokens:   cfg.BatchMaxTokens,
		pause:       sleepContext,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateBatch 生成某专科的 n 条记录；任何失败立即使用兜底模板，不重试
func (g *LibraryGenerator) GenerateBatch(ctx context.Context, apiKey, specialty string, n int) []Record {
	ctx, span := tracer.Start(ctx, "content.GenerateBatch")
	defer span.End()
	span.SetAttributes(attribute.String("content.specialty", specialty), attribute.Int("content.count", n))

	records, err := g.requestBatch(ctx, apiKey, specialty, n)
	if err != nil {
		span.RecordError(err)
		logger.Warn(ctx, "content batch failed, using fallback templates",
			"specialty", specialty,
			"count", n,
			"error", err,
		)
		metrics.BatchResultTotal.WithLabelValues(specialty, SourceFallback).Inc()
		return FallbackRecords(specialty, n, g.now())
	}

	metrics.BatchResultTotal.WithLabelValues(specialty, SourceGenerated).Inc()
	logger.Info(ctx, "content batch generated", "specialty", specialty, "count", len(records))
	return records
}

func (g *LibraryGenerator) requestBatch(ctx context.Context, apiKey, specialty string, n int) ([]Record, error) {
	resp, err := g.client.CreateMessage(ctx, apiKey, anthropic.MessagesRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages:  []anthropic.Message{anthropic.UserMessage(BuildBatchPrompt(specialty, n))},
	})
	if err != nil {
		return nil, err
	}
	records, err := ParseBatch(resp.Text, specialty)
	if err != nil {
		return nil, err
	}
	generated := g.now().UTC().Format(time.RFC3339)
	for i := range records {
		if records[i].Generated == "" {
			records[i].Generated = generated
		}
	}
	return records, nil
}

// GenerateLibrary 按配置顺序逐个专科生成，每个专科后固定等待，最后生成跨专科批次。
// 并发的相同请求共享同一次生成。
func (g *LibraryGenerator) GenerateLibrary(ctx context.Context, apiKey string) (*Library, error) {
	v, err, shared := g.group.Do("library", func() (any, error) {
		return g.generateLibrary(context.WithoutCancel(ctx), ctx, apiKey)
	})
	if shared {
		logger.Debug(ctx, "content library generation shared with in-flight request")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Library), nil
}

// generateLibrary 出站调用使用 callCtx 以免首个调用方断开影响其他等待者；等待阶段跟随 waitCtx
func (g *LibraryGenerator) generateLibrary(callCtx, waitCtx context.Context, apiKey string) (*Library, error) {
	callCtx, span := tracer.Start(callCtx, "content.GenerateLibrary")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.LibraryGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	lib := &Library{Content: make(map[string][]Record, len(g.specialties)+1)}
	total := 0
	for _, specialty := range g.specialties {
		records := g.GenerateBatch(callCtx, apiKey, specialty, g.batchSize)
		lib.Content[specialty] = records
		total += len(records)

		if err := g.pause(waitCtx, g.delay); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("content library generation interrupted: %w", err)
		}
	}

	cross := g.GenerateBatch(callCtx, apiKey, CrossSpecialty, g.crossSize)
	lib.Content[CrossSpecialty] = cross
	total += len(cross)

	lib.Metadata = LibraryMetadata{
		Generated:       g.now().UTC().Format(time.RFC3339),
		Version:         LibraryVersion,
		TotalVariations: total,
		Specialties:     append([]string(nil), g.specialties...),
		Source:          "claude-api",
	}
	span.SetAttributes(attribute.Int("content.total_variations", total))
	logger.Info(callCtx, "content library generated",
		"specialties", len(g.specialties),
		"total_variations", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return lib, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
