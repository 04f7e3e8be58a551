// Package content 实现插件内容生成的核心流程：提示词构建、模型输出解析与兜底内容。
package content

import (
	"errors"
	"fmt"
	"strings"
)

// ResponseFormat 生成结果的返回形态
type ResponseFormat string

const (
	// FormatPlain 原样返回模型文本
	FormatPlain ResponseFormat = "plain"
	// FormatStructured 返回 headlines/descriptions/ctas 结构
	FormatStructured ResponseFormat = "structured"
)

// ParseResponseFormat 解析格式字段；空值默认为 structured
func ParseResponseFormat(s string) (ResponseFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "structured", "json":
		return FormatStructured, nil
	case "plain", "text":
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected plain or structured)", s)
	}
}

// ErrEmptyPrompt prompt 为空
var ErrEmptyPrompt = errors.New("prompt is required")

// GenerationRequest 单次生成请求，构造后不再修改
type GenerationRequest struct {
	prompt string
	topic  string
	format ResponseFormat
}

// NewGenerationRequest 校验并构造生成请求
func NewGenerationRequest(prompt, context string, format ResponseFormat) (GenerationRequest, error) {
	if strings.TrimSpace(prompt) == "" {
		return GenerationRequest{}, ErrEmptyPrompt
	}
	if format == "" {
		format = FormatStructured
	}
	return GenerationRequest{prompt: prompt, topic: context, format: format}, nil
}

func (r GenerationRequest) Prompt() string         { return r.prompt }
func (r GenerationRequest) Context() string        { return r.topic }
func (r GenerationRequest) Format() ResponseFormat { return r.format }

// StructuredContent 结构化营销内容；返回给调用方时三个序列均非空
type StructuredContent struct {
	Headlines    []string `json:"headlines"`
	Descriptions []string `json:"descriptions"`
	CTAs         []string `json:"ctas"`
}

// Clone 深拷贝
func (c StructuredContent) Clone() StructuredContent {
	return StructuredContent{
		Headlines:    append([]string(nil), c.Headlines...),
		Descriptions: append([]string(nil), c.Descriptions...),
		CTAs:         append([]string(nil), c.CTAs...),
	}
}

// Complete 三个序列是否均非空
func (c StructuredContent) Complete() bool {
	return len(c.Headlines) > 0 && len(c.Descriptions) > 0 && len(c.CTAs) > 0
}

func (c StructuredContent) isEmpty() bool {
	return len(c.Headlines) == 0 && len(c.Descriptions) == 0 && len(c.CTAs) == 0
}

// Topic 兜底内容分桶
type Topic string

const (
	TopicSpine   Topic = "spine"
	TopicCardiac Topic = "cardiac"
	TopicGeneral Topic = "general"
)

// ParseOutcome 解析阶段结果标记
type ParseOutcome int

const (
	// NoMatch 未提取到任何内容，完全使用兜底
	NoMatch ParseOutcome = iota
	// PartialMatch 启发式提取到部分字段
	PartialMatch
	// Matched 严格 JSON 解析成功
	Matched
)

func (o ParseOutcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case PartialMatch:
		return "partial"
	default:
		return "none"
	}
}

// MarshalText 以字符串形式序列化
func (o ParseOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Resolution 解析结果：内容、命中阶段与所用兜底分桶
type Resolution struct {
	Content StructuredContent `json:"content"`
	Outcome ParseOutcome      `json:"outcome"`
	Topic   Topic             `json:"topic"`
}
