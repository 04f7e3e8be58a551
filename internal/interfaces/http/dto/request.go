// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"plugin-ai-proxy/internal/application/content"
	"plugin-ai-proxy/internal/infrastructure/llm/anthropic"
	"plugin-ai-proxy/pkg/errors"
)

// ProxyRequest /api/claude 与 /api/proxy 的请求体；messages 与 prompt 二选一，messages 优先
type ProxyRequest struct {
	Model       string          `json:"model,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	System      string          `json:"system,omitempty"`
	Messages    json.RawMessage `json:"messages,omitempty"`
	Prompt      string          `json:"prompt,omitempty"`
}

// ToMessages 校验并转换为出站消息列表
func (r *ProxyRequest) ToMessages() ([]anthropic.Message, error) {
	raw := bytes.TrimSpace(r.Messages)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if raw[0] != '[' {
			return nil, errors.ErrMessagesRequired
		}
		var msgs []anthropic.Message
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, errors.ErrMessagesRequired.WithError(err)
		}
		if len(msgs) == 0 {
			return nil, errors.ErrMessagesRequired
		}
		return msgs, nil
	}

	if strings.TrimSpace(r.Prompt) != "" {
		return []anthropic.Message{anthropic.UserMessage(r.Prompt)}, nil
	}
	return nil, errors.ErrMessagesRequired
}

// ToMessagesRequest 填充默认值后构造出站请求
func (r *ProxyRequest) ToMessagesRequest(defaults anthropic.MessagesRequest) (anthropic.MessagesRequest, error) {
	msgs, err := r.ToMessages()
	if err != nil {
		return anthropic.MessagesRequest{}, err
	}

	out := defaults
	out.Messages = msgs
	if m := strings.TrimSpace(r.Model); m != "" {
		out.Model = m
	}
	if r.MaxTokens != nil && *r.MaxTokens > 0 {
		out.MaxTokens = *r.MaxTokens
	}
	if r.Temperature != nil {
		out.Temperature = r.Temperature
	}
	if r.System != "" {
		out.System = r.System
	}
	return out, nil
}

// GenerateRequest /api/generate 请求体
type GenerateRequest struct {
	Prompt      string   `json:"prompt"`
	Context     string   `json:"context,omitempty"`
	Format      string   `json:"format,omitempty"`
	Model       string   `json:"model,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	System      string   `json:"system,omitempty"`
}

// ToGenerationRequest 校验请求并转换为领域请求与调用参数
func (r *GenerateRequest) ToGenerationRequest() (content.GenerationRequest, content.CallOptions, error) {
	format, err := content.ParseResponseFormat(r.Format)
	if err != nil {
		return content.GenerationRequest{}, content.CallOptions{}, errors.ErrInvalidFormat.WithError(err)
	}

	req, err := content.NewGenerationRequest(r.Prompt, r.Context, format)
	if err != nil {
		return content.GenerationRequest{}, content.CallOptions{}, errors.ErrPromptRequired.WithError(err)
	}

	opts := content.CallOptions{
		Model:       strings.TrimSpace(r.Model),
		Temperature: r.Temperature,
		System:      r.System,
	}
	if r.MaxTokens != nil {
		opts.MaxTokens = *r.MaxTokens
	}
	return req, opts, nil
}
