package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugin-ai-proxy/internal/application/content"
	"plugin-ai-proxy/internal/infrastructure/llm/anthropic"
	"plugin-ai-proxy/pkg/errors"
)

func decodeProxy(t *testing.T, body string) ProxyRequest {
	t.Helper()
	var r ProxyRequest
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return r
}

func TestProxyRequest_ToMessages(t *testing.T) {
	r := decodeProxy(t, `{"messages":[{"role":"user","content":[{"type":"text","text":"hi"}]}],"prompt":"ignored"}`)

	msgs, err := r.ToMessages()

	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
	assert.JSONEq(t, `[{"type":"text","text":"hi"}]`, string(msgs[0].Content))
}

func TestProxyRequest_PromptBecomesUserMessage(t *testing.T) {
	r := decodeProxy(t, `{"prompt":"Hello"}`)

	msgs, err := r.ToMessages()

	require.NoError(t, err)
	assert.Equal(t, []anthropic.Message{anthropic.UserMessage("Hello")}, msgs)
}

func TestProxyRequest_Invalid(t *testing.T) {
	for _, body := range []string{`{}`, `{"messages":null}`, `{"messages":[]}`, `{"messages":"x"}`, `{"messages":[1]}`, `{"prompt":"  "}`} {
		r := decodeProxy(t, body)
		_, err := r.ToMessages()
		require.Error(t, err, body)
		appErr := errors.AsAppError(err)
		assert.Equal(t, errors.CodeInvalidParam, appErr.Code, body)
		assert.Equal(t, "Messages array is required", appErr.Message, body)
	}
}

func TestProxyRequest_Defaults(t *testing.T) {
	temp := 0.8
	defaults := anthropic.MessagesRequest{Model: "default-model", MaxTokens: 1200, Temperature: &temp}

	r := decodeProxy(t, `{"prompt":"x","max_tokens":0}`)
	out, err := r.ToMessagesRequest(defaults)
	require.NoError(t, err)
	assert.Equal(t, "default-model", out.Model)
	assert.Equal(t, 1200, out.MaxTokens)
	assert.InDelta(t, 0.8, *out.Temperature, 1e-9)

	r = decodeProxy(t, `{"prompt":"x","model":"m","max_tokens":50,"temperature":0,"system":"be brief"}`)
	out, err = r.ToMessagesRequest(defaults)
	require.NoError(t, err)
	assert.Equal(t, "m", out.Model)
	assert.Equal(t, 50, out.MaxTokens)
	assert.InDelta(t, 0.0, *out.Temperature, 1e-9)
	assert.Equal(t, "be brief", out.System)
}

func TestGenerateRequest_ToGenerationRequest(t *testing.T) {
	maxTokens := 300
	r := GenerateRequest{Prompt: "Write", Context: "cardiac", Format: "plain", Model: " m ", MaxTokens: &maxTokens}

	req, opts, err := r.ToGenerationRequest()

	require.NoError(t, err)
	assert.Equal(t, content.FormatPlain, req.Format())
	assert.Equal(t, "m", opts.Model)
	assert.Equal(t, 300, opts.MaxTokens)

	_, _, err = (&GenerateRequest{Prompt: ""}).ToGenerationRequest()
	assert.Equal(t, "Prompt is required", errors.AsAppError(err).Message)

	_, _, err = (&GenerateRequest{Prompt: "x", Format: "yaml"}).ToGenerationRequest()
	assert.Equal(t, errors.CodeInvalidParam, errors.AsAppError(err).Code)
}
