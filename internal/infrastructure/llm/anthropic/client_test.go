package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugin-ai-proxy/internal/config"
)

func TestCreateMessage_SendsHeadersAndParsesResponse(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","model":"claude-x","content":[{"type":"text","text":"hello"}],"usage":{"input_tokens":3,"output_tokens":5}}`))
	}))
	defer srv.Close()

	c := NewClient(config.ProviderConfig{BaseURL: srv.URL + "/"})
	temp := 0.5
	resp, err := c.CreateMessage(context.Background(), "sk-test", MessagesRequest{
		Model:       "claude-x",
		MaxTokens:   100,
		Messages:    []Message{UserMessage("hi")},
		Temperature: &temp,
		System:      "be brief",
	})
	require.NoError(t, err)

	assert.Equal(t, "msg_1", resp.ID)
	assert.Equal(t, "claude-x", resp.Model)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, int64(3), resp.Usage.InputTokens)
	assert.Equal(t, int64(5), resp.Usage.OutputTokens)
	assert.JSONEq(t, `{"input_tokens":3,"output_tokens":5}`, string(resp.UsageRaw))
	assert.True(t, resp.IsJSON())

	assert.Equal(t, "claude-x", gotBody["model"])
	assert.EqualValues(t, 100, gotBody["max_tokens"])
	assert.EqualValues(t, 0.5, gotBody["temperature"])
	assert.Equal(t, "be brief", gotBody["system"])
	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "hi"}, msgs[0])
}

func TestCreateMessage_OmitsOptionalFields(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"content":[{"text":"ok"}]}`))
	}))
	defer srv.Close()

	c := NewClient(config.ProviderConfig{BaseURL: srv.URL})
	_, err := c.CreateMessage(context.Background(), "k", MessagesRequest{Model: "m", MaxTokens: 1, Messages: []Message{UserMessage("x")}})
	require.NoError(t, err)

	assert.NotContains(t, gotBody, "temperature")
	assert.NotContains(t, gotBody, "system")
}

func TestCreateMessage_UpstreamErrorReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	c := NewClient(config.ProviderConfig{BaseURL: srv.URL})
	_, err := c.CreateMessage(context.Background(), "k", MessagesRequest{Model: "m", MaxTokens: 1, Messages: []Message{UserMessage("x")}})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	details, ok := apiErr.Details().(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"error","error":{"type":"rate_limit_error"}}`, string(details))
}

func TestAPIErrorDetails_NonJSONBody(t *testing.T) {
	e := &APIError{StatusCode: 502, Body: []byte("bad gateway")}
	assert.Equal(t, "bad gateway", e.Details())
	assert.Contains(t, e.Error(), "502")
}

func TestCreateMessage_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(config.ProviderConfig{BaseURL: url})
	_, err := c.CreateMessage(context.Background(), "k", MessagesRequest{Model: "m", MaxTokens: 1, Messages: []Message{UserMessage("x")}})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(config.ProviderConfig{})
	assert.Equal(t, "https://api.anthropic.com", c.baseURL)
	assert.Equal(t, "2023-06-01", c.version)
}
