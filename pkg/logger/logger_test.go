package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextAddsKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "json")
	t.Cleanup(func() { Init("info", "json") })

	ctx := WithContext(context.Background(), RequestIDKey, "req-1")
	ctx = WithContext(ctx, TraceIDKey, "trace-1")
	Info(ctx, "hello", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "v", entry["k"])
	assert.NotContains(t, entry, "span_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warning").String())
	assert.Equal(t, "INFO", parseLevel("bogus").String())
}

func TestRedactKey(t *testing.T) {
	n, p := RedactKey("sk-ant-0123456789", 8)
	assert.Equal(t, 17, n)
	assert.Equal(t, "sk-ant-0...", p)

	n, p = RedactKey("abc", 8)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc...", p)

	n, p = RedactKey("", 8)
	assert.Zero(t, n)
	assert.Empty(t, p)
}
