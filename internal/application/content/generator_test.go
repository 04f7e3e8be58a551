package content

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugin-ai-proxy/internal/config"
	"plugin-ai-proxy/internal/infrastructure/llm/anthropic"
)

type fakeCreator struct {
	mu       sync.Mutex
	requests []anthropic.MessagesRequest
	respond  func(req anthropic.MessagesRequest) (*anthropic.MessagesResponse, error)
}

func (f *fakeCreator) CreateMessage(_ context.Context, _ string, req anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(req)
}

func (f *fakeCreator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func textResponse(text string) *anthropic.MessagesResponse {
	return &anthropic.MessagesResponse{Text: text, StatusCode: 200, Model: "test-model"}
}

func promptOf(t *testing.T, req anthropic.MessagesRequest) string {
	t.Helper()
	require.Len(t, req.Messages, 1)
	s := string(req.Messages[0].Content)
	return strings.Trim(s, `"`)
}

func TestService_GenerateStructured(t *testing.T) {
	fc := &fakeCreator{respond: func(anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
		return textResponse(`{"headlines":["A"],"descriptions":["B"],"ctas":["C"]}`), nil
	}}
	svc := NewService(fc, config.ProviderConfig{})
	req, err := NewGenerationRequest("Write a headline", "cardiac", FormatStructured)
	require.NoError(t, err)

	res, err := svc.Generate(context.Background(), "key", req, CallOptions{})

	require.NoError(t, err)
	assert.Equal(t, Matched, res.Resolution.Outcome)
	assert.Equal(t, []string{"A"}, res.Resolution.Content.Headlines)
	require.Len(t, fc.requests, 1)
	sent := fc.requests[0]
	assert.Equal(t, defaultModel, sent.Model)
	assert.Equal(t, defaultMaxTokens, sent.MaxTokens)
	require.NotNil(t, sent.Temperature)
	assert.InDelta(t, defaultTemperature, *sent.Temperature, 1e-9)
	assert.Contains(t, promptOf(t, sent), "Context: cardiac")
}

func TestService_GenerateUsesProviderDefaults(t *testing.T) {
	fc := &fakeCreator{respond: func(anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
		return textResponse("ok"), nil
	}}
	svc := NewService(fc, config.ProviderConfig{Model: "configured-model", MaxTokens: 77, Temperature: 0.3})
	req, err := NewGenerationRequest("x", "", FormatPlain)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "key", req, CallOptions{})

	require.NoError(t, err)
	sent := fc.requests[0]
	assert.Equal(t, "configured-model", sent.Model)
	assert.Equal(t, 77, sent.MaxTokens)
	assert.InDelta(t, 0.3, *sent.Temperature, 1e-9)
}

func TestProviderDefaults_ZeroValuesFallBack(t *testing.T) {
	d := ProviderDefaults(config.ProviderConfig{})

	assert.Equal(t, defaultModel, d.Model)
	assert.Equal(t, defaultMaxTokens, d.MaxTokens)
	require.NotNil(t, d.Temperature)
	assert.InDelta(t, defaultTemperature, *d.Temperature, 1e-9)
}

func TestService_GeneratePlainSendsPromptVerbatim(t *testing.T) {
	fc := &fakeCreator{respond: func(anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
		return textResponse("just text"), nil
	}}
	svc := NewService(fc, config.ProviderConfig{})
	req, err := NewGenerationRequest("Say hi", "", FormatPlain)
	require.NoError(t, err)
	temp := 0.2

	res, err := svc.Generate(context.Background(), "key", req, CallOptions{Model: "m", MaxTokens: 10, Temperature: &temp})

	require.NoError(t, err)
	assert.Equal(t, "just text", res.Text)
	assert.Equal(t, "Say hi", promptOf(t, fc.requests[0]))
	assert.Equal(t, "m", fc.requests[0].Model)
	assert.Equal(t, 10, fc.requests[0].MaxTokens)
	assert.InDelta(t, 0.2, *fc.requests[0].Temperature, 1e-9)
}

func TestService_GenerateUpstreamError(t *testing.T) {
	apiErr := &anthropic.APIError{StatusCode: 429, Body: []byte(`{"type":"error"}`)}
	fc := &fakeCreator{respond: func(anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
		return nil, apiErr
	}}
	req, _ := NewGenerationRequest("x", "", FormatStructured)

	_, err := NewService(fc, config.ProviderConfig{}).Generate(context.Background(), "key", req, CallOptions{})

	var got *anthropic.APIError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 429, got.StatusCode)
}

func testContentConfig() config.ContentConfig {
	return config.ContentConfig{
		Specialties:             []string{"general", "cardiac", "emergency"},
		BatchSize:               3,
		CrossSpecialtyBatchSize: 4,
		BatchDelay:              500 * time.Millisecond,
		BatchModel:              "batch-model",
		BatchMaxTokens:          3000,
	}
}

func TestLibraryGenerator_SerialWithPauses(t *testing.T) {
	fc := &fakeCreator{respond: func(req anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
		if strings.Contains(promptOf(t, req), "cardiac healthcare") {
			return nil, errors.New("boom")
		}
		return textResponse(`[{"headline":"H","body":"B","cta":"C","theme":"T"}]`), nil
	}}

	var pauses []time.Duration
	var order []int
	pause := func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		order = append(order, fc.calls())
		return nil
	}
	gen := NewLibraryGenerator(fc, testContentConfig(),
		WithPause(pause),
		WithClock(func() time.Time { return fixedNow }),
	)

	lib, err := gen.GenerateLibrary(context.Background(), "key")

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond}, pauses)
	// 每次等待前恰好完成了一个专科的调用
	assert.Equal(t, []int{1, 2, 3}, order)
	require.Equal(t, 4, fc.calls())

	wantOrder := []string{"general", "cardiac", "emergency", CrossSpecialty}
	for i, req := range fc.requests {
		assert.Contains(t, promptOf(t, req), wantOrder[i]+" healthcare component library")
		assert.Equal(t, "batch-model", req.Model)
		assert.Equal(t, 3000, req.MaxTokens)
	}

	require.Len(t, lib.Content["general"], 1)
	assert.Equal(t, SourceGenerated, lib.Content["general"][0].Source)
	assert.Equal(t, "general", lib.Content["general"][0].Specialty)

	require.Len(t, lib.Content["cardiac"], 3)
	assert.Equal(t, SourceFallback, lib.Content["cardiac"][0].Source)

	assert.Equal(t, 1+3+1+1, lib.Metadata.TotalVariations)
	assert.Equal(t, LibraryVersion, lib.Metadata.Version)
	assert.Equal(t, []string{"general", "cardiac", "emergency"}, lib.Metadata.Specialties)
	assert.Equal(t, "2024-03-01T12:00:00Z", lib.Metadata.Generated)
}

func TestLibraryGenerator_UnparsableFallsBack(t *testing.T) {
	fc := &fakeCreator{respond: func(anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
		return textResponse("no json here"), nil
	}}
	gen := NewLibraryGenerator(fc, testContentConfig(), WithClock(func() time.Time { return fixedNow }))

	records := gen.GenerateBatch(context.Background(), "key", "cardiac", 7)

	require.Len(t, records, 7)
	assert.Equal(t, "Heart Care 2", records[6].Headline)
	assert.Equal(t, 1, fc.calls())
}

func TestLibraryGenerator_PauseCancelled(t *testing.T) {
	fc := &fakeCreator{respond: func(anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
		return textResponse("[]"), nil
	}}
	gen := NewLibraryGenerator(fc, testContentConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.GenerateLibrary(ctx, "key")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fc.calls())
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
