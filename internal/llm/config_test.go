package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, DefaultTemperature, config.Temperature)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, config.Temperature, newConfig.Temperature)
	assert.Equal(t, config.MaxRetries, newConfig.MaxRetries)
}

func TestConfigFromEnv(t *testing.T) {
	env := map[string]string{
		"AI_MODEL":          "gemini-x",
		"AI_MODEL_ADVANCED": " gemini-y ",
		"AI_TEMPERATURE":    "0.9",
		"AI_MAX_RETRIES":    "0",
	}
	config := ConfigFromEnv(func(k string) string { return env[k] })

	assert.Equal(t, "gemini-x", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-y", config.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.InDelta(t, 0.9, config.Temperature, 0.0001)
	assert.Zero(t, config.MaxRetries)
}

func TestConfigFromEnv_BadValuesIgnored(t *testing.T) {
	config := ConfigFromEnv(func(k string) string {
		if k == "AI_TEMPERATURE" || k == "AI_MAX_RETRIES" {
			return "hot"
		}
		return ""
	})
	assert.Equal(t, DefaultTemperature, config.Temperature)
	assert.Equal(t, DefaultMaxRetries, config.MaxRetries)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "  ")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestExtractTextFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"tagline":`), genai.Text(` "x"}`)}},
		}},
	}
	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"tagline": "x"}`, text)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	})
	assert.Error(t, err)
}

func TestExtractTextFromResponse_Blocked(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	})
	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonSafety,
			Content:      &genai.Content{Parts: []genai.Part{genai.Text("partial")}},
		}},
	})
	assert.ErrorAs(t, err, &blocked)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"quota http", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"unavailable http", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusServiceUnavailable}), true},
		{"bad request http", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"quota grpc", status.Error(codes.ResourceExhausted, "quota"), true},
		{"unavailable grpc", status.Error(codes.Unavailable, "down"), true},
		{"invalid grpc", status.Error(codes.InvalidArgument, "bad"), false},
		{"plain", errors.New("boom"), false},
		{"blocked", &BlockedError{Reason: "SAFETY"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	transient := status.Error(codes.Unavailable, "down")

	calls := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = withRetry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return transient
	})
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)

	calls = 0
	permanent := errors.New("bad prompt")
	err = withRetry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := withRetry(ctx, 3, time.Hour, func() error {
		return status.Error(codes.Unavailable, "down")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
