package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"courtside-api/internal/conversation"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientComplete(t *testing.T) {
	var gotBody completeBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "final score 2-1"}},
			"usage":   map[string]any{"input_tokens": 42, "output_tokens": 7},
		})
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, "test-key", zap.NewNop().Sugar())
	comp, err := cl.Complete(context.Background(), CompletionRequest{
		Model:     "test-model",
		System:    "be brief",
		MaxTokens: 256,
		Messages: []conversation.Message{
			{Role: conversation.RoleUser, Content: "who won?"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "final score 2-1", comp.Text)
	require.Equal(t, int64(42), comp.InputTokens)
	require.Equal(t, int64(7), comp.OutputTokens)

	require.Equal(t, "test-model", gotBody.Model)
	require.Equal(t, "be brief", gotBody.System)
	require.Equal(t, 256, gotBody.MaxTokens)
	require.Equal(t, []wireMessage{{Role: "user", Content: "who won?"}}, gotBody.Messages)
}

func TestClientCompleteSurfacesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited"},
		})
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, "test-key", zap.NewNop().Sugar())
	_, err := cl.Complete(context.Background(), CompletionRequest{Model: "m"})
	require.Error(t, err)
	require.Equal(t, "rate limited", err.Error())
}

func TestClientCompleteGenericErrorOnOpaqueFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded with a stack trace"))
	}))
	defer srv.Close()

	cl := NewClient(srv.URL, "test-key", zap.NewNop().Sugar())
	_, err := cl.Complete(context.Background(), CompletionRequest{Model: "m"})
	require.Error(t, err)
	require.Equal(t, "generation failed", err.Error())
}
