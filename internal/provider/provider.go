// Package provider talks to the external turn-based generation API. The
// API requires strictly alternating user/assistant turns; callers are
// expected to run conversations through the conversation package first.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"courtside-api/internal/conversation"
	"courtside-api/internal/shared"

	"go.uber.org/zap"
)

type CompletionRequest struct {
	Model     string
	System    string
	Messages  []conversation.Message
	MaxTokens int
}

type Completion struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      *zap.SugaredLogger
}

func NewClient(endpoint, apiKey string, log *zap.SugaredLogger) *Client {
	tr := &http.Transport{
		Dial: (&net.Dialer{
			Timeout: 2 * time.Second,
		}).Dial,
		TLSHandshakeTimeout: 2 * time.Second,
		DisableKeepAlives:   false,
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Transport: tr, Timeout: shared.DefaultProviderTimeout},
		log:      log,
	}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completeBody struct {
	Model     string        `json:"model"`
	System    string        `json:"system,omitempty"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []wireMessage `json:"messages"`
}

type completeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete makes exactly one attempt; transient failures are the caller's
// problem to surface, never retried here.
func (cl *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	msgs := make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(completeBody{
		Model:     req.Model,
		System:    req.System,
		MaxTokens: req.MaxTokens,
		Messages:  msgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.endpoint+"/v1/messages", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed building provider request: %w", err)
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Authorization", "Bearer "+cl.apiKey)

	start := time.Now()
	res, err := cl.http.Do(r)
	if err != nil {
		cl.log.Errorw("Provider request failed",
			"error", err,
			"model", req.Model,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, errors.New("generation provider unreachable")
	}
	defer func() {
		_ = res.Body.Close()
	}()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		cl.log.Errorw("Failed reading provider response", "error", err, "model", req.Model)
		return nil, errors.New("failed reading provider response")
	}

	var parsed completeResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil && res.StatusCode == http.StatusOK {
		cl.log.Errorw("Failed decoding provider response", "error", err, "model", req.Model)
		return nil, errors.New("malformed provider response")
	}

	if res.StatusCode != http.StatusOK {
		msg := "generation failed"
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		cl.log.Warnw("Provider responded with non-200",
			"status_code", res.StatusCode,
			"model", req.Model,
			"message", msg)
		return nil, errors.New(msg)
	}

	text := ""
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	cl.log.Infow("Provider call completed",
		"model", req.Model,
		"input_tokens", parsed.Usage.InputTokens,
		"output_tokens", parsed.Usage.OutputTokens,
		"duration_ms", time.Since(start).Milliseconds())

	return &Completion{
		Text:         text,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
	}, nil
}
