package shared

import "time"

// RawMessage is a single turn exactly as the caller sent it. Content is
// deliberately untyped: clients send plain strings, content-block arrays,
// or garbage, and the conversation package resolves all of it to text.
type RawMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type GenerateBody struct {
	AccountID string       `json:"account_id"`
	Messages  []RawMessage `json:"messages"`
	Model     string       `json:"model"`
	Stream    *bool        `json:"stream,omitempty"`
}

// Account is owned by the account store. The generation pipeline only reads
// the balance and writes it back decremented; it never creates or deletes
// account rows.
type Account struct {
	ID      string  `json:"id"`
	Balance float64 `json:"balance"`
	IsAdmin bool    `json:"is_admin"`
}

// UsageRecord is an append-only fact written once per successful
// generation call.
type UsageRecord struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	Model         string    `json:"model"`
	InputTokens   int64     `json:"input_tokens"`
	OutputTokens  int64     `json:"output_tokens"`
	BaseCost      float64   `json:"base_cost"`
	BilledCost    float64   `json:"billed_cost"`
	PromptPreview string    `json:"prompt_preview"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	EventChunk = "chunk"
	EventDone  = "done"
	EventError = "error"
)

// Event is one framed unit of the response. The same envelope is used on
// the SSE channel and inside the buffered JSON array, so callers never
// branch their parsing on transport or status.
type Event struct {
	Type  string        `json:"type"`
	Text  string        `json:"text,omitempty"`
	Usage *UsageSummary `json:"usage,omitempty"`
	Error string        `json:"error,omitempty"`
}

type UsageSummary struct {
	InputTokens        int64   `json:"input_tokens"`
	OutputTokens       int64   `json:"output_tokens"`
	BaseCostSettlement float64 `json:"base_cost_settlement"`
	BilledSettlement   float64 `json:"billed_settlement"`
	RemainingBalance   float64 `json:"remaining_balance"`
}
