// Package generate implements the generation request pipeline: validation,
// credit admission, conversation normalization, the provider call, cost
// metering, the ledger debit and the framed response events.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"courtside-api/internal/billing"
	"courtside-api/internal/conversation"
	"courtside-api/internal/metrics"
	"courtside-api/internal/pricing"
	"courtside-api/internal/provider"
	"courtside-api/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccountStore interface {
	// GetAccount returns (nil, nil) for an unknown account.
	GetAccount(ctx context.Context, id string) (*shared.Account, error)
	// Debit lowers the balance with a zero floor and returns the new balance.
	Debit(ctx context.Context, id string, amount float64) (float64, error)
}

type UsageStore interface {
	AppendUsage(ctx context.Context, rec shared.UsageRecord) error
	ListUsage(ctx context.Context, accountID string, limit int) ([]shared.UsageRecord, error)
}

type SettingsStore interface {
	GetSettings(ctx context.Context) (billing.Settings, error)
}

// EmitFunc writes one framed event to the caller. The transport behind it
// commits its status code and framing on the first call; Do therefore never
// emits until the request can no longer fail.
type EmitFunc func(ev shared.Event) error

// Handler owns the pipeline. All collaborators are injected so tests can
// substitute deterministic fakes; there are no package-level client handles.
type Handler struct {
	Accounts AccountStore
	Usage    UsageStore
	Settings SettingsStore
	Provider provider.Completer
	Log      *zap.SugaredLogger
}

func NewHandler(accounts AccountStore, usage UsageStore, settings SettingsStore, completer provider.Completer, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Accounts: accounts,
		Usage:    usage,
		Settings: settings,
		Provider: completer,
		Log:      log,
	}
}

type RequestInfo struct {
	AccountID string
	Model     string
	Messages  []shared.RawMessage
	Stream    bool
	ID        string
	StartTime time.Time
}

// Preprocess validates the raw body. First failing check wins: required
// fields, then model, then non-empty messages. A missing messages field is
// a missing field; a present-but-empty list is EmptyMessages.
func (h *Handler) Preprocess(body []byte, requestID string) (*RequestInfo, error) {
	startTime := time.Now()

	var payload shared.GenerateBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Join(shared.ErrInvalidRequest, err)
	}

	if payload.AccountID == "" || payload.Messages == nil || payload.Model == "" {
		return nil, shared.ErrMissingFields
	}
	if _, ok := pricing.Lookup(payload.Model); !ok {
		return nil, shared.ErrInvalidModel
	}
	if len(payload.Messages) == 0 {
		return nil, shared.ErrEmptyMessages
	}

	stream := shared.DefaultStreamOption
	if payload.Stream != nil {
		stream = *payload.Stream
	}

	return &RequestInfo{
		AccountID: payload.AccountID,
		Model:     payload.Model,
		Messages:  payload.Messages,
		Stream:    stream,
		ID:        requestID,
		StartTime: startTime,
	}, nil
}

// Admit is the credit admission gate: admins always pass, everyone else
// needs at least the minimum settlement balance. This is a pre-call check,
// not a reservation; the balance is re-read, never locked.
func Admit(acc shared.Account) bool {
	return acc.IsAdmin || acc.Balance >= shared.MinimumAdmissionBalance
}

type Result struct {
	Text     string
	Usage    shared.UsageSummary
	Canceled bool
}

// Do runs the pipeline to completion. Errors are only returned while
// nothing has been emitted, so the router is always free to pick the status
// code; once the provider call has succeeded the content is delivered even
// if the bookkeeping behind it fails.
func (h *Handler) Do(ctx context.Context, req *RequestInfo, emit EmitFunc) (*Result, error) {
	acc, err := h.Accounts.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, errors.Join(shared.ErrInternalServerError, err)
	}
	if acc == nil {
		return nil, shared.ErrAccountNotFound
	}
	if !Admit(*acc) {
		return nil, shared.ErrInsufficientCredit
	}

	msgs := conversation.Normalize(req.Messages)

	settings, err := h.Settings.GetSettings(ctx)
	if err != nil {
		h.Log.Warnw("Falling back to default billing settings", "error", err)
		settings = billing.DefaultSettings()
	}

	completion, err := h.Provider.Complete(ctx, provider.CompletionRequest{
		Model:     req.Model,
		System:    shared.GenerationSystemPrompt,
		Messages:  msgs,
		MaxTokens: shared.DefaultMaxOutputTokens,
	})
	if err != nil {
		metrics.ErrorCount.WithLabelValues(req.Model, "provider").Inc()
		return nil, shared.ProviderError(err)
	}

	cost := billing.Cost(completion.InputTokens, completion.OutputTokens, req.Model, settings)

	// The cost is incurred the moment the provider call succeeds. A failed
	// debit is logged and counted, never surfaced; blocking the result on
	// bookkeeping would charge the user for nothing.
	remaining := math.Max(0, acc.Balance-cost.BilledSettlement)
	newBalance, err := h.Accounts.Debit(ctx, acc.ID, cost.BilledSettlement)
	if err != nil {
		h.Log.Errorw("Failed to debit account after completion",
			"account_id", acc.ID,
			"billed", cost.BilledSettlement,
			"error", err)
		metrics.ErrorCount.WithLabelValues(req.Model, "debit").Inc()
	} else {
		remaining = newBalance
	}

	usage := shared.UsageSummary{
		InputTokens:        completion.InputTokens,
		OutputTokens:       completion.OutputTokens,
		BaseCostSettlement: cost.Settlement,
		BilledSettlement:   cost.BilledSettlement,
		RemainingBalance:   remaining,
	}

	result := &Result{Text: completion.Text, Usage: usage}

	if err := emit(shared.Event{Type: shared.EventChunk, Text: completion.Text}); err != nil {
		// Client gone mid-stream. The debit already happened and stays; the
		// usage record is still written below.
		h.Log.Warnw("Client disconnected before chunk delivery", "error", err)
		result.Canceled = true
	} else if err := emit(shared.Event{Type: shared.EventDone, Usage: &usage}); err != nil {
		h.Log.Warnw("Client disconnected before usage delivery", "error", err)
		result.Canceled = true
	}

	h.record(req, msgs, cost, usage)

	return result, nil
}

// record appends the usage record and bumps metrics. Best effort: an append
// failure does not roll back the already-delivered content.
func (h *Handler) record(req *RequestInfo, msgs []conversation.Message, cost billing.Breakdown, usage shared.UsageSummary) {
	rec := shared.UsageRecord{
		ID:            uuid.NewString(),
		AccountID:     req.AccountID,
		Model:         req.Model,
		InputTokens:   usage.InputTokens,
		OutputTokens:  usage.OutputTokens,
		BaseCost:      cost.Settlement,
		BilledCost:    cost.BilledSettlement,
		PromptPreview: conversation.PromptPreview(msgs),
		CreatedAt:     time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.Usage.AppendUsage(ctx, rec); err != nil {
		h.Log.Errorw("Failed to append usage record",
			"account_id", req.AccountID,
			"record_id", rec.ID,
			"error", err)
		metrics.ErrorCount.WithLabelValues(req.Model, "usage_record").Inc()
	}

	metrics.RequestCount.WithLabelValues(req.Model, "success").Inc()
	metrics.PromptTokens.WithLabelValues(req.Model).Add(float64(usage.InputTokens))
	metrics.CompletionTokens.WithLabelValues(req.Model).Add(float64(usage.OutputTokens))
	metrics.BilledAmount.WithLabelValues(req.Model).Add(cost.BilledSettlement)
	metrics.RequestDuration.WithLabelValues(req.Model).Observe(time.Since(req.StartTime).Seconds())
}
