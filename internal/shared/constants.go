package shared

import "time"

// HTTP Client Configuration
const (
	DefaultProviderTimeout = 180 * time.Second
	DefaultShutdownTimeout = 10 * time.Minute
)

// Cache Configuration
const (
	AccountCacheTTL  = 1 * time.Minute
	SettingsCacheTTL = 1 * time.Minute
)

// API Configuration
const (
	DefaultMaxOutputTokens = 1024
	DefaultStreamOption    = true
	APIKeyLength           = 32
	PromptPreviewLength    = 100
)

// MinimumAdmissionBalance is the settlement-currency floor under which
// non-admin accounts are rejected before any provider call.
const MinimumAdmissionBalance = 0.01

// GenerationSystemPrompt is sent with every provider call.
const GenerationSystemPrompt = "You are Courtside, a concise assistant for sports questions. Answer directly and keep speculation out of your replies."
