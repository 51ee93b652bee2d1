// Package billing converts metered token usage into money. The provider
// prices in USD; accounts are held and debited in the settlement currency.
package billing

import "courtside-api/internal/pricing"

// Settings is the global billing singleton. It is persisted externally and
// read-mostly; DefaultSettings applies when no row exists yet.
type Settings struct {
	ProfitMarginPercent float64 `json:"profit_margin_percent"`
	ExchangeRate        float64 `json:"exchange_rate"`
}

func DefaultSettings() Settings {
	return Settings{ProfitMarginPercent: 30, ExchangeRate: 0.92}
}

type Breakdown struct {
	SourceUSD        float64
	Settlement       float64
	BilledSettlement float64
}

// Cost is pure and deterministic: no rounding beyond float arithmetic.
// An unknown model yields the zero breakdown; that is a defined degenerate
// result, not an error.
func Cost(inputTokens, outputTokens int64, model string, s Settings) Breakdown {
	entry, ok := pricing.Lookup(model)
	if !ok {
		return Breakdown{}
	}
	if s.ExchangeRate <= 0 {
		s.ExchangeRate = DefaultSettings().ExchangeRate
	}

	source := float64(inputTokens)/1e6*entry.InputPerMillion +
		float64(outputTokens)/1e6*entry.OutputPerMillion
	settlement := source * s.ExchangeRate
	billed := settlement * (1 + s.ProfitMarginPercent/100)

	return Breakdown{
		SourceUSD:        source,
		Settlement:       settlement,
		BilledSettlement: billed,
	}
}
