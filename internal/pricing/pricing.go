// Package pricing holds the static per-model price table. Prices are USD
// per million tokens and are not user editable; margin and currency
// conversion live in the billing package.
package pricing

import "sort"

type Entry struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

var table = map[string]Entry{
	"meta-llama/Llama-3.1-8B-Instruct":  {InputPerMillion: 0.10, OutputPerMillion: 0.20},
	"meta-llama/Llama-3.3-70B-Instruct": {InputPerMillion: 0.60, OutputPerMillion: 1.20},
	"Qwen/Qwen2.5-72B-Instruct":         {InputPerMillion: 0.80, OutputPerMillion: 4.00},
	"deepseek-ai/DeepSeek-V3":           {InputPerMillion: 1.25, OutputPerMillion: 1.25},
}

func Lookup(model string) (Entry, bool) {
	e, ok := table[model]
	return e, ok
}

// Models lists the known model ids in stable order.
func Models() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
