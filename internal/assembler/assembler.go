package assembler

import (
	"github.com/scheme-mitra/backend/internal/scheme"
)

// promptReserveFraction is the share of the token budget held back
// for the instruction template and the model's own response; only
// the remainder is spent on rendered entities.
const promptReserveFraction = 0.4

// FormatFor picks a rendering format from the caller's token budget.
// Small budgets trade detail for compactness.
func FormatFor(tokenBudget int) scheme.Format {
	switch {
	case tokenBudget <= 1000:
		return scheme.FormatMinimal
	case tokenBudget <= 2500:
		return scheme.FormatStructured
	case tokenBudget <= 5000:
		return scheme.FormatMarkdown
	default:
		return scheme.FormatJSON
	}
}

// CostPerEntity is the approximate token cost of one rendered entity
// in the given format.
func CostPerEntity(format scheme.Format) int {
	switch format {
	case scheme.FormatMinimal:
		return 50
	case scheme.FormatStructured:
		return 150
	case scheme.FormatMarkdown:
		return 300
	default:
		return 600
	}
}

// Assemble trims a candidate list to the token budget and reports the
// format the selection should be rendered in. The includeAll flag
// records that ranking was bypassed and the caller supplied the full
// catalog table; truncation applies identically either way. A budget
// too small for even one entity yields an empty selection.
func Assemble(candidates []scheme.Entity, tokenBudget int, includeAll bool) ([]scheme.Entity, scheme.Format) {
	format := FormatFor(tokenBudget)

	available := int(float64(tokenBudget) * (1 - promptReserveFraction))
	maxCount := available / CostPerEntity(format)
	if maxCount < 0 {
		maxCount = 0
	}
	if maxCount > len(candidates) {
		maxCount = len(candidates)
	}

	return candidates[:maxCount], format
}

// EstimateTokens approximates token usage as characters divided by
// four. It is a documented approximation, not tokenizer output.
func EstimateTokens(text string) int {
	return len(text) / 4
}
