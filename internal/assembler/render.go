package assembler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scheme-mitra/backend/internal/scheme"
)

// Render serializes the selected entities in the given format. Every
// renderer is deterministic for a given input.
func Render(selected []scheme.Entity, format scheme.Format) string {
	switch format {
	case scheme.FormatMinimal:
		return renderMinimal(selected)
	case scheme.FormatStructured:
		return renderStructured(selected)
	case scheme.FormatMarkdown:
		return renderMarkdown(selected)
	default:
		return renderJSON(selected)
	}
}

func renderMinimal(entities []scheme.Entity) string {
	var b strings.Builder
	for i, e := range entities {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.MinimalSummary)
		if e.URL != "" {
			b.WriteString(" | Apply: " + e.URL)
		}
	}
	return b.String()
}

func renderStructured(entities []scheme.Entity) string {
	var b strings.Builder
	for i, e := range entities {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("%d. Name: %s\n", i+1, e.Name))
		b.WriteString(fmt.Sprintf("   Type: %s\n", e.Category))
		b.WriteString(fmt.Sprintf("   For: %s\n", strings.Join(e.Audiences, ", ")))
		if len(e.KeyBenefits) > 0 {
			b.WriteString("   Benefits: " + e.KeyBenefits[0] + "\n")
		}
		if len(e.Eligibility) > 0 {
			b.WriteString("   Eligibility: " + e.Eligibility[0] + "\n")
		}
		if line := fundingSummary(e.Financial); line != "" {
			b.WriteString("   Funding: " + line + "\n")
		}
		if e.URL != "" {
			b.WriteString("   Link: " + e.URL + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderMarkdown(entities []scheme.Entity) string {
	var b strings.Builder
	for i, e := range entities {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		b.WriteString(fmt.Sprintf("## %s\n\n", e.Name))
		b.WriteString(fmt.Sprintf("**Category:** %s\n\n", e.Category))
		if e.MinimalSummary != "" {
			b.WriteString(e.MinimalSummary + "\n\n")
		}
		if len(e.KeyBenefits) > 0 {
			b.WriteString("**Benefits:**\n")
			for j, benefit := range e.KeyBenefits {
				if j >= 3 {
					break
				}
				b.WriteString("- " + benefit + "\n")
			}
			b.WriteString("\n")
		}
		if len(e.Eligibility) > 0 {
			b.WriteString("**Eligibility:**\n")
			for j, criterion := range e.Eligibility {
				if j >= 2 {
					break
				}
				b.WriteString("- " + criterion + "\n")
			}
			b.WriteString("\n")
		}
		if line := fundingSummary(e.Financial); line != "" {
			b.WriteString("**Funding:** " + line + "\n\n")
		}
		if e.URL != "" {
			b.WriteString("**Apply:** " + e.URL + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

type jsonEntity struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Summary     string       `json:"summary"`
	Benefits    []string     `json:"benefits,omitempty"`
	Eligibility []string     `json:"eligibility,omitempty"`
	Financial   *jsonFinance `json:"financial,omitempty"`
	URL         string       `json:"url,omitempty"`
}

type jsonFinance struct {
	MaxLoan *float64 `json:"maxLoan,omitempty"`
	Subsidy *float64 `json:"subsidy,omitempty"`
}

func renderJSON(entities []scheme.Entity) string {
	out := make([]jsonEntity, 0, len(entities))
	for _, e := range entities {
		item := jsonEntity{
			ID:          e.ID,
			Name:        e.Name,
			Category:    string(e.Category),
			Summary:     e.MinimalSummary,
			Benefits:    topN(e.KeyBenefits, 2),
			Eligibility: topN(e.Eligibility, 2),
			URL:         e.URL,
		}
		if e.Financial != nil {
			finance := &jsonFinance{MaxLoan: e.Financial.LoanMax}
			if e.Financial.SubsidyPercentUrban != nil || e.Financial.SubsidyPercentRural != nil {
				best := 0.0
				if e.Financial.SubsidyPercentUrban != nil {
					best = *e.Financial.SubsidyPercentUrban
				}
				if e.Financial.SubsidyPercentRural != nil && *e.Financial.SubsidyPercentRural > best {
					best = *e.Financial.SubsidyPercentRural
				}
				finance.Subsidy = &best
			}
			if finance.MaxLoan != nil || finance.Subsidy != nil {
				item.Financial = finance
			}
		}
		out = append(out, item)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func fundingSummary(fin *scheme.Financial) string {
	if fin == nil {
		return ""
	}
	var parts []string
	if fin.LoanMax != nil {
		parts = append(parts, fmt.Sprintf("up to ₹%g lakh", *fin.LoanMax/1e5))
	}
	if fin.SubsidyPercentRural != nil && fin.SubsidyPercentUrban != nil && *fin.SubsidyPercentRural != *fin.SubsidyPercentUrban {
		parts = append(parts, fmt.Sprintf("%g%% subsidy urban / %g%% rural", *fin.SubsidyPercentUrban, *fin.SubsidyPercentRural))
	} else if fin.SubsidyPercentUrban != nil {
		parts = append(parts, fmt.Sprintf("%g%% subsidy", *fin.SubsidyPercentUrban))
	} else if fin.SubsidyPercentRural != nil {
		parts = append(parts, fmt.Sprintf("%g%% subsidy (rural)", *fin.SubsidyPercentRural))
	}
	if fin.CollateralRequired != nil && !*fin.CollateralRequired {
		parts = append(parts, "collateral free")
	}
	return strings.Join(parts, ", ")
}

func topN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
