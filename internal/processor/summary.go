package processor

import (
	"fmt"
	"strings"

	"github.com/scheme-mitra/backend/internal/scheme"
)

// buildMinimalSummary produces the one-line form reused verbatim by
// the minimal and JSON render paths.
func buildMinimalSummary(e scheme.Entity) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (%s)", e.Name, e.Category))
	if len(e.KeyBenefits) > 0 {
		b.WriteString(": " + e.KeyBenefits[0])
	}
	if len(e.Eligibility) > 0 {
		b.WriteString(". Eligibility: " + e.Eligibility[0])
	}
	return b.String()
}

func buildDetailedSummary(e scheme.Entity, raw scheme.RawRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (%s)\n", e.Name, e.Category))
	if raw.Ministry != "" {
		b.WriteString("Ministry: " + raw.Ministry + "\n")
	}

	if len(e.KeyBenefits) > 0 {
		b.WriteString("Benefits:\n")
		for i, benefit := range e.KeyBenefits {
			if i >= 3 {
				break
			}
			b.WriteString("- " + benefit + "\n")
		}
	}

	if len(e.Eligibility) > 0 {
		b.WriteString("Eligibility:\n")
		for i, criterion := range e.Eligibility {
			if i >= 3 {
				break
			}
			b.WriteString("- " + criterion + "\n")
		}
	}

	if line := financialLine(e.Financial); line != "" {
		b.WriteString(line + "\n")
	}

	if raw.URL != "" {
		b.WriteString("More: " + raw.URL + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// financialLine renders whatever figures were extracted, in rupee
// units scaled to lakh/crore.
func financialLine(fin *scheme.Financial) string {
	if fin == nil {
		return ""
	}

	var parts []string
	if fin.LoanMin != nil && fin.LoanMax != nil {
		if *fin.LoanMin == *fin.LoanMax {
			parts = append(parts, "Funding: up to "+formatAmount(*fin.LoanMax))
		} else {
			parts = append(parts, fmt.Sprintf("Funding: %s to %s", formatAmount(*fin.LoanMin), formatAmount(*fin.LoanMax)))
		}
	}
	if fin.SubsidyPercentUrban != nil || fin.SubsidyPercentRural != nil {
		switch {
		case fin.SubsidyPercentUrban != nil && fin.SubsidyPercentRural != nil && *fin.SubsidyPercentUrban != *fin.SubsidyPercentRural:
			parts = append(parts, fmt.Sprintf("Subsidy: %g%% urban, %g%% rural", *fin.SubsidyPercentUrban, *fin.SubsidyPercentRural))
		case fin.SubsidyPercentUrban != nil:
			parts = append(parts, fmt.Sprintf("Subsidy: %g%%", *fin.SubsidyPercentUrban))
		default:
			parts = append(parts, fmt.Sprintf("Subsidy: %g%% rural", *fin.SubsidyPercentRural))
		}
	}
	if fin.CollateralRequired != nil && !*fin.CollateralRequired {
		parts = append(parts, "Collateral free")
	}

	return strings.Join(parts, " | ")
}

func formatAmount(value float64) string {
	switch {
	case value >= 1e7:
		return fmt.Sprintf("₹%g crore", value/1e7)
	case value >= 1e5:
		return fmt.Sprintf("₹%g lakh", value/1e5)
	default:
		return fmt.Sprintf("₹%.0f", value)
	}
}
