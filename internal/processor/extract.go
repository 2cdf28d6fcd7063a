package processor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/scheme-mitra/backend/internal/scheme"
)

const maxPoints = 5

var benefitKeywords = []string{
	"subsidy", "loan", "grant", "assistance", "support", "benefit",
	"provide", "free", "concession", "incentive", "up to", "upto",
}

var eligibilityKeywords = []string{
	"eligible", "must", "should", "require", "minimum", "criteria",
	"applicant", "enterprise", "registered", "above", "years",
}

var applicationKeywords = []string{
	"apply", "submit", "register", "visit", "fill", "upload", "approach",
}

var (
	numberedLineRe = regexp.MustCompile(`^\s*\d+[.)]\s*`)
	bulletLineRe   = regexp.MustCompile(`^\s*[•\-*]\s*`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+\s+`)
)

// extractPoints pulls a short list of items out of free text. Explicit
// numbered or bulleted lines win; otherwise keyword-bearing sentences
// under 200 characters are kept; otherwise the first three sentences.
// The result is capped at maxPoints entries.
func extractPoints(text string, keywords []string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var points []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case numberedLineRe.MatchString(trimmed):
			points = append(points, numberedLineRe.ReplaceAllString(trimmed, ""))
		case bulletLineRe.MatchString(trimmed):
			points = append(points, bulletLineRe.ReplaceAllString(trimmed, ""))
		}
	}

	if len(points) == 0 && len(keywords) > 0 {
		for _, sentence := range splitSentences(text) {
			if len(sentence) >= 200 {
				continue
			}
			lower := strings.ToLower(sentence)
			for _, keyword := range keywords {
				if strings.Contains(lower, keyword) {
					points = append(points, sentence)
					break
				}
			}
		}
	}

	if len(points) == 0 {
		sentences := splitSentences(text)
		if len(sentences) > 3 {
			sentences = sentences[:3]
		}
		points = sentences
	}

	if len(points) > maxPoints {
		points = points[:maxPoints]
	}
	return points
}

func splitSentences(text string) []string {
	var sentences []string
	for _, part := range sentenceEndRe.Split(text, -1) {
		part = strings.TrimSpace(strings.TrimRight(part, ".!?"))
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

var (
	amountRe  = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹)?\s*([\d,]+(?:\.\d+)?)\s*(thousand|lakhs?|crores?)`)
	percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

var unitMultipliers = map[string]float64{
	"thousand": 1e3,
	"lakh":     1e5,
	"lakhs":    1e5,
	"crore":    1e7,
	"crores":   1e7,
}

// extractFinancial scans text for currency amounts, subsidy
// percentages, and collateral wording. Fields it cannot find stay
// nil; a record with no financial signal at all yields nil.
func extractFinancial(text string) *scheme.Financial {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	fin := &scheme.Financial{}
	found := false

	for _, match := range amountRe.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			continue
		}
		value *= unitMultipliers[strings.ToLower(match[2])]
		if fin.LoanMin == nil || value < *fin.LoanMin {
			fin.LoanMin = ptr(value)
		}
		if fin.LoanMax == nil || value > *fin.LoanMax {
			fin.LoanMax = ptr(value)
		}
		found = true
	}

	if urban, rural, ok := extractSubsidyPercentages(text); ok {
		fin.SubsidyPercentUrban = urban
		fin.SubsidyPercentRural = rural
		found = true
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "collateral free") || strings.Contains(lower, "no collateral") {
		fin.CollateralRequired = ptr(false)
		found = true
	}

	if !found {
		return nil
	}
	return fin
}

// extractSubsidyPercentages assigns percentage figures to urban and
// rural rates. When the text mentions both zones, each figure is
// attributed by the zone keyword in its own sentence; with a single
// zone-less figure, the same rate applies to both.
func extractSubsidyPercentages(text string) (urban, rural *float64, ok bool) {
	lower := strings.ToLower(text)
	hasBothZones := strings.Contains(lower, "urban") && strings.Contains(lower, "rural")

	if hasBothZones {
		for _, sentence := range splitSentences(text) {
			match := percentRe.FindStringSubmatch(sentence)
			if match == nil {
				continue
			}
			value, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				continue
			}
			sentenceLower := strings.ToLower(sentence)
			if strings.Contains(sentenceLower, "rural") && rural == nil {
				rural = ptr(value)
			}
			if strings.Contains(sentenceLower, "urban") && urban == nil {
				urban = ptr(value)
			}
		}
		if urban != nil || rural != nil {
			return urban, rural, true
		}
	}

	if match := percentRe.FindStringSubmatch(text); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return ptr(value), ptr(value), true
		}
	}
	return nil, nil, false
}

func ptr[T any](v T) *T {
	return &v
}
