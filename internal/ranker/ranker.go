package ranker

import (
	"regexp"
	"sort"
	"strings"

	"github.com/scheme-mitra/backend/internal/scheme"
)

// Rank orders entities by relevance to the current turn. It is pure:
// inputs are never mutated and identical arguments always produce the
// identical ordering. Entities with no signal at all are dropped,
// except those already mentioned earlier in the conversation, which
// are always retained. The output carries no duplicate ids.
func Rank(entities []scheme.Entity, query string, profile *scheme.Profile, history []scheme.HistoryTurn) []scheme.Entity {
	lowerQuery := strings.ToLower(strings.TrimSpace(query))
	tokens := tokenize(lowerQuery)
	mentioned := mentionedIDs(history)

	type candidate struct {
		entity scheme.Entity
		score  float64
	}

	var candidates []candidate
	for _, entity := range entities {
		lexical := lexicalScore(entity, lowerQuery, tokens)
		affinity := profileAffinity(entity, profile)
		intent := intentBonus(entity, lowerQuery)

		if lexical+affinity+intent <= 0 && !mentioned[entity.ID] {
			continue
		}

		score := lexical + 2*affinity + intent + (11-float64(entity.PopularityRank))*0.5
		if lexical > 0 {
			score += 5
		}
		candidates = append(candidates, candidate{entity: entity, score: score})
	}

	// Stable sort keeps catalog (popularity) order on exact ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	seen := make(map[string]bool, len(candidates))
	ranked := make([]scheme.Entity, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.entity.ID] {
			continue
		}
		seen[c.entity.ID] = true
		ranked = append(ranked, c.entity)
	}
	return ranked
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// tokenize lowercases, strips punctuation, and keeps tokens longer
// than two characters.
func tokenize(lowerText string) []string {
	var tokens []string
	for _, token := range nonAlnumRe.Split(lowerText, -1) {
		if len(token) > 2 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func lexicalScore(e scheme.Entity, lowerQuery string, tokens []string) float64 {
	if lowerQuery == "" {
		return 0
	}

	score := 0.0
	lowerName := strings.ToLower(e.Name)
	if strings.Contains(lowerName, lowerQuery) {
		score += 10
	} else if len(tokens) > 0 {
		nameTokens := tokenize(lowerName)
		overlap := 0
		for _, token := range tokens {
			for _, nameToken := range nameTokens {
				if token == nameToken {
					overlap++
					break
				}
			}
		}
		score += 5 * float64(overlap) / float64(len(tokens))
	}

	if strings.Contains(strings.ToLower(e.MinimalSummary), lowerQuery) {
		score += 5
	}
	if containsQuery(e.Tags, lowerQuery) {
		score += 7
	}
	if containsQuery(e.KeyBenefits, lowerQuery) {
		score += 4
	}
	if containsQuery(e.Eligibility, lowerQuery) {
		score += 3
	}
	if containsQuery(e.Audiences, lowerQuery) {
		score += 6
	}
	return score
}

// containsQuery reports whether the query and any list entry contain
// one another, in either direction; user utterances are usually
// longer than a tag, so the reverse check is what fires in practice.
func containsQuery(items []string, lowerQuery string) bool {
	for _, item := range items {
		lowerItem := strings.ToLower(item)
		if strings.Contains(lowerItem, lowerQuery) || strings.Contains(lowerQuery, lowerItem) {
			return true
		}
	}
	return false
}

func profileAffinity(e scheme.Entity, profile *scheme.Profile) float64 {
	if profile == nil {
		return 0
	}

	score := 0.0
	if profile.Location.IsRural != nil {
		if *profile.Location.IsRural && hasAudience(e, "Rural") {
			score += 3
		}
		if !*profile.Location.IsRural && hasAudience(e, "Urban") {
			score += 2
		}
	}
	if profile.Category != "" && hasAudience(e, profile.Category) {
		score += 5
	}
	if strings.EqualFold(profile.Gender, "female") && hasAudience(e, "Women") {
		score += 5
	}
	switch profile.BusinessStage {
	case "new":
		if hasAudience(e, "New Entrepreneurs") {
			score += 4
		}
	case "existing":
		if hasAudience(e, "Existing Businesses") {
			score += 4
		}
	}
	for _, interest := range profile.Interests {
		if interest == "" {
			continue
		}
		lowerInterest := strings.ToLower(interest)
		for _, tag := range e.Tags {
			if strings.Contains(strings.ToLower(tag), lowerInterest) {
				score += 2
				break
			}
		}
	}
	if profile.BusinessType != "" {
		lowerType := strings.ToLower(profile.BusinessType)
		for _, audience := range e.Audiences {
			if strings.Contains(strings.ToLower(audience), lowerType) {
				score += 3
				break
			}
		}
	}
	return score
}

func intentBonus(e scheme.Entity, lowerQuery string) float64 {
	score := 0.0
	if strings.Contains(lowerQuery, "loan") || strings.Contains(lowerQuery, "credit") {
		if e.Category == scheme.CategoryLoan || e.Category == scheme.CategorySubsidy {
			score += 2
		}
	}
	if strings.Contains(lowerQuery, "online") && e.OnlineApplication {
		score += 3
	}
	if strings.Contains(lowerQuery, "subsidy") && e.Financial != nil {
		best := 0.0
		if e.Financial.SubsidyPercentUrban != nil {
			best = *e.Financial.SubsidyPercentUrban
		}
		if e.Financial.SubsidyPercentRural != nil && *e.Financial.SubsidyPercentRural > best {
			best = *e.Financial.SubsidyPercentRural
		}
		score += best / 10
	}
	return score
}

func hasAudience(e scheme.Entity, label string) bool {
	for _, audience := range e.Audiences {
		if strings.EqualFold(audience, label) {
			return true
		}
	}
	return false
}

func mentionedIDs(history []scheme.HistoryTurn) map[string]bool {
	mentioned := make(map[string]bool)
	for _, turn := range history {
		for _, id := range turn.MentionedIDs {
			mentioned[id] = true
		}
	}
	return mentioned
}
