package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheme-mitra/backend/internal/scheme"
)

func loanEntity(id string, rank int, audiences ...string) scheme.Entity {
	return scheme.Entity{
		ID:             id,
		Name:           "Credit Linked Loan Scheme",
		Category:       scheme.CategoryLoan,
		Tags:           []string{"Loan"},
		Audiences:      audiences,
		MinimalSummary: "Credit Linked Loan Scheme (Loan)",
		PopularityRank: rank,
	}
}

func TestRank_RuralProfilePrefersRuralScheme(t *testing.T) {
	rural := loanEntity("rural-loan-0", 1, "Rural")
	urban := loanEntity("urban-loan-1", 1, "Urban")
	profile := &scheme.Profile{Location: scheme.Location{IsRural: boolPtr(true)}}

	ranked := Rank([]scheme.Entity{urban, rural}, "I need a loan of 10 lakhs for my rural manufacturing unit", profile, nil)

	require.NotEmpty(t, ranked)
	assert.Equal(t, "rural-loan-0", ranked[0].ID)
}

func TestRank_Deterministic(t *testing.T) {
	entities := []scheme.Entity{
		loanEntity("a-0", 3, "All"),
		loanEntity("b-1", 1, "Rural"),
		loanEntity("c-2", 2, "Urban"),
	}

	first := Rank(entities, "loan for my shop", nil, nil)
	second := Rank(entities, "loan for my shop", nil, nil)

	assert.Equal(t, first, second)
}

func TestRank_PopularityBreaksTies(t *testing.T) {
	popular := loanEntity("popular-0", 1, "All")
	obscure := loanEntity("obscure-1", 8, "All")

	ranked := Rank([]scheme.Entity{obscure, popular}, "loan", nil, nil)

	require.Len(t, ranked, 2)
	assert.Equal(t, "popular-0", ranked[0].ID)
}

func TestRank_ContinuityKeepsMentionedEntities(t *testing.T) {
	training := scheme.Entity{
		ID:             "training-0",
		Name:           "Skill Upgradation Programme",
		Category:       scheme.CategoryTraining,
		Tags:           []string{"Training"},
		Audiences:      []string{"All"},
		PopularityRank: 5,
	}
	history := []scheme.HistoryTurn{
		{Role: "assistant", Text: "You may like the Skill Upgradation Programme", MentionedIDs: []string{"training-0"}},
	}

	// Query has no lexical or intent overlap with the training scheme.
	ranked := Rank([]scheme.Entity{training}, "loan", nil, history)

	require.Len(t, ranked, 1)
	assert.Equal(t, "training-0", ranked[0].ID)
}

func TestRank_DropsIrrelevantEntities(t *testing.T) {
	training := scheme.Entity{
		ID:             "training-0",
		Name:           "Skill Upgradation Programme",
		Category:       scheme.CategoryTraining,
		Tags:           []string{"Training"},
		PopularityRank: 5,
	}

	ranked := Rank([]scheme.Entity{training}, "loan", nil, nil)
	assert.Empty(t, ranked)
}

func TestRank_DeduplicatesByID(t *testing.T) {
	entity := loanEntity("dup-0", 1, "All")

	ranked := Rank([]scheme.Entity{entity, entity}, "loan", nil, nil)
	assert.Len(t, ranked, 1)
}

func TestRank_SubsidyIntentRewardsHigherRate(t *testing.T) {
	high := loanEntity("high-0", 1, "All")
	high.Category = scheme.CategorySubsidy
	high.Tags = []string{"Subsidy"}
	high.Financial = &scheme.Financial{SubsidyPercentRural: floatPtr(35), SubsidyPercentUrban: floatPtr(25)}

	low := loanEntity("low-1", 1, "All")
	low.Category = scheme.CategorySubsidy
	low.Tags = []string{"Subsidy"}
	low.Financial = &scheme.Financial{SubsidyPercentRural: floatPtr(15), SubsidyPercentUrban: floatPtr(15)}

	ranked := Rank([]scheme.Entity{low, high}, "subsidy", nil, nil)

	require.Len(t, ranked, 2)
	assert.Equal(t, "high-0", ranked[0].ID)
}

func TestRank_LongUtteranceHitsShortTag(t *testing.T) {
	// A full sentence is never a substring of a short tag; the match
	// has to fire in the reverse direction, tag inside utterance.
	marketing := scheme.Entity{
		ID:             "marketing-0",
		Name:           "Procurement Support Scheme",
		Category:       scheme.CategoryMarketing,
		Tags:           []string{"marketing"},
		Audiences:      []string{"All"},
		PopularityRank: 4,
	}

	ranked := Rank([]scheme.Entity{marketing},
		"can you help me with marketing my handicraft products to bigger buyers", nil, nil)

	require.Len(t, ranked, 1)
	assert.Equal(t, "marketing-0", ranked[0].ID)
}

func TestContainsQuery_BothDirections(t *testing.T) {
	assert.True(t, containsQuery([]string{"marketing"}, "help with marketing my products"))
	assert.True(t, containsQuery([]string{"collateral free loan"}, "loan"))
	assert.False(t, containsQuery([]string{"training"}, "need working capital"))
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("i need a loan of 10 lakhs!")
	assert.Equal(t, []string{"need", "loan", "lakhs"}, tokens)
}

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }
