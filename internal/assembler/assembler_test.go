package assembler

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheme-mitra/backend/internal/scheme"
)

func makeEntities(n int) []scheme.Entity {
	entities := make([]scheme.Entity, 0, n)
	for i := 0; i < n; i++ {
		entities = append(entities, scheme.Entity{
			ID:             fmt.Sprintf("scheme-%d", i),
			Name:           fmt.Sprintf("Scheme %d", i),
			Category:       scheme.CategoryLoan,
			Audiences:      []string{"All"},
			KeyBenefits:    []string{"Loans up to 10 lakh"},
			Eligibility:    []string{"Registered MSME"},
			MinimalSummary: fmt.Sprintf("Scheme %d (Loan): Loans up to 10 lakh", i),
			URL:            fmt.Sprintf("https://example.gov.in/scheme-%d", i),
			PopularityRank: i + 1,
		})
	}
	return entities
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, scheme.FormatMinimal, FormatFor(1000))
	assert.Equal(t, scheme.FormatStructured, FormatFor(2500))
	assert.Equal(t, scheme.FormatMarkdown, FormatFor(5000))
	assert.Equal(t, scheme.FormatJSON, FormatFor(5001))
}

func TestAssemble_BudgetRespected(t *testing.T) {
	ranked := makeEntities(50)

	t.Run("minimal tier at 1000", func(t *testing.T) {
		selected, format := Assemble(ranked, 1000, false)
		assert.Equal(t, scheme.FormatMinimal, format)
		// 60% of 1000 over 50 tokens per entity.
		assert.Len(t, selected, 12)
	})

	t.Run("selection never exceeds candidates", func(t *testing.T) {
		selected, _ := Assemble(makeEntities(3), 1000, false)
		assert.Len(t, selected, 3)
	})

	t.Run("underflow yields empty selection", func(t *testing.T) {
		selected, _ := Assemble(ranked, 50, false)
		assert.Empty(t, selected)
	})

	t.Run("budget respected across tiers", func(t *testing.T) {
		for _, budget := range []int{100, 1000, 2500, 5000, 8000} {
			format := FormatFor(budget)
			selected, _ := Assemble(ranked, budget, false)
			maxCount := int(float64(budget)*0.6) / CostPerEntity(format)
			assert.LessOrEqual(t, len(selected), maxCount)
		}
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("x", 100)))
}

func TestAssemble_RenderedBlockFitsBudget(t *testing.T) {
	ranked := makeEntities(50)

	// The per-entity cost table is an upper bound on what each
	// renderer actually emits, so the rendered block must estimate
	// within the 60% of the budget that Assemble spends on entities.
	for _, budget := range []int{500, 1000, 2500, 5000, 8000} {
		selected, format := Assemble(ranked, budget, false)
		block := Render(selected, format)
		available := int(float64(budget) * 0.6)
		assert.LessOrEqual(t, EstimateTokens(block), available,
			"budget %d, format %s, %d entities", budget, format, len(selected))
	}
}

func TestRender_Minimal(t *testing.T) {
	out := Render(makeEntities(2), scheme.FormatMinimal)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Scheme 0 (Loan): Loans up to 10 lakh | Apply: https://example.gov.in/scheme-0", lines[0])
}

func TestRender_Structured(t *testing.T) {
	out := Render(makeEntities(2), scheme.FormatStructured)
	assert.Contains(t, out, "1. Name: Scheme 0")
	assert.Contains(t, out, "2. Name: Scheme 1")
	assert.Contains(t, out, "Type: Loan")
	assert.Contains(t, out, "For: All")
}

func TestRender_Markdown(t *testing.T) {
	out := Render(makeEntities(2), scheme.FormatMarkdown)
	assert.Contains(t, out, "## Scheme 0")
	assert.Contains(t, out, "**Category:** Loan")
	assert.Contains(t, out, "\n---\n")
	assert.Contains(t, out, "**Apply:** https://example.gov.in/scheme-1")
}

func TestRender_JSON(t *testing.T) {
	entities := makeEntities(1)
	maxLoan := 1_000_000.0
	rural := 35.0
	urban := 25.0
	entities[0].Financial = &scheme.Financial{
		LoanMax:             &maxLoan,
		SubsidyPercentRural: &rural,
		SubsidyPercentUrban: &urban,
	}

	out := Render(entities, scheme.FormatJSON)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "scheme-0", decoded[0]["id"])

	finance, ok := decoded[0]["financial"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1_000_000.0, finance["maxLoan"])
	assert.Equal(t, 35.0, finance["subsidy"])
}

func TestComposePrompt_Ordering(t *testing.T) {
	rural := true
	profile := &scheme.Profile{
		BusinessType: "manufacturing",
		Location:     scheme.Location{State: "Bihar", IsRural: &rural},
	}

	prompt := ComposePrompt("BLOCK", profile, "hi", 4)

	profileIdx := strings.Index(prompt, "User profile: Business type: manufacturing | State: Bihar | Area: rural")
	languageIdx := strings.Index(prompt, "Respond in Hindi")
	blockIdx := strings.Index(prompt, "Relevant schemes (4 candidates):\nBLOCK")

	require.Greater(t, profileIdx, 0)
	require.Greater(t, languageIdx, profileIdx)
	require.Greater(t, blockIdx, languageIdx)
	assert.True(t, strings.HasPrefix(prompt, personaTemplate))
	assert.True(t, strings.HasSuffix(prompt, responseDirective))
}

func TestProfileSummary(t *testing.T) {
	t.Run("nil profile", func(t *testing.T) {
		assert.Equal(t, "Not provided", ProfileSummary(nil))
	})

	t.Run("empty profile", func(t *testing.T) {
		assert.Equal(t, "Not provided", ProfileSummary(&scheme.Profile{}))
	})

	t.Run("set fields joined by pipes", func(t *testing.T) {
		summary := ProfileSummary(&scheme.Profile{BusinessStage: "new", Gender: "female"})
		assert.Equal(t, "Stage: new | Gender: female", summary)
	})
}

func TestDigest(t *testing.T) {
	entities := makeEntities(5)

	digest := Digest(entities, 3)
	assert.Len(t, strings.Split(digest, "\n"), 3)

	assert.Equal(t, "", Digest(entities, 0))
	assert.Len(t, strings.Split(Digest(entities, 10), "\n"), 5)
}
