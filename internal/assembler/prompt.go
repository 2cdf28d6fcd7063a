package assembler

import (
	"fmt"
	"strings"

	"github.com/scheme-mitra/backend/internal/scheme"
)

const personaTemplate = `You are Scheme Mitra, an assistant helping small business owners in India find government assistance schemes. Answer only from the scheme information provided below. Be specific about benefits, eligibility, and how to apply. If the provided schemes do not cover the question, say so and suggest what details would help narrow the search.`

const responseDirective = `Keep the response short and practical. Mention scheme names exactly as given. When you reference a scheme, include its application link if one is listed.`

var localeNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"mr": "Marathi",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"pa": "Punjabi",
	"or": "Odia",
}

// ComposePrompt builds the full instruction block handed to the
// generative model: persona, profile summary, language directive,
// the rendered entity block, and the closing response directive, in
// that fixed order. The ordering and the profile-summary rule are
// load-bearing for the downstream model and must not be reshuffled.
func ComposePrompt(block string, profile *scheme.Profile, language string, candidateCount int) string {
	var b strings.Builder
	b.WriteString(personaTemplate)
	b.WriteString("\n\n")

	b.WriteString("User profile: " + ProfileSummary(profile) + "\n")

	if directive := languageDirective(language); directive != "" {
		b.WriteString(directive + "\n")
	}

	b.WriteString(fmt.Sprintf("\nRelevant schemes (%d candidates):\n", candidateCount))
	b.WriteString(block)
	b.WriteString("\n\n")
	b.WriteString(responseDirective)
	return b.String()
}

// ProfileSummary renders each present profile field as "Key: value",
// joined by " | "; a nil or empty profile reads "Not provided".
func ProfileSummary(profile *scheme.Profile) string {
	if profile == nil {
		return "Not provided"
	}

	var parts []string
	if profile.BusinessType != "" {
		parts = append(parts, "Business type: "+profile.BusinessType)
	}
	if profile.BusinessStage != "" {
		parts = append(parts, "Stage: "+profile.BusinessStage)
	}
	if profile.Location.State != "" {
		parts = append(parts, "State: "+profile.Location.State)
	}
	if profile.Location.IsRural != nil {
		area := "urban"
		if *profile.Location.IsRural {
			area = "rural"
		}
		parts = append(parts, "Area: "+area)
	}
	if profile.Category != "" {
		parts = append(parts, "Category: "+profile.Category)
	}
	if profile.Gender != "" {
		parts = append(parts, "Gender: "+profile.Gender)
	}
	if len(profile.Interests) > 0 {
		parts = append(parts, "Interests: "+strings.Join(profile.Interests, ", "))
	}

	if len(parts) == 0 {
		return "Not provided"
	}
	return strings.Join(parts, " | ")
}

func languageDirective(language string) string {
	if language == "" || language == "en" {
		return ""
	}
	name, ok := localeNames[language]
	if !ok {
		name = language
	}
	return fmt.Sprintf("Language: %s. Respond in %s.", name, name)
}

// Digest joins the first k entities' one-line summaries, used when
// the conversation has no user query yet.
func Digest(entities []scheme.Entity, k int) string {
	if k < 0 {
		k = 0
	}
	if k > len(entities) {
		k = len(entities)
	}
	lines := make([]string, 0, k)
	for _, e := range entities[:k] {
		lines = append(lines, e.MinimalSummary)
	}
	return strings.Join(lines, "\n")
}
