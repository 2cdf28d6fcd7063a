package processor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/scheme-mitra/backend/internal/scheme"
)

// Process converts one raw catalog record into a structured Entity.
// Extraction is best-effort: malformed or missing text never fails,
// the affected fields just come back empty.
func Process(raw scheme.RawRecord, position int) scheme.Entity {
	entity := scheme.Entity{
		ID:             slugify(raw.Name) + "-" + strconv.Itoa(position),
		Name:           strings.TrimSpace(raw.Name),
		ShortName:      shortName(raw.Name),
		URL:            strings.TrimSpace(raw.URL),
		Category:       detectCategory(raw.Tags),
		Tags:           append([]string(nil), raw.Tags...),
		PopularityRank: position + 1,
	}

	entity.Audiences = detectAudiences(raw.Benefits + " " + raw.Eligibility + " " + strings.Join(raw.Tags, " "))
	entity.KeyBenefits = extractPoints(raw.Benefits, benefitKeywords)
	entity.Eligibility = extractPoints(raw.Eligibility, eligibilityKeywords)
	entity.Financial = extractFinancial(raw.Financial + " " + raw.Benefits)
	entity.ApplicationSteps = extractPoints(raw.Application, applicationKeywords)
	entity.Documents = extractPoints(raw.Documents, nil)
	entity.OnlineApplication = detectOnlineApplication(raw.Application + " " + raw.Sources)

	entity.MinimalSummary = buildMinimalSummary(entity)
	entity.DetailedSummary = buildDetailedSummary(entity, raw)

	return entity
}

// ProcessCatalog processes every record in catalog order. Entity ids
// depend on record position, so the output is only stable while the
// input ordering is stable.
func ProcessCatalog(raw []scheme.RawRecord) []scheme.Entity {
	entities := make([]scheme.Entity, 0, len(raw))
	for i, record := range raw {
		entities = append(entities, Process(record, i))
	}
	return entities
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

var acronymRe = regexp.MustCompile(`\(([A-Z][A-Z0-9&-]{1,11})\)`)

// shortName prefers a parenthesized acronym; long names without one
// fall back to their initials.
func shortName(name string) string {
	name = strings.TrimSpace(name)
	if m := acronymRe.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if len(name) <= 30 {
		return name
	}
	var initials strings.Builder
	for _, word := range strings.Fields(name) {
		r := rune(word[0])
		if r >= 'A' && r <= 'Z' {
			initials.WriteRune(r)
		}
	}
	if initials.Len() >= 2 {
		return initials.String()
	}
	return name
}

// categoryRules are checked in priority order; the first tag match
// decides the category.
var categoryRules = []struct {
	keywords []string
	category scheme.Category
}{
	{[]string{"loan", "credit"}, scheme.CategoryLoan},
	{[]string{"subsidy", "margin money"}, scheme.CategorySubsidy},
	{[]string{"training", "skill"}, scheme.CategoryTraining},
	{[]string{"grant"}, scheme.CategoryGrant},
	{[]string{"technology", "upgradation"}, scheme.CategoryTechnology},
	{[]string{"marketing"}, scheme.CategoryMarketing},
	{[]string{"certification", "quality"}, scheme.CategoryCertification},
}

func detectCategory(tags []string) scheme.Category {
	for _, rule := range categoryRules {
		for _, tag := range tags {
			lower := strings.ToLower(tag)
			for _, keyword := range rule.keywords {
				if strings.Contains(lower, keyword) {
					return rule.category
				}
			}
		}
	}
	return scheme.CategoryMixed
}

var audienceRules = []struct {
	label    string
	keywords []string
}{
	{"Women", []string{"women", "woman", "female"}},
	{"SC/ST", []string{"sc/st", "sc-st", "scheduled caste", "scheduled tribe"}},
	{"OBC", []string{"obc", "backward class"}},
	{"Minority", []string{"minority", "minorities"}},
	{"Rural", []string{"rural", "village"}},
	{"Urban", []string{"urban"}},
	{"New Entrepreneurs", []string{"new enterprise", "new unit", "startup", "start-up"}},
	{"Existing Businesses", []string{"existing"}},
	{"Micro Enterprises", []string{"micro"}},
	{"Small Enterprises", []string{"small"}},
	{"Medium Enterprises", []string{"medium"}},
}

func detectAudiences(text string) []string {
	lower := strings.ToLower(text)
	var audiences []string
	for _, rule := range audienceRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				audiences = append(audiences, rule.label)
				break
			}
		}
	}
	if len(audiences) == 0 {
		audiences = []string{"All"}
	}
	return audiences
}

func detectOnlineApplication(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range []string{"online", "portal", "e-application", "website"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
