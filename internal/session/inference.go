package session

import (
	"strings"

	"github.com/scheme-mitra/backend/internal/scheme"
)

var businessTypeKeywords = []string{
	"manufacturing", "service", "trading", "retail",
	"agriculture", "handicraft", "technology", "export",
}

var stageKeywords = []struct {
	keywords []string
	stage    string
}{
	{[]string{"start", "new"}, "new"},
	{[]string{"existing", "running"}, "existing"},
	{[]string{"expand", "growth"}, "expansion"},
}

var stateNames = []string{
	"andhra pradesh", "arunachal pradesh", "assam", "bihar",
	"chhattisgarh", "goa", "gujarat", "haryana", "himachal pradesh",
	"jharkhand", "karnataka", "kerala", "madhya pradesh",
	"maharashtra", "manipur", "meghalaya", "mizoram", "nagaland",
	"odisha", "punjab", "rajasthan", "sikkim", "tamil nadu",
	"telangana", "tripura", "uttar pradesh", "uttarakhand",
	"west bengal", "delhi", "jammu and kashmir", "ladakh",
	"puducherry", "chandigarh",
}

// InferProfile scans a user message for profile signals and fills in
// whatever is still unset. Set fields are never overwritten, so
// early statements win over later contradictions.
func InferProfile(profile *scheme.Profile, text string) {
	if profile == nil {
		return
	}
	lower := strings.ToLower(text)

	if profile.BusinessType == "" {
		for _, keyword := range businessTypeKeywords {
			if strings.Contains(lower, keyword) {
				profile.BusinessType = keyword
				break
			}
		}
	}

	if profile.Location.State == "" {
		for _, state := range stateNames {
			if strings.Contains(lower, state) {
				profile.Location.State = state
				break
			}
		}
	}

	if profile.BusinessStage == "" {
	stage:
		for _, rule := range stageKeywords {
			for _, keyword := range rule.keywords {
				if strings.Contains(lower, keyword) {
					profile.BusinessStage = rule.stage
					break stage
				}
			}
		}
	}

	if profile.Gender == "" {
		if strings.Contains(lower, "women") || strings.Contains(lower, "female") {
			profile.Gender = "female"
		}
	}

	if profile.Category == "" {
		for _, keyword := range []string{"sc/st", "sc-st", "scheduled caste", "scheduled tribe"} {
			if strings.Contains(lower, keyword) {
				profile.Category = "SC/ST"
				break
			}
		}
	}
}
