package session

import (
	"regexp"
	"strings"

	"github.com/scheme-mitra/backend/internal/assembler"
	"github.com/scheme-mitra/backend/internal/scheme"
)

// Summary is a read-only digest of where a conversation stands, for
// handing off to an agent or a follow-up channel.
type Summary struct {
	SessionID        string   `json:"session_id"`
	Profile          string   `json:"profile"`
	MentionedSchemes []string `json:"mentioned_schemes"`
	StatedNeeds      []string `json:"stated_needs"`
	NextSteps        []string `json:"next_steps"`
}

var needRe = regexp.MustCompile(`(?i)\b(?:need|require|want)\s+([a-z0-9][a-z0-9 ]{2,60})`)

// Summarize aggregates mentioned schemes, known profile fields,
// stated needs, and suggested next steps. It never mutates session
// state.
func (m *Manager) Summarize(sessionID string) (Summary, error) {
	sess, err := m.Get(sessionID)
	if err != nil {
		return Summary{}, err
	}

	m.mu.RLock()
	profile := *sess.Profile
	history := append([]scheme.HistoryTurn(nil), sess.History...)
	m.mu.RUnlock()

	byID := make(map[string]scheme.Entity)
	for _, entity := range m.catalog.Entities() {
		byID[entity.ID] = entity
	}

	var mentionedNames []string
	seen := make(map[string]bool)
	loanDiscussed := false
	for _, turn := range history {
		for _, id := range turn.MentionedIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if entity, ok := byID[id]; ok {
				mentionedNames = append(mentionedNames, entity.Name)
				if entity.Category == scheme.CategoryLoan {
					loanDiscussed = true
				}
			}
		}
	}

	var needs []string
	for _, turn := range history {
		if turn.Role != "user" {
			continue
		}
		for _, match := range needRe.FindAllStringSubmatch(turn.Text, -1) {
			needs = append(needs, strings.TrimSpace(match[1]))
		}
	}

	return Summary{
		SessionID:        sessionID,
		Profile:          assembler.ProfileSummary(&profile),
		MentionedSchemes: mentionedNames,
		StatedNeeds:      needs,
		NextSteps:        nextSteps(&profile, mentionedNames, loanDiscussed),
	}, nil
}

// nextSteps is a fixed rule list, not a model call.
func nextSteps(profile *scheme.Profile, mentioned []string, loanDiscussed bool) []string {
	var steps []string
	if profile.BusinessType == "" {
		steps = append(steps, "Ask what type of business the user runs")
	}
	if profile.Location.State == "" {
		steps = append(steps, "Ask which state the business operates in")
	}
	if profile.BusinessStage == "" {
		steps = append(steps, "Ask whether the business is new or already running")
	}
	if loanDiscussed {
		steps = append(steps, "Ask how much funding the user needs")
	}
	if len(mentioned) == 0 {
		steps = append(steps, "Suggest a few popular schemes to explore")
	}
	return steps
}
