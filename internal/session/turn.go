package session

import (
	"strings"
	"time"

	"github.com/scheme-mitra/backend/internal/assembler"
	"github.com/scheme-mitra/backend/internal/metrics"
	"github.com/scheme-mitra/backend/internal/ranker"
	"github.com/scheme-mitra/backend/internal/scheme"
)

const (
	baseBudget         = 2500
	longHistoryBudget  = 3500
	manySchemesBudget  = 4000
	longHistoryTurns   = 10
	manySchemesMention = 3
	digestCount        = 5
)

// fullCatalogTriggers switch a single turn to the unranked full
// catalog when they appear anywhere in the message.
var fullCatalogTriggers = []string{
	"all schemes",
	"show me everything",
	"list all",
	"what are all",
	"complete list",
}

// Turn runs one conversation turn: resolve the session, derive the
// token budget, rank the catalog against the message, trim and render
// the winners, and compose the instruction prompt for the generative
// model. The caller reports the model's reply back via Record.
func (m *Manager) Turn(message, sessionID, language string, profile *scheme.Profile) (string, scheme.TurnContext, *scheme.Session) {
	sess := m.Resolve(sessionID, profile, language)

	budget := budgetFor(sess.History)
	includeAll := wantsFullCatalog(message)
	entities := m.catalog.Entities()

	var candidates []scheme.Entity
	if includeAll {
		candidates = entities
	} else {
		candidates = ranker.Rank(entities, message, sess.Profile, sess.History)
	}

	selected, format := assembler.Assemble(candidates, budget, includeAll)

	var block string
	if strings.TrimSpace(message) == "" {
		// No query yet: hand the model a digest of the most popular
		// schemes instead of an empty ranked block.
		block = assembler.Digest(entities, digestCount)
	} else {
		block = assembler.Render(selected, format)
	}

	prompt := assembler.ComposePrompt(block, sess.Profile, sess.Language, len(candidates))

	m.mu.Lock()
	sess.LastActive = time.Now()
	m.mu.Unlock()

	turnCtx := scheme.TurnContext{
		Query:    message,
		Profile:  sess.Profile,
		Entities: selected,
		History:  append([]scheme.HistoryTurn(nil), sess.History...),
		Format:   format,
	}

	metrics.FormatChosen.WithLabelValues(string(format)).Inc()
	metrics.EntitiesSelected.Observe(float64(len(selected)))

	return prompt, turnCtx, sess
}

// Record appends the completed exchange to the session's history,
// infers profile fields from the user's wording, and refreshes the
// idle clock. mentionedIDs are the entity ids surfaced in the
// assistant's reply; they feed the next turn's continuity signal.
func (m *Manager) Record(sessionID, userText, assistantText string, mentionedIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	now := time.Now()
	sess.History = append(sess.History,
		scheme.HistoryTurn{Role: "user", Text: userText, Timestamp: now},
		scheme.HistoryTurn{Role: "assistant", Text: assistantText, Timestamp: now, MentionedIDs: mentionedIDs},
	)
	if excess := len(sess.History) - scheme.MaxHistoryTurns; excess > 0 {
		sess.History = sess.History[excess:]
	}

	InferProfile(sess.Profile, userText)
	sess.LastActive = now
	return nil
}

// budgetFor derives the turn's token budget from conversation depth.
// Both bumps may apply; the larger one wins.
func budgetFor(history []scheme.HistoryTurn) int {
	budget := baseBudget
	if len(history) > longHistoryTurns {
		budget = longHistoryBudget
	}
	if distinctMentioned(history) > manySchemesMention {
		budget = manySchemesBudget
	}
	return budget
}

func distinctMentioned(history []scheme.HistoryTurn) int {
	seen := make(map[string]bool)
	for _, turn := range history {
		for _, id := range turn.MentionedIDs {
			seen[id] = true
		}
	}
	return len(seen)
}

func wantsFullCatalog(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range fullCatalogTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
