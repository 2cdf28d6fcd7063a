package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scheme-mitra/backend/internal/scheme"
)

func TestReplyCacheKey_DistinguishesProfiles(t *testing.T) {
	rural := true
	urban := false
	ruralProfile := &scheme.Profile{Location: scheme.Location{IsRural: &rural}}
	urbanProfile := &scheme.Profile{Location: scheme.Location{IsRural: &urban}}

	// The same first message from differently profiled users ranks
	// different schemes, so their replies must not share a cache slot.
	ruralKey := replyCacheKey("need a subsidy", "en", ruralProfile)
	urbanKey := replyCacheKey("need a subsidy", "en", urbanProfile)
	assert.NotEqual(t, ruralKey, urbanKey)

	assert.NotEqual(t, ruralKey, replyCacheKey("need a subsidy", "en", nil))
	assert.NotEqual(t, ruralKey, replyCacheKey("need a subsidy", "hi", ruralProfile))

	assert.Equal(t, ruralKey, replyCacheKey("need a subsidy", "en", ruralProfile))
	assert.Equal(t, ruralKey, replyCacheKey("NEED A SUBSIDY", "en", ruralProfile))
}

func TestReplyCacheKey_EmptyProfileMatchesNil(t *testing.T) {
	assert.Equal(t,
		replyCacheKey("loan options", "en", nil),
		replyCacheKey("loan options", "en", &scheme.Profile{}),
	)
}

func TestProfilePayloadValidate(t *testing.T) {
	t.Run("nil payload passes", func(t *testing.T) {
		var p *profilePayload
		assert.NoError(t, p.validate())
	})

	t.Run("normal fields pass", func(t *testing.T) {
		p := &profilePayload{BusinessType: "manufacturing", State: "Maharashtra"}
		assert.NoError(t, p.validate())
	})

	t.Run("overlong field rejected", func(t *testing.T) {
		p := &profilePayload{State: strings.Repeat("x", 200)}
		assert.Error(t, p.validate())
	})

	t.Run("overlong interest rejected", func(t *testing.T) {
		p := &profilePayload{Interests: []string{"export", strings.Repeat("y", 200)}}
		assert.Error(t, p.validate())
	})
}

func TestMentionedInReply(t *testing.T) {
	entities := []scheme.Entity{
		{ID: "pmegp-0", Name: "Prime Minister's Employment Generation Programme", ShortName: "PMEGP"},
		{ID: "mudra-1", Name: "Mudra Loan Scheme", ShortName: "Mudra Loan Scheme"},
	}

	ids := mentionedInReply("You should apply under PMEGP for the margin money subsidy.", entities)
	assert.Equal(t, []string{"pmegp-0"}, ids)

	ids = mentionedInReply("The Mudra Loan Scheme and PMEGP both fit.", entities)
	assert.Equal(t, []string{"pmegp-0", "mudra-1"}, ids)

	assert.Empty(t, mentionedInReply("No scheme fits your case.", entities))
}
