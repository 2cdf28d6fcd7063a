package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatRequestValidate(t *testing.T) {
	t.Run("normalizes fields", func(t *testing.T) {
		req := ChatRequest{Message: "  need a loan  ", SessionID: " abc ", Language: " HI "}
		assert.NoError(t, req.Validate())
		assert.Equal(t, "need a loan", req.Message)
		assert.Equal(t, "abc", req.SessionID)
		assert.Equal(t, "hi", req.Language)
	})

	t.Run("empty message is allowed", func(t *testing.T) {
		req := ChatRequest{Message: "   "}
		assert.NoError(t, req.Validate())
		assert.Equal(t, "", req.Message)
	})

	t.Run("rejects overlong message", func(t *testing.T) {
		req := ChatRequest{Message: strings.Repeat("a", maxMessageLength+1)}
		assert.Error(t, req.Validate())
	})

	t.Run("rejects overlong session id", func(t *testing.T) {
		req := ChatRequest{Message: "hi", SessionID: strings.Repeat("x", 65)}
		assert.Error(t, req.Validate())
	})

	t.Run("rejects unsupported language", func(t *testing.T) {
		req := ChatRequest{Message: "hi", Language: "fr"}
		assert.Error(t, req.Validate())
	})
}

func TestValidateProfileField(t *testing.T) {
	assert.NoError(t, ValidateProfileField("state", "Maharashtra"))
	assert.Error(t, ValidateProfileField("state", strings.Repeat("x", maxProfileField+1)))
}
