package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxMessageLength = 2000
	maxProfileField  = 100
)

var supportedLanguages = map[string]bool{
	"": true, "en": true, "hi": true, "bn": true, "ta": true,
	"te": true, "mr": true, "gu": true, "kn": true, "ml": true,
	"pa": true, "or": true,
}

// ChatRequest is the validated shape of an inbound chat payload.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

// Validate normalizes and checks an inbound chat request. Returned
// errors are safe to surface to the client.
func (r *ChatRequest) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))

	// An empty message is allowed; it asks for the popular-scheme
	// digest rather than an answer.
	if utf8.RuneCountInString(r.Message) > maxMessageLength {
		return fmt.Errorf("message exceeds %d characters", maxMessageLength)
	}
	if len(r.SessionID) > 64 {
		return fmt.Errorf("session_id is too long")
	}
	if !supportedLanguages[r.Language] {
		return fmt.Errorf("unsupported language %q", r.Language)
	}
	return nil
}

// ValidateProfileField bounds free-text profile attributes supplied
// by the client.
func ValidateProfileField(name, value string) error {
	if utf8.RuneCountInString(value) > maxProfileField {
		return fmt.Errorf("%s exceeds %d characters", name, maxProfileField)
	}
	return nil
}
