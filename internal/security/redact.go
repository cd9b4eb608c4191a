package security

import "strings"

// Payload keys whose values never reach the logs. The browser sends a
// full user blob and session material alongside each action request.
var sensitiveKeys = []string{
	"user",
	"token",
	"session",
	"cookie",
	"auth",
	"password",
	"secret",
	"signature",
}

// RedactPayload returns a copy of an inbound payload with sensitive
// values replaced, for logging.
func RedactPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	redacted := make(map[string]any, len(payload))
	for key, value := range payload {
		if isSensitiveKey(key) {
			redacted[key] = "***"
			continue
		}
		redacted[key] = value
	}
	return redacted
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, part := range sensitiveKeys {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
