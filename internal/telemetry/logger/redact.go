package logger

import (
	"log/slog"
	"strings"
)

// Value prefixes of references that embed credentials.
var sensitiveValuePrefixes = []string{
	"secret://",
	"vault://",
}

// Key name fragments that mark a configuration entry as sensitive.
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"credential",
	"private",
}

var keyNormalizer = strings.NewReplacer("-", "", "_", "", ".", "")

const redactedValue = "***REDACTED***"

// redactSensitive masks attributes whose key or value looks secret.
func redactSensitive(a slog.Attr) slog.Attr {
	// Value prefixes take priority over key-based detection.
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		for _, prefix := range sensitiveValuePrefixes {
			if strings.HasPrefix(strVal, prefix) {
				return slog.String(a.Key, maskValue(strVal, prefix))
			}
		}

		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskValue keeps the prefix and the first and last three characters.
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

// Redact returns the display form of a configuration value stored under
// key: fully redacted for sensitive key names, partially masked for secret
// references, unchanged otherwise.
func Redact(key, value string) string {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return maskValue(value, prefix)
		}
	}
	if value != "" && IsSensitiveKey(key) {
		return redactedValue
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
// Dots, dashes, underscores and case are ignored, so "db.Password" and "API-Key" match.
func IsSensitiveKey(key string) bool {
	normalized := keyNormalizer.Replace(strings.ToLower(key))
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(normalized, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value is a secret reference.
func IsSensitiveValue(value string) bool {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
