// Package pii provides best-effort, pattern-based detection and redaction
// of personally identifiable information in captured prompt text, plus
// content fingerprinting. Detection is shape-based, not semantic: false
// positives and negatives are expected.
package pii

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var (
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	cardPattern  = regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
)

// redactions pairs each pattern with its category marker. The card pattern
// must run before the phone pattern so a grouped card number is not
// partially consumed as a phone number.
var redactions = []struct {
	pattern *regexp.Regexp
	marker  string
}{
	{ssnPattern, "[REDACTED-SSN]"},
	{emailPattern, "[REDACTED-EMAIL]"},
	{cardPattern, "[REDACTED-CARD]"},
	{phonePattern, "[REDACTED-PHONE]"},
}

// Detect reports whether text matches any of the four PII shapes
// (SSN, email, card number, phone number). Empty text never matches.
func Detect(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range redactions {
		if r.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// Redact replaces every match of each PII shape with its category marker.
// Idempotent: markers contain no digits or addresses, so re-redacting is
// a no-op.
func Redact(text string) string {
	if text == "" {
		return text
	}
	redacted := text
	for _, r := range redactions {
		redacted = r.pattern.ReplaceAllString(redacted, r.marker)
	}
	return redacted
}

// Fingerprint returns the SHA-256 hex digest of text, or nil for empty
// input. Equal inputs always produce equal digests.
func Fingerprint(text string) *string {
	if text == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(text))
	digest := hex.EncodeToString(sum[:])
	return &digest
}
