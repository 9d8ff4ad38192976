// Package verifier compares submitted flags against the stored flag for a
// challenge. Comparison is pure and server-side only: the caller must pass
// the flag freshly read from the store, never one echoed back by a client.
package verifier

import "strings"

// Normalize trims surrounding whitespace and lowercases the flag so that
// copy-paste artifacts and case differences do not fail a correct answer.
func Normalize(flag string) string {
	return strings.ToLower(strings.TrimSpace(flag))
}

// Matches reports whether the submitted flag matches the authoritative one.
func Matches(correct, submitted string) bool {
	return Normalize(correct) == Normalize(submitted)
}

// Valid reports whether a submission is non-empty after normalization.
// Empty submissions are rejected before any store access.
func Valid(submitted string) bool {
	return Normalize(submitted) != ""
}
