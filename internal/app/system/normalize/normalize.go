// Package normalize holds the canonical forms used when comparing identity
// and configuration values.
package normalize

import "strings"

// Email returns the comparison form of an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Option returns the comparison form of an enumerated config value such as
// invitation_backend or an audit destination.
func Option(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Slug returns the lookup form of a public invitation slug. Generated slugs
// are lowercase, so a guest typing "INV-..." still resolves.
func Slug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
