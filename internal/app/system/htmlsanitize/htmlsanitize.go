// Package htmlsanitize removes markup from user-supplied text before it is stored.
// It uses bluemonday's strict policy, so no element or attribute survives.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds StripTags when unescaping exposes further markup.
const maxPasses = 3

var (
	// policy strips every tag and drops script/style bodies.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// StripTags returns s with all HTML elements removed. Text that holds no
// element is returned unchanged, including text like "7 < 9 > 8" or "<3".
// Once an element is removed, entities are decoded, so
// "<b>Tom</b> &amp; Jerry" becomes "Tom & Jerry".
func StripTags(s string) string {
	for i := 0; i < maxPasses; i++ {
		if !hasMarkup(s) {
			return s
		}
		s = html.UnescapeString(getPolicy().Sanitize(s))
	}
	if hasMarkup(s) {
		// Unescaping keeps reviving markup; settle for the escaped form.
		return getPolicy().Sanitize(s)
	}
	return s
}

// hasMarkup reports whether the policy would drop anything from s. Text with
// no element only comes back re-escaped, so both sides are compared decoded.
func hasMarkup(s string) bool {
	if IsPlainText(s) {
		return false
	}
	return html.UnescapeString(getPolicy().Sanitize(s)) != html.UnescapeString(s)
}

// IsPlainText checks if content appears to be plain text (no HTML tags).
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	// Valid HTML tags require both characters, so if either is missing, treat as plain text
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}
