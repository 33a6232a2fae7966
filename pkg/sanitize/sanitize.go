package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips every HTML tag from user supplied text and trims the result.
// Entities escaped by the policy are decoded again so plain punctuation
// survives storage unchanged.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Ptr applies Text to an optional value. nil stays nil.
func Ptr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	return &v
}
