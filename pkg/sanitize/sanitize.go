// Package sanitize strips markup from user supplied text before it is stored
// or broadcast to other members.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Text removes all HTML, unescapes entities the policy produced and trims
// surrounding whitespace.
func Text(s string) string {
	cleaned := policy().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Texts applies Text to each element, dropping entries that end up empty.
func Texts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := Text(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}
