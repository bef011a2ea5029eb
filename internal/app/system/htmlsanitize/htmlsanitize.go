// Package htmlsanitize cleans user-supplied text before it is stored.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	notesOnce   sync.Once
	notesPolicy *bluemonday.Policy

	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

func notes() *bluemonday.Policy {
	notesOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.RequireNoFollowOnLinks(true)
		p.AllowAttrs("class").OnElements("table", "th", "td")
		notesPolicy = p
	})
	return notesPolicy
}

func strict() *bluemonday.Policy {
	strictOnce.Do(func() { strictPolicy = bluemonday.StrictPolicy() })
	return strictPolicy
}

// Sanitize keeps basic formatting markup (paragraphs, lists, links, tables)
// and removes scripts, event handlers and unsafe URLs. Used for person and
// family notes.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return notes().Sanitize(s)
}

// PlainText removes every tag and unescapes entities. Used for message bodies
// sent over SMS and WhatsApp.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict().Sanitize(s)))
}
