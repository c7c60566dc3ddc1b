// Package htmlsanitize wraps the bluemonday policies applied to stored
// free text. Listing descriptions keep basic formatting; everything
// else (bios, application notes) is reduced to plain text.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	richPolicy  = richTextPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func richTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "b", "strong", "i", "em", "ul", "ol", "li", "h3", "h4")
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}

// RichText strips everything but basic formatting markup.
func RichText(s string) string {
	return richPolicy.Sanitize(s)
}

// PlainText strips all markup, leaving text content only.
func PlainText(s string) string {
	return plainPolicy.Sanitize(s)
}
