// Package htmltext reduces rich-text post and comment bodies to plain text.
package htmltext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const ExcerptLength = 200

// Text returns the visible text of an HTML fragment with whitespace collapsed.
func Text(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if isBlock(string(name)) {
				b.WriteByte(' ')
			}
		}
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "br", "div", "li", "ul", "ol", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6", "pre":
		return true
	}
	return false
}

// Excerpt returns at most ExcerptLength runes of visible text, ending with an
// ellipsis when shortened.
func Excerpt(fragment string) string {
	text := Text(fragment)
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	runes := []rune(text)
	cut := strings.TrimSpace(string(runes[:ExcerptLength-1]))
	return cut + "…"
}
