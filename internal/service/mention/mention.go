// Package mention finds user mentions in post and comment HTML.
package mention

import (
	"strings"

	"golang.org/x/net/html"
)

const (
	mentionClass = "mention"
	idAttr       = "data-mention-id"
)

// Extract returns the ids of every <a class="mention" data-mention-id="..."> in
// content, deduplicated in order of first appearance.
func Extract(content string) []string {
	ids := []string{}
	if strings.TrimSpace(content) == "" {
		return ids
	}

	seen := make(map[string]struct{})
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ids
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "a" {
				continue
			}
			id, ok := mentionID(tok.Attr)
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
}

func mentionID(attrs []html.Attribute) (string, bool) {
	var id string
	var isMention bool
	for _, a := range attrs {
		switch a.Key {
		case "class":
			for _, class := range strings.Fields(a.Val) {
				if class == mentionClass {
					isMention = true
				}
			}
		case idAttr:
			id = strings.TrimSpace(a.Val)
		}
	}
	return id, isMention && id != ""
}
