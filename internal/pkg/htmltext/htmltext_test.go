package htmltext

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	in := `<p>Hey <a class="mention" data-mention-id="u1" href="/profile/u1">@alice</a>,</p><p>look&nbsp;here</p>`
	assert.Equal(t, "Hey @alice, look here", Text(in))
}

func TestText_Plain(t *testing.T) {
	assert.Equal(t, "just text", Text("  just \n text "))
	assert.Equal(t, "", Text(""))
}

func TestExcerpt(t *testing.T) {
	short := "<p>short</p>"
	assert.Equal(t, "short", Excerpt(short))

	long := "<p>" + strings.Repeat("word ", 100) + "</p>"
	got := Excerpt(long)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), ExcerptLength)
	assert.True(t, strings.HasSuffix(got, "…"))
}
