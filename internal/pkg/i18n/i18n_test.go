package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundledLocales(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.True(t, c.HasLocale("en"))
	assert.True(t, c.HasLocale("de"))
	assert.Equal(t, "Welcome to Human Connection!", c.Translate("en", "emails.signup.subject"))
	assert.Equal(t, "Willkommen bei Human Connection!", c.Translate("de", "emails.signup.subject"))
}

func TestTranslate_Fallback(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte("EMAILS:\n  hello: Hello\n  bye: Bye\n")},
		"locales/fr.yaml": {Data: []byte("EMAILS:\n  hello: Bonjour\n")},
		"locales/notes.txt": {Data: []byte("ignored")},
	}
	c, err := LoadFS(fsys, "locales")
	require.NoError(t, err)

	assert.Equal(t, "Bonjour", c.Translate("fr", "emails.hello"))
	assert.Equal(t, "Bye", c.Translate("fr", "emails.bye"))
	assert.Equal(t, "Hello", c.Translate("xx", "emails.hello"))
	assert.Equal(t, "emails.missing", c.Translate("fr", "emails.missing"))
	assert.False(t, c.HasLocale("notes"))

	assert.Equal(t, map[string]string{"hello": "Bonjour", "bye": "Bye"}, c.Section("fr", "emails"))
}

func TestLoadFS_InvalidYAML(t *testing.T) {
	fsys := fstest.MapFS{"locales/en.yaml": {Data: []byte("EMAILS: [unclosed")}}

	_, err := LoadFS(fsys, "locales")

	assert.ErrorContains(t, err, "failed to parse en.yaml")
}
