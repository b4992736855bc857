package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"human-connection/internal/config"
	"human-connection/internal/pkg/i18n"
)

func newTestService(t *testing.T, locale string) *service {
	t.Helper()
	catalog, err := i18n.Load()
	require.NoError(t, err)
	cfg := &config.Config{ClientURI: "http://localhost:3000", EmailLocale: locale}
	return NewService(cfg, catalog, zap.NewNop()).(*service)
}

func TestRender_Verification(t *testing.T) {
	s := newTestService(t, "en")
	msg := s.compose("verification", message{
		Name:  "Jenny",
		Email: "new@example.org",
		Nonce: "123456",
		Link:  "http://localhost:3000/settings/my-email-address/verify?email=new%40example.org&nonce=123456",
	})

	body, err := render("email_verification.html", msg)
	require.NoError(t, err)

	assert.Equal(t, "Confirm your email address", msg.Text["subject"])
	assert.Contains(t, body, "Hello Jenny,")
	assert.Contains(t, body, "<strong>123456</strong>")
	assert.Contains(t, body, "nonce=123456")
	assert.Contains(t, body, "Human Connection")
}

func TestRender_SignupLocalized(t *testing.T) {
	s := newTestService(t, "de")
	msg := s.compose("signup", message{Name: "Jenny", Link: "http://localhost:3000/login"})

	body, err := render("signup.html", msg)
	require.NoError(t, err)

	assert.Equal(t, "Willkommen bei Human Connection!", msg.Text["subject"])
	assert.Contains(t, body, "Willkommen Jenny,")
	assert.Contains(t, body, `href="http://localhost:3000/login"`)
}
