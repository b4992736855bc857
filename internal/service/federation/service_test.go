package federation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"human-connection/internal/domain"
	"human-connection/internal/mocks"
	"human-connection/internal/service/federation"
)

func TestParseAccount(t *testing.T) {
	user, host, err := federation.ParseAccount("acct:peter-lustig@example.org")
	require.NoError(t, err)
	assert.Equal(t, "peter-lustig", user)
	assert.Equal(t, "example.org", host)

	for _, bad := range []string{"", "peter-lustig@example.org", "acct:peter-lustig", "acct:@example.org", "acct:peter@"} {
		_, _, err := federation.ParseAccount(bad)
		assert.ErrorIs(t, err, federation.ErrMissingResource, bad)
	}
}

func TestFederationService_WebFinger(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.UserRepository)
	svc, err := federation.NewService(userRepo, "http://localhost:3000/")
	require.NoError(t, err)

	t.Run("Found", func(t *testing.T) {
		userRepo.On("GetBySlug", ctx, "peter-lustig").Return(&domain.User{ID: "u1", Slug: "peter-lustig"}, nil).Once()

		resource, err := svc.WebFinger(ctx, "acct:peter-lustig@localhost")

		require.NoError(t, err)
		assert.Equal(t, "acct:peter-lustig@localhost:3000", resource.Subject)
		require.Len(t, resource.Links, 1)
		assert.Equal(t, "self", resource.Links[0].Rel)
		assert.Equal(t, "application/activity+json", resource.Links[0].Type)
		assert.Equal(t, "http://localhost:3000/activitypub/users/peter-lustig", resource.Links[0].Href)
	})

	t.Run("Unknown User", func(t *testing.T) {
		userRepo.On("GetBySlug", ctx, "nobody").Return(nil, nil).Once()

		_, err := svc.WebFinger(ctx, "acct:nobody@localhost")

		var notFound *federation.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.ErrorIs(t, err, federation.ErrNoRecord)
		assert.Equal(t, `No record found for "nobody@localhost".`, err.Error())
	})

	t.Run("Missing Resource", func(t *testing.T) {
		_, err := svc.WebFinger(ctx, "")

		assert.ErrorIs(t, err, federation.ErrMissingResource)
	})
}
