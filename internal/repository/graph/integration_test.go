//go:build integration

package graph_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"human-connection/internal/domain"
	"human-connection/internal/repository"
	"human-connection/internal/repository/graph"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupGraph(t *testing.T) (*repository.Repositories, neo4j.DriverWithContext) {
	t.Helper()
	ctx := context.Background()

	database := getenv("NEO4J_DATABASE", "neo4j")
	driver, err := neo4j.NewDriverWithContext(
		getenv("NEO4J_URI", "bolt://localhost:7687"),
		neo4j.BasicAuth(getenv("NEO4J_USERNAME", "neo4j"), getenv("NEO4J_PASSWORD", "letmein"), ""),
	)
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close(ctx) })

	if err := driver.VerifyConnectivity(ctx); err != nil {
		t.Skipf("neo4j not reachable: %v", err)
	}

	_, err = neo4j.ExecuteQuery(ctx, driver, `MATCH (n) DETACH DELETE n`, nil,
		neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(database))
	require.NoError(t, err)
	require.NoError(t, graph.EnsureSchema(ctx, driver, database))

	return graph.NewRepositories(driver, database), driver
}

func createUser(t *testing.T, repos *repository.Repositories, slug string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.New().String(),
		Slug:         slug,
		Name:         slug,
		Email:        slug + "@example.org",
		PasswordHash: "x",
		Role:         string(role),
	}
	require.NoError(t, repos.User.Create(context.Background(), u))
	return u
}

func createPost(t *testing.T, repos *repository.Repositories, author *domain.User, slug string) *domain.Post {
	t.Helper()
	p := &domain.Post{
		ID:       uuid.New().String(),
		AuthorID: author.ID,
		Slug:     slug,
		Title:    slug,
		Content:  "<p>" + slug + "</p>",
	}
	require.NoError(t, repos.Post.Create(context.Background(), p))
	return p
}

func TestNeo4j_SlugUniqueness(t *testing.T) {
	repos, _ := setupGraph(t)
	ctx := context.Background()
	author := createUser(t, repos, "jenny", domain.RoleUser)
	createPost(t, repos, author, "hello")

	exists, err := repos.Post.SlugExists(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repos.Post.Create(ctx, &domain.Post{ID: uuid.New().String(), AuthorID: author.ID, Slug: "hello", Title: "t", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrSlugExists)

	err = repos.User.Create(ctx, &domain.User{ID: uuid.New().String(), Slug: "jenny", Name: "J", Email: "other@example.org", PasswordHash: "x", Role: string(domain.RoleUser)})
	assert.ErrorIs(t, err, domain.ErrSlugExists)
}

func TestNeo4j_PinRequiresAdmin(t *testing.T) {
	repos, _ := setupGraph(t)
	ctx := context.Background()

	admin := createUser(t, repos, "admin", domain.RoleAdmin)
	user := createUser(t, repos, "user", domain.RoleUser)
	p := createPost(t, repos, user, "news")

	notPinned, err := repos.Post.Pin(ctx, user.ID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, notPinned)

	pinned, err := repos.Post.Pin(ctx, admin.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, pinned)
	assert.True(t, pinned.Pinned)

	unpinned, err := repos.Post.Unpin(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, unpinned)
	assert.False(t, unpinned.Pinned)
}

func TestNeo4j_BlockLists(t *testing.T) {
	repos, _ := setupGraph(t)
	ctx := context.Background()

	alice := createUser(t, repos, "alice", domain.RoleUser)
	bob := createUser(t, repos, "bob", domain.RoleUser)

	require.NoError(t, repos.User.Block(ctx, alice.ID, bob.ID))

	blocked, err := repos.User.BlockedUserIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, blocked)

	blockedBy, err := repos.User.BlockedByUserIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, blockedBy)

	require.NoError(t, repos.User.Unblock(ctx, alice.ID, bob.ID))
	blocked, err = repos.User.BlockedUserIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, blocked)
}

func createCategory(t *testing.T, driver neo4j.DriverWithContext, slug string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := neo4j.ExecuteQuery(context.Background(), driver,
		`CREATE (:Category {id: $id, slug: $slug, name: $slug})`, map[string]any{"id": id, "slug": slug},
		neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(getenv("NEO4J_DATABASE", "neo4j")))
	require.NoError(t, err)
	return id
}

func TestNeo4j_RepeatedNotifyKeepsCreatedAt(t *testing.T) {
	repos, _ := setupGraph(t)
	ctx := context.Background()

	author := createUser(t, repos, "author", domain.RoleUser)
	friend := createUser(t, repos, "friend", domain.RoleUser)
	p := createPost(t, repos, author, "mentions")

	written, err := repos.Notification.Notify(ctx, domain.KindPost, p.ID, []string{friend.ID}, domain.ReasonMentionedInPost)
	require.NoError(t, err)
	require.Equal(t, int64(1), written)
	_, err = repos.Notification.MarkAsRead(ctx, friend.ID, p.ID, domain.ReasonMentionedInPost)
	require.NoError(t, err)

	first, _, err := repos.Notification.ListByUser(ctx, friend.ID, false, domain.DefaultPagination())
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.True(t, first[0].Read)

	time.Sleep(20 * time.Millisecond)
	_, err = repos.Notification.Notify(ctx, domain.KindPost, p.ID, []string{friend.ID}, domain.ReasonMentionedInPost)
	require.NoError(t, err)

	second, _, err := repos.Notification.ListByUser(ctx, friend.ID, false, domain.DefaultPagination())
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.True(t, first[0].CreatedAt.Equal(second[0].CreatedAt))
	assert.True(t, second[0].UpdatedAt.After(first[0].UpdatedAt))
	assert.False(t, second[0].Read)
}

func TestNeo4j_PinReplacesPreviousPin(t *testing.T) {
	repos, _ := setupGraph(t)
	ctx := context.Background()

	admin := createUser(t, repos, "admin", domain.RoleAdmin)
	a := createPost(t, repos, admin, "first")
	b := createPost(t, repos, admin, "second")

	_, err := repos.Post.ClearPins(ctx)
	require.NoError(t, err)
	_, err = repos.Post.Pin(ctx, admin.ID, a.ID)
	require.NoError(t, err)

	cleared, err := repos.Post.ClearPins(ctx)
	require.NoError(t, err)
	require.Len(t, cleared, 1)
	assert.Equal(t, a.ID, cleared[0].ID)
	_, err = repos.Post.Pin(ctx, admin.ID, b.ID)
	require.NoError(t, err)

	gotA, err := repos.Post.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := repos.Post.GetByID(ctx, b.ID)
	require.NoError(t, err)

	assert.False(t, gotA.Pinned)
	assert.Nil(t, gotA.PinnedAt)
	assert.True(t, gotB.Pinned)
	assert.NotNil(t, gotB.PinnedAt)
}

func TestNeo4j_RelatedContributionsAndCounts(t *testing.T) {
	repos, driver := setupGraph(t)
	ctx := context.Background()

	author := createUser(t, repos, "author", domain.RoleUser)
	moderator := createUser(t, repos, "moderator", domain.RoleModerator)
	music := createCategory(t, driver, "music")
	sports := createCategory(t, driver, "sports")

	newPost := func(slug string, categories ...string) *domain.Post {
		p := &domain.Post{ID: uuid.New().String(), AuthorID: author.ID, Slug: slug, Title: slug, Content: slug, CategoryIDs: categories}
		require.NoError(t, repos.Post.Create(ctx, p))
		return p
	}
	origin := newPost("origin", music)
	related := newPost("related", music, sports)
	newPost("unrelated", sports)
	hidden := newPost("hidden", music)
	_, err := repos.Moderation.Disable(ctx, moderator.ID, domain.ModerationTarget{Kind: domain.KindPost, ID: hidden.ID})
	require.NoError(t, err)

	posts, err := repos.Post.RelatedContributions(ctx, origin.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, related.ID, posts[0].ID)

	visible := &domain.Comment{ID: uuid.New().String(), PostID: related.ID, AuthorID: author.ID, Content: "one"}
	disabled := &domain.Comment{ID: uuid.New().String(), PostID: related.ID, AuthorID: author.ID, Content: "two"}
	require.NoError(t, repos.Comment.Create(ctx, visible))
	require.NoError(t, repos.Comment.Create(ctx, disabled))
	_, err = repos.Moderation.Disable(ctx, moderator.ID, domain.ModerationTarget{Kind: domain.KindComment, ID: disabled.ID})
	require.NoError(t, err)
	_, err = repos.Post.AddEmotion(ctx, author.ID, related.ID, domain.EmotionHappy)
	require.NoError(t, err)
	_, err = repos.Post.AddEmotion(ctx, moderator.ID, related.ID, domain.EmotionFunny)
	require.NoError(t, err)

	got, err := repos.Post.GetByID(ctx, related.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CommentsCount)
	assert.Equal(t, int64(2), got.EmotionsCount)
}
