package post_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"human-connection/internal/domain"
	"human-connection/internal/events"
	"human-connection/internal/metrics"
	"human-connection/internal/mocks"
	"human-connection/internal/repository"
	"human-connection/internal/service/post"
	"human-connection/internal/service/resolver"
)

type fixture struct {
	svc      post.Service
	postRepo *mocks.PostRepository
	userRepo *mocks.UserRepository
	notifier *mocks.NotificationService
	bus      *events.MemoryBus
	mr       *miniredis.Miniredis
	metrics  *metrics.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	f := &fixture{
		postRepo: new(mocks.PostRepository),
		userRepo: new(mocks.UserRepository),
		notifier: new(mocks.NotificationService),
		bus:      events.NewMemoryBus(zap.NewNop()),
		mr:       mr,
		metrics:  metrics.New(),
	}
	t.Cleanup(func() { f.bus.Close() })

	mutations := resolver.NewMutations(f.postRepo.SlugExists, f.notifier, new(mocks.CommentRepository), zap.NewNop())
	f.svc = post.NewService(f.postRepo, f.userRepo, mutations, f.bus, rdb, nil, f.metrics, zap.NewNop())
	return f
}

func (f *fixture) blocks(viewerID string, blocked, blockedBy []string) {
	f.userRepo.On("BlockedUserIDs", mock.Anything, viewerID).Return(blocked, nil)
	f.userRepo.On("BlockedByUserIDs", mock.Anything, viewerID).Return(blockedBy, nil)
}

func TestPostService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	viewer := domain.Viewer{ID: "u1", Role: domain.RoleUser}

	sub, err := f.bus.Subscribe(ctx, domain.PostAddedTopic)
	require.NoError(t, err)
	defer sub.Close()

	f.postRepo.On("SlugExists", mock.Anything, "hello-world").Return(true, nil).Once()
	f.postRepo.On("SlugExists", mock.Anything, "hello-world-1").Return(false, nil).Once()
	f.postRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
		return p.ID == "p1" && p.AuthorID == "u1" && p.Slug == "hello-world-1" && p.ContentExcerpt == "first post"
	})).Return(nil).Once()
	f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", AuthorID: "u1", Slug: "hello-world-1", Title: "Hello World"}, nil).Once()
	f.notifier.On("Notify", mock.Anything, domain.KindPost, "p1", []string{}, domain.ReasonMentionedInPost).Return(nil).Once()

	created, err := f.svc.Create(ctx, viewer, domain.CreatePostInput{ID: "p1", Title: "Hello World", Content: "<p>first post</p>"})

	require.NoError(t, err)
	assert.Equal(t, "hello-world-1", created.Slug)
	f.postRepo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)

	select {
	case msg := <-sub.Events():
		var added domain.PostAdded
		require.NoError(t, msg.Decode(&added))
		assert.Equal(t, "p1", added.Post.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("post_added was not published")
	}

	count, err := testutil.GatherAndCount(f.metrics.Registry, "human_connection_events_published_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostService_CreateSlugTaken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	requested := "taken"

	f.postRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrSlugExists).Once()

	_, err := f.svc.Create(ctx, domain.Viewer{ID: "u1"}, domain.CreatePostInput{Title: "Title", Content: "content", Slug: &requested})

	assert.ErrorIs(t, err, post.ErrSlugExists)
	assert.EqualError(t, err, "Post with this slug already exists!")
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostService_UpdateAndDelete_RequireAuthor(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	intruder := domain.Viewer{ID: "u2"}

	f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", AuthorID: "u1"}, nil)

	_, err := f.svc.Update(ctx, intruder, domain.UpdatePostInput{ID: "p1", Title: "New", Content: "new"})
	assert.ErrorIs(t, err, post.ErrNotAuthor)

	_, err = f.svc.Delete(ctx, intruder, "p1")
	assert.ErrorIs(t, err, post.ErrNotAuthor)

	f.postRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.postRepo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}

func TestPostService_UpdateKeepsOwnSlug(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	author := domain.Viewer{ID: "u1"}

	f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", AuthorID: "u1", Slug: "hello"}, nil).Once()
	f.postRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
		return p.Slug == "hello"
	}), []string(nil)).Return(&domain.Post{ID: "p1", AuthorID: "u1", Slug: "hello"}, nil).Once()
	f.notifier.On("Notify", mock.Anything, domain.KindPost, "p1", []string{}, domain.ReasonMentionedInPost).Return(nil).Once()

	updated, err := f.svc.Update(ctx, author, domain.UpdatePostInput{ID: "p1", Title: "Hello", Content: "changed"})

	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Slug)
	f.postRepo.AssertNotCalled(t, "SlugExists", mock.Anything, "hello")
	f.postRepo.AssertExpectations(t)
}

func TestPostService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Hides Blocked Authors And Keeps Pinned", func(t *testing.T) {
		f := setup(t)
		viewer := domain.Viewer{ID: "u1", Role: domain.RoleUser}
		f.blocks("u1", []string{"b1"}, []string{"b2"})

		lang := domain.PostFilter{LanguageIn: []string{"de"}}
		f.postRepo.On("List", mock.Anything, mock.MatchedBy(func(q repository.PostQuery) bool {
			if len(q.Filter.OR) != 2 || q.Filter.OR[0].Pinned == nil || !*q.Filter.OR[0].Pinned {
				return false
			}
			inner := q.Filter.OR[1]
			return !q.IncludeDisabled &&
				assert.ObjectsAreEqual([]string{"de"}, inner.LanguageIn) &&
				inner.AuthorNot != nil &&
				assert.ObjectsAreEqual([]string{"b1", "b2"}, inner.AuthorNot.IDIn)
		}), domain.DefaultPagination()).Return([]domain.Post{{ID: "p1"}}, int64(1), nil).Once()

		result, err := f.svc.List(ctx, viewer, lang, domain.PaginationParams{})

		require.NoError(t, err)
		assert.Len(t, result.Data, 1)
		f.postRepo.AssertExpectations(t)
	})

	t.Run("Anonymous Viewer Skips Block Lookup", func(t *testing.T) {
		f := setup(t)
		f.postRepo.On("List", mock.Anything, mock.MatchedBy(func(q repository.PostQuery) bool {
			return q.Filter.OR[1].IsEmpty()
		}), mock.Anything).Return([]domain.Post{}, int64(0), nil).Once()

		result, err := f.svc.List(ctx, domain.Viewer{}, domain.PostFilter{}, domain.DefaultPagination())

		require.NoError(t, err)
		assert.Empty(t, result.Data)
		f.userRepo.AssertNotCalled(t, "BlockedUserIDs", mock.Anything, mock.Anything)
	})

	t.Run("Moderators See Disabled Posts", func(t *testing.T) {
		f := setup(t)
		f.blocks("m1", nil, nil)
		f.postRepo.On("List", mock.Anything, mock.MatchedBy(func(q repository.PostQuery) bool {
			return q.IncludeDisabled
		}), mock.Anything).Return([]domain.Post{}, int64(0), nil).Once()

		_, err := f.svc.List(ctx, domain.Viewer{ID: "m1", Role: domain.RoleModerator}, domain.PostFilter{}, domain.DefaultPagination())

		require.NoError(t, err)
		f.postRepo.AssertExpectations(t)
	})

	t.Run("Block Lookup Failure", func(t *testing.T) {
		f := setup(t)
		f.userRepo.On("BlockedUserIDs", mock.Anything, "u1").Return(nil, errors.New("down"))
		f.userRepo.On("BlockedByUserIDs", mock.Anything, "u1").Return([]string{}, nil)

		_, err := f.svc.List(ctx, domain.Viewer{ID: "u1"}, domain.PostFilter{}, domain.DefaultPagination())

		assert.Error(t, err)
		f.postRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPostService_Search(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Search(ctx, domain.Viewer{}, "   ", domain.DefaultPagination())
	assert.ErrorIs(t, err, post.ErrEmptyQuery)

	f.postRepo.On("List", mock.Anything, mock.MatchedBy(func(q repository.PostQuery) bool {
		return q.Search == "berlin" && len(q.Filter.OR) == 0
	}), mock.Anything).Return([]domain.Post{{ID: "p1"}}, int64(1), nil).Once()

	result, err := f.svc.Search(ctx, domain.Viewer{}, " berlin ", domain.DefaultPagination())
	require.NoError(t, err)
	assert.Len(t, result.Data, 1)
}

func TestPostService_GetByID(t *testing.T) {
	ctx := context.Background()
	viewer := domain.Viewer{ID: "u1", Role: domain.RoleUser}

	t.Run("Blocked Author", func(t *testing.T) {
		f := setup(t)
		f.blocks("u1", []string{"b1"}, nil)
		f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", AuthorID: "b1"}, nil).Once()

		_, err := f.svc.GetByID(ctx, viewer, "p1")

		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})

	t.Run("Pinned Post Of Blocked Author", func(t *testing.T) {
		f := setup(t)
		f.blocks("u1", []string{"b1"}, nil)
		f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", AuthorID: "b1", Pinned: true}, nil).Once()

		p, err := f.svc.GetByID(ctx, viewer, "p1")

		require.NoError(t, err)
		assert.True(t, p.Pinned)
	})

	t.Run("Disabled Post", func(t *testing.T) {
		f := setup(t)
		f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", AuthorID: "a", Disabled: true}, nil)

		_, err := f.svc.GetByID(ctx, viewer, "p1")
		assert.ErrorIs(t, err, post.ErrPostNotFound)

		f.blocks("m1", nil, nil)
		p, err := f.svc.GetByID(ctx, domain.Viewer{ID: "m1", Role: domain.RoleModerator}, "p1")
		require.NoError(t, err)
		assert.True(t, p.Disabled)
	})
}

func TestPostService_Pin(t *testing.T) {
	ctx := context.Background()
	admin := domain.Viewer{ID: "admin", Role: domain.RoleAdmin}

	t.Run("Replaces Previous Pin", func(t *testing.T) {
		f := setup(t)
		cleared := f.postRepo.On("ClearPins", mock.Anything).Return([]domain.Post{{ID: "old"}}, nil).Once()
		f.postRepo.On("Pin", mock.Anything, "admin", "p2").Return(&domain.Post{ID: "p2", Pinned: true}, nil).Once().NotBefore(cleared)

		pinned, err := f.svc.Pin(ctx, admin, "p2")

		require.NoError(t, err)
		assert.Equal(t, "p2", pinned.ID)
		f.postRepo.AssertExpectations(t)
	})

	t.Run("Not Pinned Returns Nil", func(t *testing.T) {
		f := setup(t)
		f.postRepo.On("ClearPins", mock.Anything).Return([]domain.Post{}, nil).Once()
		f.postRepo.On("Pin", mock.Anything, "u1", "p2").Return(nil, nil).Once()

		pinned, err := f.svc.Pin(ctx, domain.Viewer{ID: "u1"}, "p2")

		require.NoError(t, err)
		assert.Nil(t, pinned)
	})
}

func TestPostService_Emotions(t *testing.T) {
	ctx := context.Background()
	viewer := domain.Viewer{ID: "u1"}

	t.Run("Invalid Emotion", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.AddEmotion(ctx, viewer, "p1", domain.Emotion("bored"))
		assert.ErrorIs(t, err, post.ErrInvalidEmotion)

		_, err = f.svc.EmotionsCount(ctx, "p1", domain.Emotion("bored"))
		assert.ErrorIs(t, err, post.ErrInvalidEmotion)
	})

	t.Run("Count Is Cached Until Emotion Changes", func(t *testing.T) {
		f := setup(t)
		f.postRepo.On("CountEmotions", mock.Anything, "p1", domain.EmotionHappy).Return(int64(3), nil).Once()

		count, err := f.svc.EmotionsCount(ctx, "p1", domain.EmotionHappy)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.True(t, f.mr.Exists("emotions:p1:happy"))

		count, err = f.svc.EmotionsCount(ctx, "p1", domain.EmotionHappy)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		f.postRepo.On("AddEmotion", mock.Anything, "u1", "p1", domain.EmotionHappy).Return(&domain.Emoted{Emotion: domain.EmotionHappy}, nil).Once()
		_, err = f.svc.AddEmotion(ctx, viewer, "p1", domain.EmotionHappy)
		require.NoError(t, err)
		assert.False(t, f.mr.Exists("emotions:p1:happy"))

		f.postRepo.On("CountEmotions", mock.Anything, "p1", domain.EmotionHappy).Return(int64(4), nil).Once()
		count, err = f.svc.EmotionsCount(ctx, "p1", domain.EmotionHappy)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		f.postRepo.AssertExpectations(t)
	})

	t.Run("Missing Post", func(t *testing.T) {
		f := setup(t)
		f.postRepo.On("RemoveEmotion", mock.Anything, "u1", "gone", domain.EmotionCry).Return(nil, nil).Once()

		_, err := f.svc.RemoveEmotion(ctx, viewer, "gone", domain.EmotionCry)

		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})
}

func TestPostService_DeleteDropsEmotionCache(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	author := domain.Viewer{ID: "u1"}

	require.NoError(t, f.mr.Set("emotions:p1:happy", "2"))
	require.NoError(t, f.mr.Set("emotions:p1:angry", "1"))
	require.NoError(t, f.mr.Set("emotions:p2:happy", "5"))

	f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", AuthorID: "u1"}, nil).Once()
	f.postRepo.On("SoftDelete", mock.Anything, "p1").Return(&domain.Post{ID: "p1", Deleted: true, Title: domain.UnavailableContent}, nil).Once()

	deleted, err := f.svc.Delete(ctx, author, "p1")

	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.False(t, f.mr.Exists("emotions:p1:happy"))
	assert.False(t, f.mr.Exists("emotions:p1:angry"))
	assert.True(t, f.mr.Exists("emotions:p2:happy"))
}

func TestPostService_RelatedContributions(t *testing.T) {
	ctx := context.Background()
	viewer := domain.Viewer{ID: "u1", Role: domain.RoleUser}

	t.Run("Hides Blocked Authors", func(t *testing.T) {
		f := setup(t)
		f.blocks("u1", nil, []string{"b1"})
		f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", AuthorID: "a1"}, nil).Once()
		f.postRepo.On("RelatedContributions", mock.Anything, "p1").Return([]domain.Post{
			{ID: "p2", AuthorID: "a2", CommentsCount: 3, EmotionsCount: 1},
			{ID: "p3", AuthorID: "b1"},
		}, nil).Once()

		related, err := f.svc.RelatedContributions(ctx, viewer, "p1")

		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, "p2", related[0].ID)
		assert.Equal(t, int64(3), related[0].CommentsCount)
		assert.Equal(t, int64(1), related[0].EmotionsCount)
	})

	t.Run("Deleted Post", func(t *testing.T) {
		f := setup(t)
		f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", Deleted: true}, nil).Once()

		_, err := f.svc.RelatedContributions(ctx, viewer, "p1")

		assert.ErrorIs(t, err, post.ErrPostNotFound)
		f.postRepo.AssertNotCalled(t, "RelatedContributions", mock.Anything, mock.Anything)
	})

	t.Run("Store Error", func(t *testing.T) {
		f := setup(t)
		f.blocks("u1", nil, nil)
		f.postRepo.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", AuthorID: "a1"}, nil).Once()
		f.postRepo.On("RelatedContributions", mock.Anything, "p1").Return(nil, errors.New("down")).Once()

		_, err := f.svc.RelatedContributions(ctx, viewer, "p1")

		assert.Error(t, err)
	})
}
