package services

import (
	"context"
	"testing"
	"time"

	"quillpost/app/apperr"
	"quillpost/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewPostRepository()
	service := NewPostService(repo, nil)

	const owner, stranger = 1, 2

	t.Run("create post", func(t *testing.T) {
		post, err := service.CreatePost(ctx, owner, PostInput{Title: "  First Post ", Content: "Body", Published: true})
		require.NoError(t, err)
		assert.Equal(t, 1, post.ID)
		assert.Equal(t, "First Post", post.Title)
		assert.Equal(t, owner, post.AuthorID)
		assert.False(t, post.CreatedAt.IsZero())
	})

	t.Run("create invalid post", func(t *testing.T) {
		tests := []struct {
			name  string
			input PostInput
			want  string
		}{
			{"empty title", PostInput{Content: "Body"}, "title is required"},
			{"short title", PostInput{Title: "ab", Content: "Body"}, "title must be at least 3 characters"},
			{"empty content", PostInput{Title: "Valid title"}, "content is required"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := service.CreatePost(ctx, owner, tt.input)
				assert.True(t, apperr.Is(err, apperr.KindValidation))
				assert.Equal(t, tt.want, apperr.Message(err))
			})
		}
	})

	t.Run("get post", func(t *testing.T) {
		post, err := service.GetPost(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "First Post", post.Title)

		_, err = service.GetPost(ctx, 999)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("like and view", func(t *testing.T) {
		likes, err := service.LikePost(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, likes)

		views, err := service.ViewPost(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, views)

		post, err := service.GetPost(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, post.CommentsCount)

		_, err = service.LikePost(ctx, 999)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("update post", func(t *testing.T) {
		require.NoError(t, repo.SetCommentsCount(1, 5))

		post, err := service.UpdatePost(ctx, owner, 1, PostInput{Title: "Edited", Content: "New body"})
		require.NoError(t, err)
		assert.Equal(t, "Edited", post.Title)
		assert.False(t, post.Published)
		assert.Equal(t, 1, post.Likes)
		assert.Equal(t, 1, post.Views)
		assert.Equal(t, 5, post.CommentsCount)

		_, err = service.UpdatePost(ctx, stranger, 1, PostInput{Title: "Hijacked", Content: "x"})
		assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))
		assert.Equal(t, 403, apperr.Status(err))

		_, err = service.UpdatePost(ctx, owner, 1, PostInput{Title: "", Content: "x"})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("feeds", func(t *testing.T) {
		_, err := service.CreatePost(ctx, owner, PostInput{Title: "Second Post", Content: "Body", Published: true})
		require.NoError(t, err)
		_, err = service.CreatePost(ctx, stranger, PostInput{Title: "Other Post", Content: "Body", Published: true})
		require.NoError(t, err)

		published, err := service.ListPublished(ctx)
		require.NoError(t, err)
		require.Len(t, published, 2)
		assert.Equal(t, "Other Post", published[0].Title)
		assert.Equal(t, "Second Post", published[1].Title)

		mine, err := service.ListByAuthor(ctx, owner)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "Second Post", mine[0].Title)
		assert.Equal(t, "Edited", mine[1].Title)
	})

	t.Run("delete post", func(t *testing.T) {
		err := service.DeletePost(ctx, stranger, 1)
		assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

		require.NoError(t, service.DeletePost(ctx, owner, 1))
		_, err = service.GetPost(ctx, 1)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		err = service.DeletePost(ctx, owner, 1)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("store failure", func(t *testing.T) {
		repo.FailOn("List", errStore)
		defer repo.FailOn("List", nil)

		_, err := service.ListPublished(ctx)
		assert.True(t, apperr.Is(err, apperr.KindTransient))
		assert.Equal(t, "failed to list posts", apperr.Message(err))
	})
}

func TestListPublishedNewestFirst(t *testing.T) {
	repo := mock.NewPostRepository()
	service := NewPostService(repo, nil)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Oldest", "Newest", "Middle"} {
		post, err := service.CreatePost(ctx, 1, PostInput{Title: title, Content: "Body", Published: true})
		require.NoError(t, err)
		offsets := []time.Duration{0, 48 * time.Hour, 24 * time.Hour}
		post.CreatedAt = base.Add(offsets[i])
		repo.Put(post)
	}
	_, err := service.CreatePost(ctx, 1, PostInput{Title: "Draft", Content: "Body"})
	require.NoError(t, err)

	posts, err := service.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "Newest", posts[0].Title)
	assert.Equal(t, "Middle", posts[1].Title)
	assert.Equal(t, "Oldest", posts[2].Title)
}
