package repositories

import (
	"testing"
	"time"

	"quillpost/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	repo := NewBadgerCommentRepository(openTestDB(t))

	newComment := func(postID int, status models.CommentStatus) *models.Comment {
		return &models.Comment{
			PostID:    postID,
			Author:    "Test Author",
			Content:   "Test Comment Content",
			Status:    status,
			Replies:   []models.Reply{},
			CreatedAt: time.Now(),
		}
	}

	t.Run("create and get comment", func(t *testing.T) {
		comment := newComment(1, models.StatusPending)

		require.NoError(t, repo.Create(comment))
		assert.Greater(t, comment.ID, 0)

		retrieved, err := repo.GetByID(comment.ID)
		require.NoError(t, err)
		assert.Equal(t, comment.Author, retrieved.Author)
		assert.Equal(t, comment.Content, retrieved.Content)
		assert.Equal(t, comment.PostID, retrieved.PostID)
		assert.Equal(t, models.StatusPending, retrieved.Status)
	})

	t.Run("get missing comment", func(t *testing.T) {
		_, err := repo.GetByID(999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update status", func(t *testing.T) {
		comment := newComment(1, models.StatusPending)
		require.NoError(t, repo.Create(comment))

		updated, err := repo.UpdateStatus(comment.ID, models.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, updated.Status)

		stored, err := repo.GetByID(comment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, stored.Status)

		_, err = repo.UpdateStatus(999, models.StatusSpam)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("append reply", func(t *testing.T) {
		comment := newComment(1, models.StatusPending)
		require.NoError(t, repo.Create(comment))

		reply, err := models.NewReply("Replier", "Thanks for the comment")
		require.NoError(t, err)

		updated, err := repo.AppendReply(comment.ID, reply)
		require.NoError(t, err)
		require.Len(t, updated.Replies, 1)
		assert.Equal(t, "Replier", updated.Replies[0].Author)
		assert.Equal(t, models.StatusPending, updated.Status)

		_, err = repo.AppendReply(999, reply)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("increment likes", func(t *testing.T) {
		comment := newComment(1, models.StatusPending)
		require.NoError(t, repo.Create(comment))

		likes, err := repo.IncrementLikes(comment.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, likes)
		likes, err = repo.IncrementLikes(comment.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, likes)
	})

	t.Run("delete comment", func(t *testing.T) {
		comment := newComment(3, models.StatusApproved)
		require.NoError(t, repo.Create(comment))

		deleted, err := repo.Delete(comment.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, deleted.PostID)

		_, err = repo.GetByID(comment.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.Delete(comment.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCommentRepositoryListingAndCounting(t *testing.T) {
	repo := NewBadgerCommentRepository(openTestDB(t))

	create := func(postID int, status models.CommentStatus) *models.Comment {
		c := &models.Comment{
			PostID:    postID,
			Author:    "Author",
			Content:   "Content",
			Status:    status,
			CreatedAt: time.Now(),
		}
		require.NoError(t, repo.Create(c))
		return c
	}

	create(1, models.StatusApproved)
	create(1, models.StatusPending)
	create(1, models.StatusApproved)
	create(1, models.StatusSpam)
	// Post 12 shares the "1" prefix digit with post 1.
	create(12, models.StatusApproved)

	t.Run("list by post", func(t *testing.T) {
		comments, err := repo.ListByPost(1)
		require.NoError(t, err)
		assert.Len(t, comments, 4)
		for _, c := range comments {
			assert.Equal(t, 1, c.PostID)
		}

		comments, err = repo.ListByPost(12)
		require.NoError(t, err)
		assert.Len(t, comments, 1)
	})

	t.Run("list all", func(t *testing.T) {
		comments, err := repo.List()
		require.NoError(t, err)
		require.Len(t, comments, 5)
		for i := 1; i < len(comments); i++ {
			assert.Less(t, comments[i-1].ID, comments[i].ID)
		}
	})

	t.Run("count approved", func(t *testing.T) {
		count, err := repo.CountApproved(1)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = repo.CountApproved(12)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = repo.CountApproved(404)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}
