package repositories

import (
	"bytes"
	"testing"
	"time"

	"quillpost/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	repo := NewBadgerUserRepository(openTestDB(t))

	user := &models.User{
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "hashed",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(user))
	assert.Equal(t, 1, user.ID)

	t.Run("get by id keeps password hash", func(t *testing.T) {
		stored, err := repo.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", stored.Name)
		assert.Equal(t, "hashed", stored.PasswordHash)
	})

	t.Run("get by email", func(t *testing.T) {
		stored, err := repo.GetByEmail("ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.ID)

		_, err = repo.GetByEmail("nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := &models.User{Name: "Other", Email: "ada@example.com", CreatedAt: time.Now()}
		assert.ErrorIs(t, repo.Create(dup), ErrDuplicate)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.GetByID(42)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreOpenInMemory(t *testing.T) {
	store, err := Open("", nil)
	require.NoError(t, err)
	defer store.Close()

	post := &models.Post{Title: "Store post", Content: "Through the store", CreatedAt: time.Now()}
	require.NoError(t, store.Posts.Create(post))

	_, err = store.Posts.GetByID(post.ID)
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	_, err = store.Posts.GetByID(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreBackupRestore(t *testing.T) {
	source, err := Open("", nil)
	require.NoError(t, err)
	defer source.Close()

	post := &models.Post{Title: "Backed up", Content: "Survives the trip", CreatedAt: time.Now()}
	require.NoError(t, source.Posts.Create(post))

	var buf bytes.Buffer
	_, err = source.Backup(&buf)
	require.NoError(t, err)

	target, err := Open("", nil)
	require.NoError(t, err)
	defer target.Close()

	stray := &models.Post{Title: "Overwritten", Content: "Gone after restore", CreatedAt: time.Now()}
	require.NoError(t, target.Posts.Create(stray))
	require.NoError(t, target.Posts.Create(stray))

	require.NoError(t, target.Restore(&buf))

	restored, err := target.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backed up", restored.Title)

	_, err = target.Posts.GetByID(2)
	assert.ErrorIs(t, err, ErrNotFound)

	// The sequence comes along, so new IDs do not collide.
	next := &models.Post{Title: "After restore", Content: "Fresh", CreatedAt: time.Now()}
	require.NoError(t, target.Posts.Create(next))
	assert.Equal(t, post.ID+1, next.ID)
}
