package repositories

import (
	"fmt"
	"sort"

	"quillpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

func postKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", PostKeyPrefix, id))
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		// Get next ID
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		return setEntity(txn, postKey(post.ID), post)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post

	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves every post ordered by ID
func (r *BadgerPostRepository) List() ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var post models.Post
			err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Keys sort lexically, so post:10 lands before post:2.
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		key := postKey(post.ID)

		var existing models.Post
		if err := getEntity(txn, key, &existing); err != nil {
			return err
		}

		// Counters and ownership are never taken from the caller.
		post.AuthorID = existing.AuthorID
		post.Views = existing.Views
		post.Likes = existing.Likes
		post.CommentsCount = existing.CommentsCount
		post.CreatedAt = existing.CreatedAt

		return setEntity(txn, key, post)
	})
}

// Delete deletes a post by ID. Comments that reference it are left alone.
func (r *BadgerPostRepository) Delete(id int) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		key := postKey(id)

		// Verify post exists
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return txn.Delete(key)
	})
}

// IncrementViews atomically adds one to the post's view counter
func (r *BadgerPostRepository) IncrementViews(id int) (int, error) {
	return r.mutate(id, func(post *models.Post) int {
		post.Views++
		return post.Views
	})
}

// IncrementLikes atomically adds one to the post's like counter
func (r *BadgerPostRepository) IncrementLikes(id int) (int, error) {
	return r.mutate(id, func(post *models.Post) int {
		post.Likes++
		return post.Likes
	})
}

// IncrementCommentsCount atomically adds one to the post's comment counter
func (r *BadgerPostRepository) IncrementCommentsCount(id int) (int, error) {
	return r.mutate(id, func(post *models.Post) int {
		post.CommentsCount++
		return post.CommentsCount
	})
}

// SetCommentsCount overwrites the post's comment counter
func (r *BadgerPostRepository) SetCommentsCount(id int, count int) error {
	if count < 0 {
		return fmt.Errorf("comments count cannot be negative: %d", count)
	}
	_, err := r.mutate(id, func(post *models.Post) int {
		post.CommentsCount = count
		return count
	})
	return err
}

// mutate loads a post, applies fn and writes it back in one transaction.
// Counter changes do not bump UpdatedAt; that tracks author edits.
func (r *BadgerPostRepository) mutate(id int, fn func(post *models.Post) int) (int, error) {
	var result int
	err := updateWithRetry(r.db, func(txn *badger.Txn) error {
		key := postKey(id)
		var post models.Post
		if err := getEntity(txn, key, &post); err != nil {
			return err
		}
		result = fn(&post)
		return setEntity(txn, key, &post)
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

var _ PostRepository = (*BadgerPostRepository)(nil)
