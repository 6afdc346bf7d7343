package repositories

import (
	"errors"
	"fmt"
	"sort"

	"quillpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
//
// Comments live under comment:<postID>:<id> so a post's comments can be
// scanned by prefix. A commentref:<id> entry points at that key so lookups
// by comment ID do not need a full scan.
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", CommentKeyPrefix, postID, id))
}

func commentRefKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", CommentRefKeyPrefix, id))
}

func postCommentsPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%d:", CommentKeyPrefix, postID))
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		// Get next ID
		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		// Save comment with post ID in key for efficient listing
		key := commentKey(comment.PostID, comment.ID)
		if err := setEntity(txn, key, comment); err != nil {
			return err
		}
		return txn.Set(commentRefKey(comment.ID), key)
	})
}

// lookupKey resolves a comment ID to its primary key.
func lookupKey(txn *badger.Txn, id int) ([]byte, error) {
	item, err := txn.Get(commentRefKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// loadComment resolves and reads a comment inside txn.
func loadComment(txn *badger.Txn, id int) ([]byte, *models.Comment, error) {
	key, err := lookupKey(txn, id)
	if err != nil {
		return nil, nil, err
	}
	var comment models.Comment
	if err := getEntity(txn, key, &comment); err != nil {
		return nil, nil, err
	}
	return key, &comment, nil
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment *models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		_, comment, err = loadComment(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// List retrieves every comment ordered by ID
func (r *BadgerCommentRepository) List() ([]*models.Comment, error) {
	comments, err := r.scan([]byte(CommentKeyPrefix), nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// ListByPost retrieves all comments for a post
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments, err := r.scan(postCommentsPrefix(postID), nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// CountApproved counts the approved comments of a post by scanning them.
func (r *BadgerCommentRepository) CountApproved(postID int) (int, error) {
	comments, err := r.scan(postCommentsPrefix(postID), func(c *models.Comment) bool {
		return c.IsApproved()
	})
	if err != nil {
		return 0, err
	}
	return len(comments), nil
}

// scan reads every comment under prefix, keeping those accepted by keep.
func (r *BadgerCommentRepository) scan(prefix []byte, keep func(*models.Comment) bool) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var comment models.Comment
			err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal comment: %w", err)
			}
			if keep == nil || keep(&comment) {
				comments = append(comments, &comment)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateStatus sets the moderation status of a comment
func (r *BadgerCommentRepository) UpdateStatus(id int, status models.CommentStatus) (*models.Comment, error) {
	return r.mutate(id, func(comment *models.Comment) error {
		return comment.SetStatus(status)
	})
}

// AppendReply adds a reply to the end of the comment's reply list
func (r *BadgerCommentRepository) AppendReply(id int, reply models.Reply) (*models.Comment, error) {
	return r.mutate(id, func(comment *models.Comment) error {
		comment.AddReply(reply)
		return nil
	})
}

// IncrementLikes atomically adds one to the comment's like counter
func (r *BadgerCommentRepository) IncrementLikes(id int) (int, error) {
	comment, err := r.mutate(id, func(comment *models.Comment) error {
		comment.Likes++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return comment.Likes, nil
}

// mutate loads a comment, applies fn and writes it back in one transaction.
func (r *BadgerCommentRepository) mutate(id int, fn func(*models.Comment) error) (*models.Comment, error) {
	var updated *models.Comment
	err := updateWithRetry(r.db, func(txn *badger.Txn) error {
		key, comment, err := loadComment(txn, id)
		if err != nil {
			return err
		}
		if err := fn(comment); err != nil {
			return err
		}
		updated = comment
		return setEntity(txn, key, comment)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) (*models.Comment, error) {
	var deleted *models.Comment
	err := updateWithRetry(r.db, func(txn *badger.Txn) error {
		key, comment, err := loadComment(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		deleted = comment
		return txn.Delete(commentRefKey(id))
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

var _ CommentRepository = (*BadgerCommentRepository)(nil)
