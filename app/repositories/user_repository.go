package repositories

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"quillpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// userDocument is the stored form of a user. models.User hides the
// password hash from JSON, so it is persisted through this type instead.
type userDocument struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toUserDocument(u *models.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (d userDocument) user() *models.User {
	return &models.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

func userKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", UserKeyPrefix, id))
}

func userEmailKey(email string) []byte {
	return []byte(UserEmailKeyPrefix + email)
}

// Create stores a new user and reserves its email address
func (r *BadgerUserRepository) Create(user *models.User) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		emailKey := userEmailKey(user.Email)
		_, err := txn.Get(emailKey)
		if err == nil {
			return ErrDuplicate
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		if err := setEntity(txn, userKey(id), toUserDocument(user)); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(strconv.Itoa(id)))
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var doc userDocument
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, userKey(id), &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.user(), nil
}

// GetByEmail retrieves a user by their (normalized) email address
func (r *BadgerUserRepository) GetByEmail(email string) (*models.User, error) {
	var doc userDocument
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(string(raw))
		if err != nil {
			return fmt.Errorf("corrupt email index for %q: %w", email, err)
		}
		return getEntity(txn, userKey(id), &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.user(), nil
}

var _ UserRepository = (*BadgerUserRepository)(nil)
