package repositories

import "quillpost/app/models"

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	List() ([]*models.Post, error)
	// Update writes title, content and published. Author, counters and
	// createdAt keep their stored values and are copied back into post.
	Update(post *models.Post) error
	Delete(id int) error

	// Counter operations are single read-modify-write transactions and
	// return the value after the write.
	IncrementViews(id int) (int, error)
	IncrementLikes(id int) (int, error)
	IncrementCommentsCount(id int) (int, error)
	SetCommentsCount(id int, count int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	List() ([]*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	UpdateStatus(id int, status models.CommentStatus) (*models.Comment, error)
	// Delete removes the comment and returns it as it was before removal.
	Delete(id int) (*models.Comment, error)
	IncrementLikes(id int) (int, error)
	AppendReply(id int, reply models.Reply) (*models.Comment, error)
	CountApproved(postID int) (int, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create fails with ErrDuplicate when the email is already registered.
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}
