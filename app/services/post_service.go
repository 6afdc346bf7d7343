package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"quillpost/app/apperr"
	"quillpost/app/logctx"
	"quillpost/app/models"
	"quillpost/app/repositories"
)

// PostInput is the editable part of a post.
type PostInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// PostService handles business logic for blog posts
type PostService struct {
	postRepo repositories.PostRepository
	logger   *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		postRepo: postRepo,
		logger:   logger,
	}
}

// CreatePost creates a new blog post owned by authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID int, in PostInput) (*models.Post, error) {
	post := &models.Post{
		AuthorID:  authorID,
		Title:     in.Title,
		Content:   in.Content,
		Published: in.Published,
	}
	post.Normalize()
	post.BeforeCreate()

	if err := post.Validate(); err != nil {
		return nil, apperr.Validation(models.ValidationMessage(err))
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, apperr.Transient(err, "failed to create post")
	}

	logctx.Logger(ctx, s.logger).Info("post created", "post_id", post.ID, "author_id", authorID)
	return post, nil
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, postErr(err, id, "failed to load post")
	}
	return post, nil
}

// ListPublished returns the public feed, newest first.
func (s *PostService) ListPublished(ctx context.Context) ([]*models.Post, error) {
	return s.list(func(p *models.Post) bool { return p.Published })
}

// ListByAuthor returns every post of one author, drafts included.
func (s *PostService) ListByAuthor(ctx context.Context, authorID int) ([]*models.Post, error) {
	return s.list(func(p *models.Post) bool { return p.AuthorID == authorID })
}

func (s *PostService) list(keep func(*models.Post) bool) ([]*models.Post, error) {
	posts, err := s.postRepo.List()
	if err != nil {
		return nil, apperr.Transient(err, "failed to list posts")
	}

	result := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		if keep(post) {
			result = append(result, post)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// UpdatePost replaces the title, content and published flag. Counters and
// createdAt are left as they are. Only the author may update a post.
func (s *PostService) UpdatePost(ctx context.Context, userID, id int, in PostInput) (*models.Post, error) {
	post, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Content = in.Content
	post.Published = in.Published
	post.Normalize()
	post.UpdatedAt = time.Now()

	if err := post.Validate(); err != nil {
		return nil, apperr.Validation(models.ValidationMessage(err))
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, postErr(err, id, "failed to update post")
	}
	return post, nil
}

// DeletePost removes a post. Its comments are left in place; the comment
// sync treats them as orphans.
func (s *PostService) DeletePost(ctx context.Context, userID, id int) error {
	if _, err := s.owned(userID, id); err != nil {
		return err
	}

	if err := s.postRepo.Delete(id); err != nil {
		return postErr(err, id, "failed to delete post")
	}

	logctx.Logger(ctx, s.logger).Info("post deleted", "post_id", id, "author_id", userID)
	return nil
}

// LikePost adds one like and returns the new total.
func (s *PostService) LikePost(ctx context.Context, id int) (int, error) {
	likes, err := s.postRepo.IncrementLikes(id)
	if err != nil {
		return 0, postErr(err, id, "failed to like post")
	}
	return likes, nil
}

// ViewPost records one view and returns the new total.
func (s *PostService) ViewPost(ctx context.Context, id int) (int, error) {
	views, err := s.postRepo.IncrementViews(id)
	if err != nil {
		return 0, postErr(err, id, "failed to record view")
	}
	return views, nil
}

func (s *PostService) owned(userID, id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, postErr(err, id, "failed to load post")
	}
	if !post.IsOwnedBy(userID) {
		return nil, apperr.PermissionDenied("you can only modify your own posts")
	}
	return post, nil
}

func postErr(err error, id int, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("post %d not found", id)
	}
	return apperr.Transient(err, "%s", msg)
}
