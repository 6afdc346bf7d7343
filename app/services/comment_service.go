package services

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"

	"quillpost/app/apperr"
	"quillpost/app/logctx"
	"quillpost/app/metrics"
	"quillpost/app/models"
	"quillpost/app/repositories"

	"github.com/microcosm-cc/bluemonday"
)

// SyncOutcome describes how a synchronization pass ended.
type SyncOutcome string

const (
	SyncSynced             SyncOutcome = "synced"
	SyncSkippedNoPostID    SyncOutcome = "skipped_no_post_id"
	SyncSkippedPostMissing SyncOutcome = "skipped_post_missing"
	SyncFailed             SyncOutcome = "failed"
)

// SyncResult is the soft outcome of recomputing a post's commentsCount.
// A failed pass is reported here, never as an error to the caller.
type SyncResult struct {
	PostID  int
	Count   int
	Outcome SyncOutcome
	Err     error
}

// OK reports whether commentsCount was rewritten.
func (r SyncResult) OK() bool {
	return r.Outcome == SyncSynced
}

// ModerationResult is returned by the status transitions: the committed
// comment plus what happened to the post's count afterwards.
type ModerationResult struct {
	Comment *models.Comment
	Sync    SyncResult
}

// DeleteResult reports whether a comment was removed and, if so, the
// synchronization pass that followed.
type DeleteResult struct {
	Deleted bool
	Sync    *SyncResult
}

// CommentView is a comment joined with its post's title and the display
// name of the post's author.
type CommentView struct {
	*models.Comment
	PostTitle  string `json:"postTitle"`
	PostAuthor string `json:"postAuthor"`
}

// CreateCommentInput is what a reader submits. Status, Likes and Replies
// are optional.
type CreateCommentInput struct {
	Author  string               `json:"author"`
	Content string               `json:"content"`
	PostID  int                  `json:"post"`
	Status  models.CommentStatus `json:"status,omitempty"`
	Likes   int                  `json:"likes,omitempty"`
	Replies []models.Reply       `json:"replies,omitempty"`
}

// CommentService owns every mutation that can change a comment's status
// or its post's commentsCount.
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	userRepo    repositories.UserRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger
	sanitizer   *bluemonday.Policy
}

// NewCommentService creates a new CommentService. logger and m may be nil.
func NewCommentService(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	logger *slog.Logger,
	m *metrics.Metrics,
) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		metrics:     m,
		logger:      logger,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// ListComments returns every comment enriched with its post's title and
// the post author's name. Missing posts or users leave those fields empty.
func (s *CommentService) ListComments(ctx context.Context) ([]CommentView, error) {
	comments, err := s.commentRepo.List()
	if err != nil {
		return nil, apperr.Transient(err, "failed to list comments")
	}

	posts := make(map[int]*models.Post)
	authors := make(map[int]string)
	views := make([]CommentView, 0, len(comments))

	for _, comment := range comments {
		view := CommentView{Comment: comment}

		post, seen := posts[comment.PostID]
		if !seen {
			post, err = s.postRepo.GetByID(comment.PostID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, apperr.Transient(err, "failed to load post %d", comment.PostID)
			}
			posts[comment.PostID] = post
		}

		if post != nil {
			view.PostTitle = post.Title
			name, seen := authors[post.AuthorID]
			if !seen {
				name, err = s.authorName(post.AuthorID)
				if err != nil {
					return nil, err
				}
				authors[post.AuthorID] = name
			}
			view.PostAuthor = name
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *CommentService) authorName(userID int) (string, error) {
	if userID <= 0 || s.userRepo == nil {
		return "", nil
	}
	user, err := s.userRepo.GetByID(userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Transient(err, "failed to load user %d", userID)
	}
	return user.Name, nil
}

// ListPostComments returns a post's approved comments, or all of them
// when includeAll is set (moderator view).
func (s *CommentService) ListPostComments(ctx context.Context, postID int, includeAll bool) ([]*models.Comment, error) {
	if _, err := s.getPost(postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(postID)
	if err != nil {
		return nil, apperr.Transient(err, "failed to list comments for post %d", postID)
	}

	result := make([]*models.Comment, 0, len(comments))
	for _, comment := range comments {
		if includeAll || comment.IsApproved() {
			result = append(result, comment)
		}
	}
	return result, nil
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(ctx context.Context, id int) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, s.commentErr(err, id, "failed to load comment")
	}
	return comment, nil
}

// CreateComment validates and stores a new comment, pending unless a
// status was supplied, then bumps the post's commentsCount by one.
//
// The bump happens whatever the status, so until the next moderation
// action on the post the count includes unmoderated comments. The next
// synchronization pass overwrites it with the approved count.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	author := s.clean(in.Author)
	content := s.clean(in.Content)

	switch {
	case author == "":
		return nil, apperr.Validation("author is required")
	case content == "":
		return nil, apperr.Validation("content is required")
	case in.PostID <= 0:
		return nil, apperr.Validation("post is required")
	case in.Status != "" && !in.Status.Valid():
		return nil, apperr.Validation("status must be one of: pending, approved, spam")
	case in.Likes < 0:
		return nil, apperr.Validation("likes must not be negative")
	}

	replies := make([]models.Reply, 0, len(in.Replies))
	for _, r := range in.Replies {
		reply, err := models.NewReply(s.clean(r.Author), s.clean(r.Content))
		if err != nil {
			return nil, apperr.Validation("invalid reply: %s", models.ValidationMessage(err))
		}
		if !r.CreatedAt.IsZero() {
			reply.CreatedAt = r.CreatedAt
		}
		replies = append(replies, reply)
	}

	if _, err := s.getPost(in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  in.PostID,
		Author:  author,
		Content: content,
		Status:  in.Status,
		Likes:   in.Likes,
		Replies: replies,
	}
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, apperr.Validation(models.ValidationMessage(err))
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, apperr.Transient(err, "failed to create comment")
	}

	if _, err := s.postRepo.IncrementCommentsCount(comment.PostID); err != nil {
		s.absorb(ctx, "comment_count_increment", err,
			"post_id", comment.PostID, "comment_id", comment.ID)
	}

	return comment, nil
}

// Approve marks a comment approved and resynchronizes its post.
func (s *CommentService) Approve(ctx context.Context, id int) (*ModerationResult, error) {
	return s.transition(ctx, id, models.StatusApproved)
}

// Reject marks a comment as spam and resynchronizes its post. It does not
// delete the comment and there is no way back to pending.
func (s *CommentService) Reject(ctx context.Context, id int) (*ModerationResult, error) {
	return s.transition(ctx, id, models.StatusSpam)
}

// transition commits the status change, then runs the best-effort sync.
// Only a failure of the status write is returned.
func (s *CommentService) transition(ctx context.Context, id int, status models.CommentStatus) (*ModerationResult, error) {
	comment, err := s.commentRepo.UpdateStatus(id, status)
	if err != nil {
		return nil, s.commentErr(err, id, "failed to update comment status")
	}

	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(string(status)).Inc()
	}
	logctx.Logger(ctx, s.logger).Info("comment moderated",
		"comment_id", comment.ID, "post_id", comment.PostID, "status", status)

	return &ModerationResult{
		Comment: comment,
		Sync:    s.SyncCommentCount(ctx, comment.PostID),
	}, nil
}

// DeleteComment removes a comment and resynchronizes its post. Deleting a
// comment that does not exist succeeds without doing anything.
func (s *CommentService) DeleteComment(ctx context.Context, id int) (*DeleteResult, error) {
	deleted, err := s.commentRepo.Delete(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return &DeleteResult{}, nil
	}
	if err != nil {
		return nil, apperr.Transient(err, "failed to delete comment %d", id)
	}

	sync := s.SyncCommentCount(ctx, deleted.PostID)
	return &DeleteResult{Deleted: true, Sync: &sync}, nil
}

// LikeComment adds one like and returns the new total.
func (s *CommentService) LikeComment(ctx context.Context, id int) (int, error) {
	likes, err := s.commentRepo.IncrementLikes(id)
	if err != nil {
		return 0, s.commentErr(err, id, "failed to like comment")
	}
	return likes, nil
}

// AddReply appends a reply to a comment. Replies do not affect status or
// the post's count, so no synchronization runs.
func (s *CommentService) AddReply(ctx context.Context, id int, author, content string) (*models.Comment, error) {
	reply, err := models.NewReply(s.clean(author), s.clean(content))
	if err != nil {
		return nil, apperr.Validation(models.ValidationMessage(err))
	}

	comment, err := s.commentRepo.AppendReply(id, reply)
	if err != nil {
		return nil, s.commentErr(err, id, "failed to add reply")
	}
	return comment, nil
}

// SyncCommentCount recomputes a post's commentsCount from the approved
// comments that reference it. It never fails the caller: an empty post ID
// or a missing post is a logged no-op, and store failures are logged,
// counted, and reported only through the returned SyncResult.
func (s *CommentService) SyncCommentCount(ctx context.Context, postID int) SyncResult {
	logger := logctx.Logger(ctx, s.logger).With("post_id", postID)
	result := SyncResult{PostID: postID}

	defer func() {
		if s.metrics != nil {
			s.metrics.CommentSync.WithLabelValues(string(result.Outcome)).Inc()
		}
	}()

	if postID <= 0 {
		logger.Warn("comment sync skipped: no post id")
		result.Outcome = SyncSkippedNoPostID
		return result
	}

	count, err := s.commentRepo.CountApproved(postID)
	if err != nil {
		result.Outcome = SyncFailed
		result.Err = err
		s.absorb(ctx, "comment_sync", err, "post_id", postID, "phase", "count")
		return result
	}

	err = s.postRepo.SetCommentsCount(postID, count)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		logger.Warn("comment sync skipped: post no longer exists")
		result.Outcome = SyncSkippedPostMissing
	case err != nil:
		result.Outcome = SyncFailed
		result.Err = err
		s.absorb(ctx, "comment_sync", err, "post_id", postID, "phase", "write")
	default:
		logger.Debug("comment count synchronized", "count", count)
		result.Outcome = SyncSynced
		result.Count = count
	}
	return result
}

// RecountAll runs a synchronization pass for every post. It backs the
// manual recount command and is never scheduled automatically.
func (s *CommentService) RecountAll(ctx context.Context) ([]SyncResult, error) {
	posts, err := s.postRepo.List()
	if err != nil {
		return nil, apperr.Transient(err, "failed to list posts")
	}

	results := make([]SyncResult, 0, len(posts))
	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.SyncCommentCount(ctx, post.ID))
	}
	return results, nil
}

// absorb records a failed best-effort step without failing the request.
func (s *CommentService) absorb(ctx context.Context, step string, err error, attrs ...any) {
	if s.metrics != nil {
		s.metrics.AbsorbedErrors.WithLabelValues(step).Inc()
	}
	args := append([]any{"step", step, "err", err}, attrs...)
	logctx.Logger(ctx, s.logger).Error("best-effort step failed", args...)
}

func (s *CommentService) getPost(postID int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("post %d not found", postID)
	}
	if err != nil {
		return nil, apperr.Transient(err, "failed to load post %d", postID)
	}
	return post, nil
}

func (s *CommentService) commentErr(err error, id int, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("comment %d not found", id)
	}
	return apperr.Transient(err, "%s", msg)
}

// clean strips markup from reader-supplied text and trims it. The
// sanitizer escapes entities, so the plain text is unescaped again.
func (s *CommentService) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}
