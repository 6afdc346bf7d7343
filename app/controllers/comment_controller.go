package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"quillpost/app/auth"
	"quillpost/app/services"
)

// SyncOutcomeHeader reports how the post's commentsCount sync ended after
// a moderation request. The request itself succeeds either way.
const SyncOutcomeHeader = "X-Comment-Sync"

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
	logger         *slog.Logger
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, logger *slog.Logger) *CommentController {
	return &CommentController{
		commentService: commentService,
		logger:         ensureLogger(logger),
	}
}

type replyRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Index lists every comment with its post's title and author.
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	comments, err := cc.commentService.ListComments(r.Context())
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// ForPost lists the approved comments of a post. Any caller with a valid
// token sees every status; there is no separate moderator role.
func (cc *CommentController) ForPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}

	_, authenticated := auth.UserIDFrom(r.Context())
	comments, err := cc.commentService.ListPostComments(r.Context(), postID, authenticated)
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// Show returns a single comment.
func (cc *CommentController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}

	comment, err := cc.commentService.GetComment(r.Context(), id)
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// Create handles creating a new comment
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCommentInput
	if err := decodeJSON(w, r, &input); err != nil {
		sendError(w, r, cc.logger, err)
		return
	}

	comment, err := cc.commentService.CreateComment(r.Context(), input)
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}
	sendJSON(w, http.StatusCreated, comment)
}

// Approve marks a comment approved.
func (cc *CommentController) Approve(w http.ResponseWriter, r *http.Request) {
	cc.moderate(w, r, cc.commentService.Approve)
}

// Reject marks a comment as spam.
func (cc *CommentController) Reject(w http.ResponseWriter, r *http.Request) {
	cc.moderate(w, r, cc.commentService.Reject)
}

type transition func(ctx context.Context, id int) (*services.ModerationResult, error)

func (cc *CommentController) moderate(w http.ResponseWriter, r *http.Request, op transition) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}

	result, err := op(r.Context(), id)
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}
	w.Header().Set(SyncOutcomeHeader, string(result.Sync.Outcome))
	sendJSON(w, http.StatusOK, result.Comment)
}

// Delete handles deleting a comment. Unknown IDs succeed.
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}

	result, err := cc.commentService.DeleteComment(r.Context(), id)
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}
	if result.Sync != nil {
		w.Header().Set(SyncOutcomeHeader, string(result.Sync.Outcome))
	}
	sendJSON(w, http.StatusOK, map[string]bool{"deleted": result.Deleted})
}

// Like adds one like to a comment.
func (cc *CommentController) Like(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}

	likes, err := cc.commentService.LikeComment(r.Context(), id)
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

// Reply appends a reply to a comment.
func (cc *CommentController) Reply(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}

	var req replyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendError(w, r, cc.logger, err)
		return
	}

	comment, err := cc.commentService.AddReply(r.Context(), id, req.Author, req.Content)
	if err != nil {
		sendError(w, r, cc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}
