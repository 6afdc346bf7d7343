package controllers

import (
	"log/slog"
	"net/http"

	"quillpost/app/apperr"
	"quillpost/app/auth"
	"quillpost/app/services"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
	logger      *slog.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, logger *slog.Logger) *PostController {
	return &PostController{
		postService: postService,
		logger:      ensureLogger(logger),
	}
}

// Index handles listing the published posts, newest first
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPublished(r.Context())
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Mine lists the caller's posts, drafts included.
func (pc *PostController) Mine(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	posts, err := pc.postService.ListByAuthor(r.Context(), userID)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	var input services.PostInput
	if err := decodeJSON(w, r, &input); err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), userID, input)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Edit handles updating an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	var input services.PostInput
	if err := decodeJSON(w, r, &input); err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), userID, id, input)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	if err := pc.postService.DeletePost(r.Context(), userID, id); err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Like adds one like to a post.
func (pc *PostController) Like(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	likes, err := pc.postService.LikePost(r.Context(), id)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

// View records one view of a post.
func (pc *PostController) View(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	views, err := pc.postService.ViewPost(r.Context(), id)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]int{"views": views})
}

func currentUser(r *http.Request) (int, error) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		return 0, apperr.BadCredentials("authentication required")
	}
	return userID, nil
}
