package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"quillpost/app/auth"
	"quillpost/app/controllers"
	"quillpost/app/metrics"
	"quillpost/app/middleware"
	"quillpost/app/services"

	"github.com/gorilla/mux"
)

// Options carries everything the router needs. Metrics and Logger may be nil.
type Options struct {
	Posts    *services.PostService
	Comments *services.CommentService
	Auth     *services.AuthService
	Tokens   *auth.Tokens
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// ModerationRequireAuth puts approve, reject and comment deletion
	// behind a bearer token.
	ModerationRequireAuth bool
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(opts Options) *mux.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := mux.NewRouter()
	router.NotFoundHandler = jsonError(http.StatusNotFound, "not found")
	router.MethodNotAllowedHandler = jsonError(http.StatusMethodNotAllowed, "method not allowed")

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger, opts.Metrics))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.ContentTypeJSON)

	authn := middleware.NewAuthenticator(opts.Tokens)
	postController := controllers.NewPostController(opts.Posts, logger)
	commentController := controllers.NewCommentController(opts.Comments, logger)
	authController := controllers.NewAuthController(opts.Auth, logger)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}

	// Auth endpoints
	router.HandleFunc("/auth/register", authController.Register).Methods("POST")
	router.HandleFunc("/auth/login", authController.Login).Methods("POST")
	router.Handle("/auth/me", authn.RequireAuth(http.HandlerFunc(authController.Me))).Methods("GET")

	// Posts endpoints
	posts := router.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.Handle("", authn.RequireAuth(http.HandlerFunc(postController.Create))).Methods("POST")
	posts.Handle("/mine", authn.RequireAuth(http.HandlerFunc(postController.Mine))).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	posts.Handle("/{id:[0-9]+}", authn.RequireAuth(http.HandlerFunc(postController.Edit))).Methods("PUT")
	posts.Handle("/{id:[0-9]+}", authn.RequireAuth(http.HandlerFunc(postController.Delete))).Methods("DELETE")
	posts.HandleFunc("/{id:[0-9]+}/like", postController.Like).Methods("POST")
	posts.HandleFunc("/{id:[0-9]+}/view", postController.View).Methods("POST")
	posts.Handle("/{id:[0-9]+}/comments", authn.OptionalAuth(http.HandlerFunc(commentController.ForPost))).Methods("GET")

	// Comments endpoints
	moderate := func(h http.HandlerFunc) http.Handler {
		if opts.ModerationRequireAuth {
			return authn.RequireAuth(h)
		}
		return h
	}
	comments := router.PathPrefix("/comments").Subrouter()
	comments.HandleFunc("", commentController.Index).Methods("GET")
	comments.HandleFunc("", commentController.Create).Methods("POST")
	comments.HandleFunc("/{id:[0-9]+}", commentController.Show).Methods("GET")
	comments.Handle("/{id:[0-9]+}", moderate(commentController.Delete)).Methods("DELETE")
	comments.Handle("/{id:[0-9]+}/approve", moderate(commentController.Approve)).Methods("POST")
	comments.Handle("/{id:[0-9]+}/reject", moderate(commentController.Reject)).Methods("POST")
	comments.HandleFunc("/{id:[0-9]+}/like", commentController.Like).Methods("POST")
	comments.HandleFunc("/{id:[0-9]+}/reply", commentController.Reply).Methods("POST")

	return router
}

func jsonError(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
	})
}
