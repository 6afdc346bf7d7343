package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"quillpost/app/auth"
	"quillpost/app/models"
	"quillpost/app/repositories/mock"
	"quillpost/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testUserHeader lets tests act as a user without minting tokens.
const testUserHeader = "X-Test-User"

func asTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := strconv.Atoi(r.Header.Get(testUserHeader)); err == nil {
			r = r.WithContext(auth.WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func doRequest(router http.Handler, method, path, body string, userID int) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req.Header.Set(testUserHeader, strconv.Itoa(userID))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func setupPostRouter(t *testing.T) (*mux.Router, *mock.PostRepository) {
	t.Helper()
	postRepo := mock.NewPostRepository()
	controller := NewPostController(services.NewPostService(postRepo, nil), nil)

	router := mux.NewRouter()
	router.Use(asTestUser)
	router.HandleFunc("/posts", controller.Create).Methods("POST")
	router.HandleFunc("/posts", controller.Index).Methods("GET")
	router.HandleFunc("/posts/mine", controller.Mine).Methods("GET")
	router.HandleFunc("/posts/{id:[0-9]+}", controller.Show).Methods("GET")
	router.HandleFunc("/posts/{id:[0-9]+}", controller.Edit).Methods("PUT")
	router.HandleFunc("/posts/{id:[0-9]+}", controller.Delete).Methods("DELETE")
	router.HandleFunc("/posts/{id:[0-9]+}/like", controller.Like).Methods("POST")
	router.HandleFunc("/posts/{id:[0-9]+}/view", controller.View).Methods("POST")
	return router, postRepo
}

func TestPostController(t *testing.T) {
	router, _ := setupPostRouter(t)
	const owner, stranger = 1, 2

	t.Run("create post", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/posts",
			`{"title": "Test Post", "content": "This is a test post content", "published": true}`, owner)
		assert.Equal(t, http.StatusCreated, w.Code)

		var response models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 1, response.ID)
		assert.Equal(t, owner, response.AuthorID)
		assert.Equal(t, "Test Post", response.Title)
	})

	t.Run("create requires auth", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/posts", `{"title": "Test Post", "content": "x"}`, 0)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("create invalid post", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/posts", `{"title": "", "content": "x"}`, owner)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "title is required", errorMessage(t, w))

		w = doRequest(router, http.MethodPost, "/posts", `{not json`, owner)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid JSON body", errorMessage(t, w))
	})

	t.Run("get post", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/posts/1", "", 0)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doRequest(router, http.MethodGet, "/posts/999", "", 0)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "post 999 not found", errorMessage(t, w))
	})

	t.Run("like and view", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/posts/1/like", "", 0)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"likes": 1}`, w.Body.String())

		w = doRequest(router, http.MethodPost, "/posts/1/view", "", 0)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"views": 1}`, w.Body.String())
	})

	t.Run("update post", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/posts/1", `{"title": "Hijacked", "content": "x"}`, stranger)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doRequest(router, http.MethodPut, "/posts/1", `{"title": "Updated Post", "content": "New", "published": true}`, owner)
		assert.Equal(t, http.StatusOK, w.Code)

		var response models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Updated Post", response.Title)
		assert.Equal(t, 1, response.Likes)
	})

	t.Run("list posts", func(t *testing.T) {
		doRequest(router, http.MethodPost, "/posts", `{"title": "Draft Post", "content": "x"}`, owner)

		w := doRequest(router, http.MethodGet, "/posts", "", 0)
		assert.Equal(t, http.StatusOK, w.Code)
		var feed []models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
		assert.Len(t, feed, 1)

		w = doRequest(router, http.MethodGet, "/posts/mine", "", owner)
		assert.Equal(t, http.StatusOK, w.Code)
		var mine []models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
		assert.Len(t, mine, 2)
	})

	t.Run("delete post", func(t *testing.T) {
		w := doRequest(router, http.MethodDelete, "/posts/1", "", stranger)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doRequest(router, http.MethodDelete, "/posts/1", "", owner)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doRequest(router, http.MethodGet, "/posts/1", "", 0)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostControllerStoreFailure(t *testing.T) {
	router, postRepo := setupPostRouter(t)
	postRepo.FailOn("List", errStore)

	w := doRequest(router, http.MethodGet, "/posts", "", 0)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to list posts", errorMessage(t, w))
	assert.NotContains(t, w.Body.String(), errStore.Error())
}
