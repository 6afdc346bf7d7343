package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"quillpost/app/auth"
	"quillpost/app/repositories/mock"
	"quillpost/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController(t *testing.T) {
	tokens := auth.NewTokens("controller-secret", time.Hour)
	controller := NewAuthController(services.NewAuthService(mock.NewUserRepository(), tokens, nil), nil)

	router := mux.NewRouter()
	router.Use(asTestUser)
	router.HandleFunc("/auth/register", controller.Register).Methods("POST")
	router.HandleFunc("/auth/login", controller.Login).Methods("POST")
	router.HandleFunc("/auth/me", controller.Me).Methods("GET")

	var userID int

	t.Run("register", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/auth/register",
			`{"name": "Sam Author", "email": "sam@example.com", "password": "long-enough"}`, 0)
		assert.Equal(t, http.StatusCreated, w.Code)

		var session struct {
			User  map[string]interface{} `json:"user"`
			Token string                 `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, "sam@example.com", session.User["email"])
		assert.NotContains(t, session.User, "PasswordHash")

		id, err := tokens.Verify(session.Token)
		require.NoError(t, err)
		userID = id
	})

	t.Run("register duplicate", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/auth/register",
			`{"name": "Sam Again", "email": "SAM@example.com", "password": "long-enough"}`, 0)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/auth/login", `{"email": "sam@example.com", "password": "long-enough"}`, 0)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doRequest(router, http.MethodPost, "/auth/login", `{"email": "sam@example.com", "password": "nope-nope"}`, 0)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid email or password", errorMessage(t, w))
	})

	t.Run("me", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/auth/me", "", userID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Sam Author")

		w = doRequest(router, http.MethodGet, "/auth/me", "", 0)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
