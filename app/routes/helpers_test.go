package routes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quillpost/app/auth"
	"quillpost/app/metrics"
	"quillpost/app/repositories"
	"quillpost/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	router  *mux.Router
	store   *repositories.Store
	tokens  *auth.Tokens
	metrics *metrics.Metrics
}

func setupTestApp(t *testing.T, moderationRequireAuth bool) *testApp {
	t.Helper()
	store, err := repositories.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	tokens := auth.NewTokens("routes-test-secret", time.Hour)

	router := SetupRoutes(Options{
		Posts:                 services.NewPostService(store.Posts, logger),
		Comments:              services.NewCommentService(store.Comments, store.Posts, store.Users, logger, m),
		Auth:                  services.NewAuthService(store.Users, tokens, logger),
		Tokens:                tokens,
		Metrics:               m,
		Logger:                logger,
		ModerationRequireAuth: moderationRequireAuth,
	})
	return &testApp{router: router, store: store, tokens: tokens, metrics: m}
}

func (a *testApp) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// register creates a user and returns their token.
func (a *testApp) register(t *testing.T, name, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/auth/register",
		`{"name": "`+name+`", "email": "`+email+`", "password": "password123"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	return session.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
