package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/social_feed/internal/handlers"
	authmw "github.com/Skotchmaster/social_feed/internal/middleware/auth"
	"github.com/Skotchmaster/social_feed/internal/models"
	"github.com/Skotchmaster/social_feed/internal/service/token"
	httpserver "github.com/Skotchmaster/social_feed/internal/transport/http"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *token.TokenService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Like{}, &models.Comment{}))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	tokens := token.New([]byte("test-jwt-secret"))

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		DB:             db,
		AuthHandler:    &handlers.AuthHandler{DB: db, Tokens: tokens},
		PostHandler:    &handlers.PostHandler{DB: db},
		LikeHandler:    &handlers.LikeHandler{DB: db},
		CommentHandler: &handlers.CommentHandler{DB: db},
		Auth:           authmw.New(tokens),
	})

	return &testEnv{T: t, E: e, DB: db, Tokens: tokens}
}

func (env *testEnv) request(method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, bearer)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder, out interface{}) {
	env.T.Helper()
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), out))
}

func (env *testEnv) register(email, name, password string) {
	env.T.Helper()

	rec := env.request(http.MethodPost, "/api/register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	})
	require.Equal(env.T, http.StatusCreated, rec.Code)
}

func (env *testEnv) login(email, password string) string {
	env.T.Helper()

	rec := env.request(http.MethodPost, "/api/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(env.T, http.StatusOK, rec.Code)

	var res struct {
		Token string `json:"token"`
	}
	env.decode(rec, &res)
	require.NotEmpty(env.T, res.Token)
	return res.Token
}

func (env *testEnv) seedPost(title string, createdAt time.Time) models.Post {
	env.T.Helper()

	post := models.Post{
		Title:     title,
		Content:   "content of " + title,
		Author:    "seed",
		CreatedAt: createdAt,
	}
	require.NoError(env.T, env.DB.Create(&post).Error)
	return post
}
