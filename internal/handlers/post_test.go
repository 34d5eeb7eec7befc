package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/social_feed/internal/models"
)

type postJSON struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	Comments      []struct {
		ID      uint   `json:"id"`
		Content string `json:"content"`
		Author  struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"comments"`
}

func TestGetPosts_Empty(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetPosts_OrderingAndCounts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	base := time.Now().UTC().Add(-time.Hour)
	oldest := env.seedPost("oldest", base)
	middle := env.seedPost("middle", base.Add(10*time.Minute))
	newest := env.seedPost("newest", base.Add(20*time.Minute))

	require.NoError(t, env.DB.Create(&models.Like{PostID: middle.ID, UserID: 1, CreatedAt: base}).Error)
	require.NoError(t, env.DB.Create(&models.Like{PostID: middle.ID, UserID: 2, CreatedAt: base}).Error)
	require.NoError(t, env.DB.Create(&models.Comment{PostID: oldest.ID, UserID: 1, Content: "hi", CreatedAt: base}).Error)

	rec := env.request(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []postJSON
	env.decode(rec, &posts)
	require.Len(t, posts, 3)

	assert.Equal(t, newest.ID, posts[0].ID)
	assert.Equal(t, middle.ID, posts[1].ID)
	assert.Equal(t, oldest.ID, posts[2].ID)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt))
	}

	assert.EqualValues(t, 0, posts[0].LikesCount)
	assert.EqualValues(t, 2, posts[1].LikesCount)
	assert.EqualValues(t, 0, posts[1].CommentsCount)
	assert.EqualValues(t, 1, posts[2].CommentsCount)
}

func TestSearchPosts_NotConfigured(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/posts/search?q=hello", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var res struct {
		Error string `json:"error"`
	}
	env.decode(rec, &res)
	assert.Equal(t, "Search is not configured", res.Error)
}

func TestGetPost_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/posts/999", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var res struct {
		Error string `json:"error"`
	}
	env.decode(rec, &res)
	assert.Equal(t, "Post not found", res.Error)
}

func TestGetPost_CountsAndNestedComments(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	post := env.seedPost("first", time.Now().UTC().Add(-time.Hour))
	env.register("a@x.com", "Alice", "pw")
	tkn := env.login("a@x.com", "pw")

	env.toggleLike(tkn, post.ID)
	for _, content := range []string{"one", "two"} {
		rec := env.request(http.MethodPost, fmt.Sprintf("/api/posts/%d/comment", post.ID), tkn, map[string]string{
			"content": content,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.request(http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res postJSON
	env.decode(rec, &res)
	assert.Equal(t, post.ID, res.ID)
	assert.Equal(t, "first", res.Title)
	assert.EqualValues(t, 1, res.LikesCount)
	assert.EqualValues(t, 2, res.CommentsCount)

	require.Len(t, res.Comments, 2)
	assert.Equal(t, "two", res.Comments[0].Content)
	assert.Equal(t, "one", res.Comments[1].Content)
	assert.Equal(t, "Alice", res.Comments[0].Author.Name)
}

func TestGetPost_NoCommentsIsEmptyArray(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	post := env.seedPost("bare", time.Now().UTC())

	rec := env.request(http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res postJSON
	env.decode(rec, &res)
	require.NotNil(t, res.Comments)
	assert.Empty(t, res.Comments)
}
