package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/social_feed/internal/service/token"
)

func runGate(t *testing.T, header string) (*httptest.ResponseRecorder, bool, uint) {
	t.Helper()

	tokens := token.New([]byte("test-jwt-secret"))
	gate := New(tokens)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handlerRan := false
	var boundID uint
	next := func(c echo.Context) error {
		handlerRan = true
		id, err := ActorID(c)
		require.NoError(t, err)
		boundID = id
		return c.NoContent(http.StatusOK)
	}

	err := gate.Middleware(next)(c)
	require.NoError(t, err)
	return rec, handlerRan, boundID
}

func TestMiddleware_MissingHeader(t *testing.T) {
	t.Parallel()

	rec, ran, _ := runGate(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ran)
	assert.Contains(t, rec.Body.String(), "Token is missing")
}

func TestMiddleware_InvalidToken_NeverReachesHandler(t *testing.T) {
	t.Parallel()

	rec, ran, _ := runGate(t, "not-a-valid-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ran)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")
}

func TestMiddleware_ValidToken_BindsActor(t *testing.T) {
	t.Parallel()

	raw, err := token.New([]byte("test-jwt-secret")).Issue(42)
	require.NoError(t, err)

	rec, ran, boundID := runGate(t, raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
	assert.Equal(t, uint(42), boundID)
}

func TestMiddleware_BearerPrefix(t *testing.T) {
	t.Parallel()

	raw, err := token.New([]byte("test-jwt-secret")).Issue(7)
	require.NoError(t, err)

	rec, ran, boundID := runGate(t, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
	assert.Equal(t, uint(7), boundID)
}

func TestActorID_Unbound(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := ActorID(c)
	require.Error(t, err)
}
