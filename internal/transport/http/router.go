package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/social_feed/internal/handlers"
	"github.com/Skotchmaster/social_feed/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	PostHandler    *handlers.PostHandler
	LikeHandler    *handlers.LikeHandler
	CommentHandler *handlers.CommentHandler
	SearchHandler  *handlers.SearchHandler // nil when search is not configured; the route then answers 503
	Auth           *auth.RequireAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/logout", d.AuthHandler.LogOut)

	api.GET("/posts", d.PostHandler.GetPosts)
	api.GET("/posts/:id", d.PostHandler.GetPost)
	api.GET("/posts/:id/comments", d.CommentHandler.GetComments)
	if d.SearchHandler != nil {
		api.GET("/posts/search", d.SearchHandler.Search)
	} else {
		api.GET("/posts/search", func(c echo.Context) error {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Search is not configured"})
		})
	}

	private := api.Group("", d.Auth.Middleware)

	private.GET("/me", d.AuthHandler.Me)
	private.POST("/posts/:id/like", d.LikeHandler.ToggleLike)
	private.GET("/posts/:id/check-like", d.LikeHandler.CheckLike)
	private.POST("/posts/:id/comment", d.CommentHandler.AddComment)
}
