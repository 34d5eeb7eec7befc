package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/social_feed/internal/models"
)

type PostHandler struct {
	DB *gorm.DB
}

// postRow is the read model for a post: the stored fields plus counts computed
// by aggregation at read time. No counters are maintained anywhere.
type postRow struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"`
	Category      string    `json:"category"`
	ImageURL      string    `json:"image_url"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
}

type postDetail struct {
	postRow
	Comments []commentView `json:"comments"`
}

func (h *PostHandler) withCounts(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select("posts.id, posts.title, posts.excerpt, posts.content, posts.category, posts.image_url, posts.author, posts.created_at, " +
			"COUNT(DISTINCT likes.id) AS likes_count, COUNT(DISTINCT comments.id) AS comments_count").
		Joins("LEFT JOIN likes ON likes.post_id = posts.id").
		Joins("LEFT JOIN comments ON comments.post_id = posts.id").
		Group("posts.id")
}

func (h *PostHandler) GetPosts(c echo.Context) error {
	ctx := c.Request().Context()

	var rows []postRow
	if err := h.withCounts(h.DB.WithContext(ctx)).
		Order("posts.created_at DESC").
		Scan(&rows).Error; err != nil {
		return dbErrorResponse(c, "posts_list", err)
	}

	if rows == nil {
		rows = []postRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()

	postID, ok := pathID(c)
	if !ok {
		return errorResponse(c, http.StatusBadRequest, "Invalid post id")
	}

	var row postRow
	tx := h.withCounts(h.DB.WithContext(ctx)).
		Where("posts.id = ?", postID).
		Scan(&row)
	if tx.Error != nil {
		return dbErrorResponse(c, "post_get", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, "Post not found")
	}

	comments, err := listComments(ctx, h.DB, postID)
	if err != nil {
		return dbErrorResponse(c, "post_comments", err)
	}

	return c.JSON(http.StatusOK, postDetail{postRow: row, Comments: comments})
}
