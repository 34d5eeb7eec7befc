package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/social_feed/internal/middleware/auth"
	"github.com/Skotchmaster/social_feed/internal/models"
	"github.com/Skotchmaster/social_feed/internal/mykafka"
)

type CommentHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type commentAuthor struct {
	Name string `json:"name"`
}

type commentView struct {
	ID        uint          `json:"id"`
	PostID    uint          `json:"post_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Author    commentAuthor `json:"author"`
}

func listComments(ctx context.Context, db *gorm.DB, postID uint) ([]commentView, error) {
	var rows []struct {
		ID         uint
		PostID     uint
		Content    string
		CreatedAt  time.Time
		AuthorName string
	}

	err := db.WithContext(ctx).Model(&models.Comment{}).
		Select("comments.id, comments.post_id, comments.content, comments.created_at, users.name AS author_name").
		Joins("LEFT JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC, comments.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]commentView, len(rows))
	for i, r := range rows {
		out[i] = commentView{
			ID:        r.ID,
			PostID:    r.PostID,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
			Author:    commentAuthor{Name: r.AuthorName},
		}
	}
	return out, nil
}

func (h *CommentHandler) AddComment(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.ActorID(c)
	if err != nil {
		return err
	}
	postID, ok := pathID(c)
	if !ok {
		return errorResponse(c, http.StatusBadRequest, "Invalid post id")
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid body")
	}
	if req.Content == "" {
		return errorResponse(c, http.StatusBadRequest, "Comment content is required")
	}

	comment := models.Comment{
		PostID:    postID,
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		return dbErrorResponse(c, "comment_insert", err)
	}

	var author models.User
	if err := h.DB.WithContext(ctx).Where("id = ?", userID).First(&author).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dbErrorResponse(c, "comment_author", err)
		}
	}

	publish(c, h.Producer, "post_events", fmt.Sprint(postID), map[string]interface{}{
		"type":      "comment_added",
		"postID":    postID,
		"userID":    userID,
		"commentID": comment.ID,
	})

	return c.JSON(http.StatusOK, commentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		Author:    commentAuthor{Name: author.Name},
	})
}

func (h *CommentHandler) GetComments(c echo.Context) error {
	ctx := c.Request().Context()

	postID, ok := pathID(c)
	if !ok {
		return errorResponse(c, http.StatusBadRequest, "Invalid post id")
	}

	comments, err := listComments(ctx, h.DB, postID)
	if err != nil {
		return dbErrorResponse(c, "comments_list", err)
	}

	return c.JSON(http.StatusOK, comments)
}
