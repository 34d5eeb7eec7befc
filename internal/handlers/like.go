package handlers

import (
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

type LikeHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// ToggleLike flips the caller's like state for a post. Read-then-act: the
// unique index on (post_id, user_id) turns a concurrent duplicate insert into
// an error we absorb below.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.ActorID(c)
	if err != nil {
		return err
	}
	postID, ok := pathID(c)
	if !ok {
		return errorResponse(c, http.StatusBadRequest, "Invalid post id")
	}

	var like models.Like
	tx := h.DB.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&like)
	if tx.Error == nil {
		if err := h.DB.WithContext(ctx).Delete(&like).Error; err != nil {
			return dbErrorResponse(c, "like_delete", err)
		}
		publish(c, h.Producer, "post_events", fmt.Sprint(postID), map[string]interface{}{
			"type":   "post_unliked",
			"postID": postID,
			"userID": userID,
		})
		return c.JSON(http.StatusOK, echo.Map{"message": "Post unliked", "liked": false})
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return dbErrorResponse(c, "like_lookup", tx.Error)
	}

	newLike := models.Like{
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.DB.WithContext(ctx).Create(&newLike).Error; err != nil {
		// lost the toggle race: if the row exists now the post is liked
		var again models.Like
		if h.DB.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&again).Error == nil {
			return c.JSON(http.StatusOK, echo.Map{"message": "Post liked", "liked": true})
		}
		return dbErrorResponse(c, "like_insert", err)
	}

	publish(c, h.Producer, "post_events", fmt.Sprint(postID), map[string]interface{}{
		"type":   "post_liked",
		"postID": postID,
		"userID": userID,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Post liked", "liked": true})
}

// CheckLike is a pure read.
func (h *LikeHandler) CheckLike(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.ActorID(c)
	if err != nil {
		return err
	}
	postID, ok := pathID(c)
	if !ok {
		return errorResponse(c, http.StatusBadRequest, "Invalid post id")
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return dbErrorResponse(c, "like_check", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"liked": count > 0})
}
