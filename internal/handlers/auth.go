package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/social_feed/internal/hash"
	"github.com/Skotchmaster/social_feed/internal/logging"
	"github.com/Skotchmaster/social_feed/internal/middleware/auth"
	"github.com/Skotchmaster/social_feed/internal/models"
	"github.com/Skotchmaster/social_feed/internal/mykafka"
	"github.com/Skotchmaster/social_feed/internal/service/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.TokenService
	Producer *mykafka.Producer
}

func publicUser(u *models.User) echo.Map {
	return echo.Map{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "Email and password are required")
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return errorResponse(c, http.StatusBadRequest, "Email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dbErrorResponse(c, "register_lookup", err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return errorResponse(c, http.StatusInternalServerError, "Registration failed")
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: pwHash,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		// the unique constraint on email is the source of truth; losing the
		// check-then-insert race surfaces here
		var again models.User
		if h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&again).Error == nil {
			return errorResponse(c, http.StatusBadRequest, "Email already registered")
		}
		return dbErrorResponse(c, "register_insert", err)
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	l.Info("user_registered", "user_id", user.ID)

	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "Email and password are required")
	}

	// unknown email and wrong password are indistinguishable to the caller
	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusUnauthorized, "Invalid email or password")
		}
		return dbErrorResponse(c, "login_lookup", err)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return errorResponse(c, http.StatusUnauthorized, "Invalid email or password")
	}

	tkn, err := h.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("login_error", "reason", "cannot issue token", "error", err)
		return errorResponse(c, http.StatusInternalServerError, "Login failed")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	l.Info("login_successful", "user_id", user.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged in successfully",
		"token":   tkn,
		"user":    publicUser(&user),
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.ActorID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// valid token, vanished account: reject rather than invent a user
			return errorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
		}
		return dbErrorResponse(c, "me_lookup", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user": publicUser(&user)})
}

// LogOut is a client-side operation: tokens are stateless, so the server has
// nothing to revoke.
func (h *AuthHandler) LogOut(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}
