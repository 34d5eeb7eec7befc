package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Skotchmaster/social_feed/internal/logging"
	"github.com/Skotchmaster/social_feed/internal/mykafka"
	"github.com/labstack/echo/v4"
)

func errorResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"error": msg})
}

// dbErrorResponse hides store detail from the caller; the cause goes to the log.
func dbErrorResponse(c echo.Context, op string, err error) error {
	logging.FromContext(c.Request().Context()).Error("db_error", "op", op, "error", err)
	return errorResponse(c, http.StatusInternalServerError, "Database error")
}

func pathID(c echo.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

// publish sends a domain event best-effort: failures are logged and never fail
// the request.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]interface{}) {
	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka_publish_error", "topic", topic, "error", err)
	}
}
