package httpx

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blog-platform/backend/internal/logging"
)

// Every response carries the same {status, message, data} shape so clients
// branch on status instead of parsing prose.
func Success(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, echo.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// ErrorHandler converts every error that reaches the boundary into the
// envelope. Unexpected errors become a generic 500 so internals never leak.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal Server Error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}
	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request_error", "status", code, "error", err)
		message = "Internal Server Error"
	}

	if jsonErr := c.JSON(code, echo.Map{"status": "error", "message": message}); jsonErr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_write_failed", "error", jsonErr)
	}
}
