package middleware

import "github.com/labstack/echo/v4"

// Context keys used to store request and operator metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// UserEmailFromContext returns the authenticated operator's email, if any.
func UserEmailFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyUserEmail).(string); ok {
		return val
	}
	return ""
}
