package middleware

// identity.go holds the context accessor shared by the auth gate and the
// handlers behind it.

import "github.com/labstack/echo/v4"

const userIDKey = "user_id"

// UserID returns the id stored by AuthGate, or "" when the request is not
// authenticated.
func UserID(c echo.Context) string {
    if s, ok := c.Get(userIDKey).(string); ok {
        return s
    }
    return ""
}
