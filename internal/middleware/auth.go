package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// TokenHeader carries the raw identity token, without a scheme prefix.
const TokenHeader = "auth-token"

const unauthenticatedMessage = "please authenticate using valid token"

// TokenVerifier resolves a raw token to the user id it was issued for.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// AuthGate rejects requests without a valid identity token with 401 and
// never calls the wrapped handler for them.  On success the user id is
// stored in the context under "user_id"; read it back with UserID.
func AuthGate(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(TokenHeader)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"errors": unauthenticatedMessage})
			}
			id, err := tokens.Verify(raw)
			if err != nil || id == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"errors": unauthenticatedMessage})
			}
			c.Set(userIDKey, id)
			return next(c)
		}
	}
}
