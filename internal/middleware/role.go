package middleware // middleware provides shared request processing for handlers

import (
    "crypto/subtle" // constant-time comparison of the admin key
    "net/http"      // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// AdminKeyHeader carries the catalog administration key.
const AdminKeyHeader = "admin-key"

// RequireCatalogKey guards catalog mutations.  When key is empty every
// request passes through unchanged.  Otherwise the admin-key header must
// match key exactly or the request is aborted with 403 Forbidden.
func RequireCatalogKey(key string) echo.MiddlewareFunc {
    if key == "" {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    want := []byte(key)
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            got := []byte(c.Request().Header.Get(AdminKeyHeader))
            if subtle.ConstantTimeCompare(got, want) != 1 {
                return c.JSON(http.StatusForbidden, echo.Map{"success": false, "errors": "forbidden"})
            }
            return next(c)
        }
    }
}
