package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/storefront-api/internal/handler" // handlers that implement each endpoint
	"github.com/iliyamo/storefront-api/internal/metrics" // Prometheus exposition
)

// RegisterRoutes registers the operational routes: the root banner, the
// health check used by load balancers and the metrics endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers signup and login.  Neither goes through the auth
// gate: they are how a client obtains a token in the first place.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/signup", a.Signup)
	e.POST("/login", a.Login)
}

// RegisterUploads exposes image upload and serves locally staged images
// from dir under /images.
func RegisterUploads(e *echo.Echo, u *handler.UploadHandler, dir string) {
	e.POST("/upload", u.Upload)
	e.Static("/images", dir)
}
