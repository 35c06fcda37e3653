package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/handler"
	"github.com/iliyamo/storefront-api/internal/middleware"
)

// RegisterCart registers the cart endpoints.  Every route requires a valid
// auth-token header; the gate answers 401 before the handler runs otherwise.
func RegisterCart(e *echo.Echo, h *handler.CartHandler, tokens middleware.TokenVerifier) {
	gate := middleware.AuthGate(tokens)
	e.POST("/addtocart", h.AddToCart, gate)
	e.POST("/removefromcart", h.RemoveFromCart, gate)
	e.POST("/getcart", h.GetCart, gate)
}
