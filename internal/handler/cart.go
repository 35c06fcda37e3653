package handler

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/middleware"
	"github.com/iliyamo/storefront-api/internal/service"
)

// CartHandler serves the authenticated cart routes.
type CartHandler struct {
	Carts *service.CartEngine
}

func NewCartHandler(e *service.CartEngine) *CartHandler {
	return &CartHandler{Carts: e}
}

type cartItemReq struct {
	ItemID flexNumber `json:"itemId" form:"itemId"`
}

func bindItemID(c echo.Context) (int, bool) {
	var req cartItemReq
	if err := c.Bind(&req); err != nil {
		return 0, false
	}
	id, ok := req.ItemID.Int()
	if !ok || id < 0 || id > math.MaxInt32 {
		return 0, false
	}
	return int(id), true
}

// AddToCart increments the quantity of itemId by one.
func (h *CartHandler) AddToCart(c echo.Context) error {
	itemID, ok := bindItemID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "itemId must be a non-negative integer")
	}
	if err := h.Carts.Add(c.Request().Context(), middleware.UserID(c), itemID); err != nil {
		return respondError(c, err)
	}
	return c.String(http.StatusOK, "Added")
}

// RemoveFromCart decrements the quantity of itemId, never below zero.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	itemID, ok := bindItemID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "itemId must be a non-negative integer")
	}
	if err := h.Carts.Remove(c.Request().Context(), middleware.UserID(c), itemID); err != nil {
		return respondError(c, err)
	}
	return c.String(http.StatusOK, "Removed")
}

// GetCart returns the full cart map.
func (h *CartHandler) GetCart(c echo.Context) error {
	cart, err := h.Carts.Read(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}
