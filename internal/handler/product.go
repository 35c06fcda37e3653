package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/service"
)

// ProductHandler serves catalog reads and mutations.
type ProductHandler struct {
	Catalog *service.Catalog
}

func NewProductHandler(c *service.Catalog) *ProductHandler {
	return &ProductHandler{Catalog: c}
}

type addProductReq struct {
	Name     string     `json:"name" form:"name"`
	Image    string     `json:"image" form:"image"`
	Category string     `json:"category" form:"category"`
	NewPrice flexNumber `json:"new_price" form:"new_price"`
	OldPrice flexNumber `json:"old_price" form:"old_price"`
}

type removeProductReq struct {
	ID   flexNumber `json:"id" form:"id"`
	Name string     `json:"name" form:"name"`
}

// AddProduct stores a product under the next free id.
func (h *ProductHandler) AddProduct(c echo.Context) error {
	var req addProductReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	newPrice, ok1 := req.NewPrice.Float()
	oldPrice, ok2 := req.OldPrice.Float()
	if !ok1 || !ok2 {
		return fail(c, http.StatusBadRequest, "new_price and old_price are required")
	}

	p, err := h.Catalog.AddProduct(c.Request().Context(), service.NewProduct{
		Name:     req.Name,
		Image:    req.Image,
		Category: req.Category,
		NewPrice: newPrice,
		OldPrice: oldPrice,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "name": p.Name})
}

// RemoveProduct deletes the product with the given id.
func (h *ProductHandler) RemoveProduct(c echo.Context) error {
	var req removeProductReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	id, ok := req.ID.Int()
	if !ok || id <= 0 {
		return fail(c, http.StatusBadRequest, "id must be a positive integer")
	}
	if err := h.Catalog.RemoveProduct(c.Request().Context(), id, req.Name); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "name": req.Name})
}

func (h *ProductHandler) AllProducts(c echo.Context) error {
	products, err := h.Catalog.AllProducts(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) NewCollections(c echo.Context) error {
	products, err := h.Catalog.NewCollections(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// PopularIn lists the first products of :category, or of "women" when the
// route has no category parameter.
func (h *ProductHandler) PopularIn(c echo.Context) error {
	category := strings.TrimSpace(c.Param("category"))
	if category == "" {
		category = "women"
	}
	products, err := h.Catalog.PopularIn(c.Request().Context(), category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}
