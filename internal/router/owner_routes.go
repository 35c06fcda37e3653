package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/handler"
	"github.com/iliyamo/storefront-api/internal/middleware"
)

// RegisterCatalog registers the public catalog reads behind the response
// cache and the catalog mutations behind the admin key.  A successful
// mutation purges the cache so reads never serve a removed product for
// longer than one request.
func RegisterCatalog(e *echo.Echo, h *handler.ProductHandler, cache *middleware.ResponseCache, adminKey string) {
	read := cache.Middleware()
	e.GET("/allproducts", h.AllProducts, read)
	e.GET("/newcollections", h.NewCollections, read)
	e.GET("/newCollections", h.NewCollections, read)
	e.GET("/popularinwomen", h.PopularIn, read)
	e.GET("/popularin/:category", h.PopularIn, read)

	write := []echo.MiddlewareFunc{middleware.RequireCatalogKey(adminKey), cache.InvalidateOnSuccess()}
	e.POST("/addproduct", h.AddProduct, write...)
	e.POST("/removeproduct", h.RemoveProduct, write...)
}
