package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/upload"
)

const uploadFailedMessage = "file can`t be upload"

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, fh *multipart.FileHeader) (string, error)
}

type UploadHandler struct {
	Images Uploader
}

func NewUploadHandler(u Uploader) *UploadHandler {
	return &UploadHandler{Images: u}
}

// Upload accepts the multipart field "product".
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("product")
	if err != nil {
		return fail(c, http.StatusBadRequest, uploadFailedMessage)
	}
	url, err := h.Images.Upload(c.Request().Context(), fh)
	if err != nil {
		c.Set("error", err)
		if errors.Is(err, upload.ErrObjectHost) {
			return fail(c, http.StatusBadGateway, uploadFailedMessage)
		}
		return fail(c, http.StatusBadRequest, uploadFailedMessage)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": 1, "image_url": url})
}
