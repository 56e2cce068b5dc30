package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"webapp/internal/service"
)

// MaxImageSize bounds a single upload.
const MaxImageSize = 10 << 20

// ImageHandler serves the image lifecycle endpoints.
type ImageHandler struct {
	svc service.ImageService
}

// NewImageHandler creates a new image handler.
func NewImageHandler(svc service.ImageService) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

// UploadImage godoc
// @Summary Upload an image
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Security BasicAuth
// @Param file formData file true "png, jpg or jpeg"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /users/image [post]
func (h *ImageHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest("multipart field 'file' is required", "INVALID_REQUEST")
	}
	if fh.Size > MaxImageSize {
		return badRequest(fmt.Sprintf("file exceeds %d bytes", MaxImageSize), "FILE_TOO_LARGE")
	}

	f, err := fh.Open()
	if err != nil {
		return badRequest("unreadable file", "INVALID_REQUEST")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return badRequest("unreadable file", "INVALID_REQUEST")
	}

	image, err := h.svc.Upload(c.Request().Context(), CurrentAccount(c), fh.Filename, data)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, UploadResponse{ID: image.ID, URL: image.URL})
}

// ListImages godoc
// @Summary List own images
// @Tags images
// @Produce json
// @Security BasicAuth
// @Success 200 {array} service.ImageView
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/image [get]
func (h *ImageHandler) ListImages(c echo.Context) error {
	views, err := h.svc.List(c.Request().Context(), CurrentAccount(c))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, views)
}

// GetImage godoc
// @Summary Get image metadata
// @Tags images
// @Produce json
// @Security BasicAuth
// @Param id path string true "Image ID"
// @Success 200 {object} service.ImageView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/image/{id} [get]
func (h *ImageHandler) GetImage(c echo.Context) error {
	id, err := parseImageID(c)
	if err != nil {
		return err
	}
	view, err := h.svc.Get(c.Request().Context(), id, CurrentAccount(c))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// DeleteImage godoc
// @Summary Delete an image
// @Tags images
// @Security BasicAuth
// @Param id path string true "Image ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/image/{id} [delete]
func (h *ImageHandler) DeleteImage(c echo.Context) error {
	id, err := parseImageID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id, CurrentAccount(c)); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseImageID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, badRequest("invalid image id", "INVALID_UUID")
	}
	return id, nil
}
