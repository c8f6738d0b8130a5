package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/api/metrics"
	"github.com/flappyv/platform/internal/core/domain"
)

// SkinService is the subset of service.SkinService used over HTTP.
type SkinService interface {
	Upload(ctx context.Context, originalName string, r io.Reader) (*domain.Skin, error)
	Current(ctx context.Context) (*domain.Skin, error)
}

type SkinHandler struct {
	service    SkinService
	uploadsDir string
}

func NewSkinHandler(service SkinService, uploadsDir string) *SkinHandler {
	return &SkinHandler{service: service, uploadsDir: uploadsDir}
}

type skinResponse struct {
	Message  string  `json:"message"`
	ImageURL *string `json:"imageUrl"`
}

type skinMissingResponse struct {
	Error    string  `json:"error"`
	ImageURL *string `json:"imageUrl"`
}

// Upload stores a new skin image and makes it current.
//
// @Summary      Upload skin
// @Tags         images
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Image file"
// @Success      201   {object}  skinResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      413   {object}  map[string]string
// @Router       /images/upload [post]
func (h *SkinHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer f.Close()

	skin, err := h.service.Upload(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return err
	}
	metrics.SkinsUploadedTotal.Inc()

	url := skin.URL()
	return c.JSON(http.StatusCreated, skinResponse{Message: "image uploaded", ImageURL: &url})
}

// Current returns the active skin.
//
// @Summary      Current skin
// @Tags         images
// @Produce      json
// @Success      200  {object}  skinResponse
// @Failure      404  {object}  skinMissingResponse
// @Router       /current-skin [get]
func (h *SkinHandler) Current(c echo.Context) error {
	skin, err := h.service.Current(c.Request().Context())
	if errors.Is(err, domain.ErrSkinNotFound) {
		return c.JSON(http.StatusNotFound, skinMissingResponse{Error: "no skin uploaded"})
	}
	if err != nil {
		return err
	}
	url := skin.URL()
	return c.JSON(http.StatusOK, skinResponse{Message: "current skin", ImageURL: &url})
}

// File serves an uploaded image.
//
// @Summary      Uploaded file
// @Tags         images
// @Param        filename  path  string  true  "File name"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /uploads/{filename} [get]
func (h *SkinHandler) File(c echo.Context) error {
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == "/" || name == ".." {
		return echo.ErrNotFound
	}
	return c.File(filepath.Join(h.uploadsDir, name))
}
