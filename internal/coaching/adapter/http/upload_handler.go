package http

import (
	"errors"

	"coach-portal/internal/coaching/usecase"
	apperrors "coach-portal/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// Upload handles POST /upload with multipart fields file and folder.
func (h *Handler) Upload(c *fiber.Ctx) error {
	in := usecase.UploadInput{Folder: c.FormValue("folder")}

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		in.Filename = fh.Filename
		in.ContentType = fh.Header.Get(fiber.HeaderContentType)
		in.Size = fh.Size
		in.Body = f
	}

	result, err := h.Uploads.Upload(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// DownloadFile handles GET /files/:folder/:name.
func (h *Handler) DownloadFile(c *fiber.Ctx) error {
	rc, info, err := h.Uploads.Open(c.UserContext(), c.Params("folder"), c.Params("name"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidFolder) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
		}
		return err
	}
	if info.ContentType != "" {
		c.Set(fiber.HeaderContentType, info.ContentType)
	}
	return c.SendStream(rc, int(info.Size))
}
