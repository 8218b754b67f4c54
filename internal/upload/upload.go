package upload

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const MaxImageSize = 5 * 1024 * 1024 // 5 MB

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SaveImage validates and stores an uploaded image, returning the path
// it is served under. Filenames are replaced with a uuid so user input
// never reaches the filesystem.
func SaveImage(c *fiber.Ctx, fileHeader *multipart.FileHeader, uploadPath string) (string, error) {
	if fileHeader.Size > MaxImageSize {
		return "", fiber.NewError(fiber.StatusBadRequest, "Image exceeds the 5 MB limit")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return "", fiber.NewError(fiber.StatusBadRequest, "Only jpg, jpeg and png images are allowed")
	}

	if err := os.MkdirAll(uploadPath, 0o755); err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "Could not prepare upload folder")
	}

	fileName := uuid.NewString() + ext
	dst := filepath.Join(uploadPath, fileName)

	if err := c.SaveFile(fileHeader, dst); err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "Could not store image")
	}

	return fmt.Sprintf("/uploads/%s", fileName), nil
}

// ImageHandler: POST /api/uploads/images (multipart field "image").
// Shared by disease records, stock listings and community posts.
func ImageHandler(uploadPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "image file is required")
		}

		path, err := SaveImage(c, fileHeader, uploadPath)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"path": path})
	}
}
