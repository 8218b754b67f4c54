package knowledge

import (
	"strings"

	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type PostRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Experience string `json:"experience" validate:"required"`
	ImagePath  string `json:"image_path" validate:"max=255"`
}

type PostResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Experience string `json:"experience"`
	ImagePath  string `json:"image_path,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func toPostResponse(p *models.KnowledgePost) PostResponse {
	return PostResponse{
		ID:         p.ID,
		Name:       p.Name,
		Email:      p.Email,
		Experience: p.Experience,
		ImagePath:  p.ImagePath,
		CreatedAt:  p.CreatedAt.Format("2006-01-02"),
	}
}

// POST /api/posts
func CreatePostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PostRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if err := validation.Struct(body); err != nil {
			return err
		}

		p := models.KnowledgePost{
			Name:       body.Name,
			Email:      body.Email,
			Experience: body.Experience,
			ImagePath:  body.ImagePath,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save post")
		}

		return c.Status(fiber.StatusCreated).JSON(toPostResponse(&p))
	}
}

// GET /api/posts
func ListPostsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.KnowledgePost
		if err := database.DB.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list posts")
		}

		resp := make([]PostResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toPostResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/posts/:id
func GetPostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.KnowledgePost
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Post not found")
		}
		return c.JSON(toPostResponse(&p))
	}
}

// PUT /api/posts/:id
func UpdatePostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.KnowledgePost
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Post not found")
		}

		var body PostRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if err := validation.Struct(body); err != nil {
			return err
		}

		p.Name = body.Name
		p.Email = body.Email
		p.Experience = body.Experience
		if body.ImagePath != "" {
			p.ImagePath = body.ImagePath
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update post")
		}

		return c.JSON(toPostResponse(&p))
	}
}

// DELETE /api/posts/:id
func DeletePostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.DB.Delete(&models.KnowledgePost{}, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete post")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
