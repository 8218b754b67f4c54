package farmer

import (
	"strings"

	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type FarmerResponse struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"user_id"`
	Name          string  `json:"name"`
	Region        string  `json:"region"`
	Contact       string  `json:"contact"`
	Status        string  `json:"status"`
	TotalSales    float64 `json:"total_sales"`
	TotalExpenses float64 `json:"total_expenses"`
	Profit        float64 `json:"profit"`
	ROI           float64 `json:"roi"`
}

type CreateFarmerRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Name    string `json:"name" validate:"required,max=100"`
	Region  string `json:"region" validate:"max=100"`
	Contact string `json:"contact" validate:"max=50"`
	Status  string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdateFarmerRequest struct {
	Name    *string `json:"name"`
	Region  *string `json:"region"`
	Contact *string `json:"contact"`
	Status  *string `json:"status"`
}

func toFarmerResponse(f *models.Farmer) FarmerResponse {
	return FarmerResponse{
		ID:            f.ID,
		UserID:        f.UserID,
		Name:          f.Name,
		Region:        f.Region,
		Contact:       f.Contact,
		Status:        string(f.Status),
		TotalSales:    f.TotalSales,
		TotalExpenses: f.TotalExpenses,
		Profit:        f.Profit(),
		ROI:           f.ROI(),
	}
}

// GET /api/admin/farmers
func ListFarmersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Farmer{})

		if region := c.Query("region"); region != "" {
			dbq = dbq.Where("region = ?", region)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var farmers []models.Farmer
		if err := dbq.Order("name asc").Find(&farmers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list farmers")
		}

		res := make([]FarmerResponse, 0, len(farmers))
		for i := range farmers {
			res = append(res, toFarmerResponse(&farmers[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/farmers/:id
func GetFarmerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f models.Farmer
		if err := database.DB.First(&f, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Farmer not found")
		}
		return c.JSON(toFarmerResponse(&f))
	}
}

// POST /api/admin/farmers
func CreateFarmerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateFarmerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if err := validation.Struct(body); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Farmer{}).Where("user_id = ?", body.UserID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "A farmer record already exists for this user")
		}

		status := models.FarmerStatus(body.Status)
		if status == "" {
			status = models.FarmerActive
		}

		f := models.Farmer{
			UserID:  body.UserID,
			Name:    body.Name,
			Region:  body.Region,
			Contact: body.Contact,
			Status:  status,
		}

		if err := database.DB.Create(&f).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create farmer")
		}

		return c.Status(fiber.StatusCreated).JSON(toFarmerResponse(&f))
	}
}

// PUT /api/admin/farmers/:id
// Totals are not editable here; they belong to the ledger maintainers.
func UpdateFarmerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f models.Farmer
		if err := database.DB.First(&f, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Farmer not found")
		}

		var body UpdateFarmerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			f.Name = name
		}
		if body.Region != nil {
			f.Region = strings.TrimSpace(*body.Region)
		}
		if body.Contact != nil {
			f.Contact = strings.TrimSpace(*body.Contact)
		}
		if body.Status != nil {
			status := models.FarmerStatus(*body.Status)
			if status != models.FarmerActive && status != models.FarmerInactive {
				return fiber.NewError(fiber.StatusBadRequest, "status must be active or inactive")
			}
			f.Status = status
		}

		if err := database.DB.Save(&f).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update farmer")
		}

		return c.JSON(toFarmerResponse(&f))
	}
}

// DELETE /api/admin/farmers/:id
func DeleteFarmerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f models.Farmer
		if err := database.DB.First(&f, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Farmer not found")
		}

		if err := database.DB.Delete(&f).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete farmer")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
