package stock

import (
	"strings"

	"harvestease-backend/internal/auth"
	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateStockRequest struct {
	FarmerName     string  `json:"farmer_name" validate:"required,max=100"`
	Contact        string  `json:"contact" validate:"max=50"`
	CropType       string  `json:"crop_type" validate:"required,oneof=paddy rice"`
	Variety        string  `json:"variety" validate:"required,max=50"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
	Unit           string  `json:"unit" validate:"required,oneof=kg MT"`
	Price          float64 `json:"price" validate:"required,gt=0"`
	Quality        string  `json:"quality" validate:"max=20"`
	Status         string  `json:"status" validate:"omitempty,oneof='Available' 'Sold Out' 'Pending'"`
	ProcessingType string  `json:"processing_type" validate:"max=50"`
	PackagingType  string  `json:"packaging_type" validate:"max=50"`
	ImagePath      string  `json:"image_path" validate:"max=255"`
}

type StockResponse struct {
	ID             uint    `json:"id"`
	UserID         uint    `json:"user_id"`
	FarmerName     string  `json:"farmer_name"`
	Contact        string  `json:"contact"`
	CropType       string  `json:"crop_type"`
	Variety        string  `json:"variety"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Price          float64 `json:"price"`
	Quality        string  `json:"quality"`
	Status         string  `json:"status"`
	ProcessingType string  `json:"processing_type,omitempty"`
	PackagingType  string  `json:"packaging_type,omitempty"`
	ImagePath      string  `json:"image_path,omitempty"`
}

func toStockResponse(s *models.Stock) StockResponse {
	return StockResponse{
		ID:             s.ID,
		UserID:         s.UserID,
		FarmerName:     s.FarmerName,
		Contact:        s.Contact,
		CropType:       s.CropType,
		Variety:        s.Variety,
		Quantity:       s.Quantity,
		Unit:           s.Unit,
		Price:          s.Price,
		Quality:        s.Quality,
		Status:         string(s.Status),
		ProcessingType: s.ProcessingType,
		PackagingType:  s.PackagingType,
		ImagePath:      s.ImagePath,
	}
}

// validateConditional enforces the rice-only required fields.
func validateConditional(body *CreateStockRequest) error {
	if body.CropType == "rice" {
		if strings.TrimSpace(body.ProcessingType) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "processing_type is required for rice stock")
		}
		if strings.TrimSpace(body.PackagingType) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "packaging_type is required for rice stock")
		}
	}
	return nil
}

// POST /api/stocks
func CreateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := auth.CallerID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		var body CreateStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.FarmerName = strings.TrimSpace(body.FarmerName)
		body.Variety = strings.TrimSpace(body.Variety)

		if err := validation.Struct(body); err != nil {
			return err
		}
		if err := validateConditional(&body); err != nil {
			return err
		}

		status := models.StockStatus(body.Status)
		if status == "" {
			status = models.StockAvailable
		}

		s := models.Stock{
			UserID:         userID,
			FarmerName:     body.FarmerName,
			Contact:        body.Contact,
			CropType:       body.CropType,
			Variety:        body.Variety,
			Quantity:       body.Quantity,
			Unit:           body.Unit,
			Price:          body.Price,
			Quality:        body.Quality,
			Status:         status,
			ProcessingType: body.ProcessingType,
			PackagingType:  body.PackagingType,
			ImagePath:      body.ImagePath,
		}

		if err := database.DB.Create(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save stock item")
		}

		return c.Status(fiber.StatusCreated).JSON(toStockResponse(&s))
	}
}

// GET /api/stocks?crop_type=...&status=...&scope=mine
// Listing is public; buyers browse everything available. The "mine"
// scope narrows to the caller's own items and requires a token.
func ListStocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Stock{})

		if c.Query("scope") == "mine" {
			userID, ok := auth.CallerID(c)
			if !ok {
				return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
			}
			dbq = dbq.Where("user_id = ?", userID)
		}

		if cropType := c.Query("crop_type"); cropType != "" {
			dbq = dbq.Where("crop_type = ?", cropType)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if variety := c.Query("variety"); variety != "" {
			dbq = dbq.Where("variety = ?", variety)
		}

		var rows []models.Stock
		if err := dbq.Order("id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list stock")
		}

		resp := make([]StockResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toStockResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/stocks/:id
func GetStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var s models.Stock
		if err := database.DB.First(&s, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stock item not found")
		}
		return c.JSON(toStockResponse(&s))
	}
}

// PUT /api/stocks/:id
func UpdateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := loadOwnedStock(c)
		if err != nil {
			return err
		}

		var body CreateStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.FarmerName = strings.TrimSpace(body.FarmerName)
		body.Variety = strings.TrimSpace(body.Variety)

		if err := validation.Struct(body); err != nil {
			return err
		}
		if err := validateConditional(&body); err != nil {
			return err
		}

		s.FarmerName = body.FarmerName
		s.Contact = body.Contact
		s.CropType = body.CropType
		s.Variety = body.Variety
		s.Quantity = body.Quantity
		s.Unit = body.Unit
		s.Price = body.Price
		s.Quality = body.Quality
		if body.Status != "" {
			s.Status = models.StockStatus(body.Status)
		}
		s.ProcessingType = body.ProcessingType
		s.PackagingType = body.PackagingType
		if body.ImagePath != "" {
			s.ImagePath = body.ImagePath
		}

		if err := database.DB.Save(s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update stock item")
		}

		return c.JSON(toStockResponse(s))
	}
}

// DELETE /api/stocks/:id
// Cart lines referencing this item are left untouched; references are
// weak and resolved at read time.
func DeleteStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := loadOwnedStock(c)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete stock item")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func loadOwnedStock(c *fiber.Ctx) (*models.Stock, error) {
	userID, ok := auth.CallerID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}

	var s models.Stock
	if err := database.DB.First(&s, "id = ?", c.Params("id")).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Stock item not found")
	}

	role, _ := auth.CallerRole(c)
	if role != models.RoleAdmin && s.UserID != userID {
		return nil, fiber.NewError(fiber.StatusForbidden, "You do not own this stock item")
	}
	return &s, nil
}
