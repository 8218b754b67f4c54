package crop

import (
	"strings"
	"time"

	"harvestease-backend/internal/auth"
	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateCropRequest struct {
	FarmerName  string  `json:"farmer_name" validate:"required,max=100"`
	PaddyType   string  `json:"paddy_type" validate:"required"`
	PlantedDate string  `json:"planted_date" validate:"required"`
	LandArea    float64 `json:"land_area" validate:"required,gte=0.1"`
	PhoneNumber string  `json:"phone_number" validate:"required,len=10,numeric,startswith=0"`
	UserID      *uint   `json:"user_id"` // admin only, assign on behalf of a farmer
}

type CropResponse struct {
	ID                uint    `json:"id"`
	UserID            uint    `json:"user_id"`
	FarmerName        string  `json:"farmer_name"`
	PaddyType         string  `json:"paddy_type"`
	PlantedDate       string  `json:"planted_date"`
	LandArea          float64 `json:"land_area"`
	PhoneNumber       string  `json:"phone_number"`
	FertilizationDate string  `json:"fertilization_date"`
	HarvestDate       string  `json:"harvest_date"`
}

func toCropResponse(cr *models.Crop) CropResponse {
	return CropResponse{
		ID:                cr.ID,
		UserID:            cr.UserID,
		FarmerName:        cr.FarmerName,
		PaddyType:         cr.PaddyType,
		PlantedDate:       cr.PlantedDate.Format("2006-01-02"),
		LandArea:          cr.LandArea,
		PhoneNumber:       cr.PhoneNumber,
		FertilizationDate: cr.FertilizationDate.Format("2006-01-02"),
		HarvestDate:       cr.HarvestDate.Format("2006-01-02"),
	}
}

// resolveOwner: crops belong to the caller unless an admin assigns them.
func resolveOwner(c *fiber.Ctx, bodyUserID *uint) (uint, error) {
	userID, ok := auth.CallerID(c)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	role, _ := auth.CallerRole(c)
	if role == models.RoleAdmin && bodyUserID != nil && *bodyUserID != 0 {
		return *bodyUserID, nil
	}
	return userID, nil
}

// POST /crops
func CreateCropHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCropRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.FarmerName = strings.TrimSpace(body.FarmerName)
		body.PaddyType = strings.TrimSpace(body.PaddyType)

		if err := validation.Struct(body); err != nil {
			return err
		}

		planted, err := time.Parse("2006-01-02", body.PlantedDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "planted_date must be 'YYYY-MM-DD'")
		}

		fertilization, harvest, err := DeriveDates(planted, body.PaddyType)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ownerID, err := resolveOwner(c, body.UserID)
		if err != nil {
			return err
		}

		cr := models.Crop{
			UserID:            ownerID,
			FarmerName:        body.FarmerName,
			PaddyType:         body.PaddyType,
			PlantedDate:       planted,
			LandArea:          body.LandArea,
			PhoneNumber:       body.PhoneNumber,
			FertilizationDate: fertilization,
			HarvestDate:       harvest,
		}

		if err := database.DB.Create(&cr).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save crop")
		}

		return c.Status(fiber.StatusCreated).JSON(toCropResponse(&cr))
	}
}

// GET /crops
// Admins see every record; everyone else only their own.
func ListCropsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := auth.CallerID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		dbq := database.DB.Model(&models.Crop{})

		role, _ := auth.CallerRole(c)
		if role != models.RoleAdmin {
			dbq = dbq.Where("user_id = ?", userID)
		}

		var crops []models.Crop
		if err := dbq.Order("planted_date desc, id desc").Find(&crops).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list crops")
		}

		res := make([]CropResponse, 0, len(crops))
		for i := range crops {
			res = append(res, toCropResponse(&crops[i]))
		}
		return c.JSON(res)
	}
}

// GET /crops/:id
func GetCropHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cr, err := loadOwnedCrop(c)
		if err != nil {
			return err
		}
		return c.JSON(toCropResponse(cr))
	}
}

// PUT /crops/:id
// The whole record is re-validated and the derived dates recomputed;
// there is no partial edit of fertilization/harvest dates.
func UpdateCropHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cr, err := loadOwnedCrop(c)
		if err != nil {
			return err
		}

		var body CreateCropRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.FarmerName = strings.TrimSpace(body.FarmerName)
		body.PaddyType = strings.TrimSpace(body.PaddyType)

		if err := validation.Struct(body); err != nil {
			return err
		}

		planted, err := time.Parse("2006-01-02", body.PlantedDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "planted_date must be 'YYYY-MM-DD'")
		}

		fertilization, harvest, err := DeriveDates(planted, body.PaddyType)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		cr.FarmerName = body.FarmerName
		cr.PaddyType = body.PaddyType
		cr.PlantedDate = planted
		cr.LandArea = body.LandArea
		cr.PhoneNumber = body.PhoneNumber
		cr.FertilizationDate = fertilization
		cr.HarvestDate = harvest

		if err := database.DB.Save(cr).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update crop")
		}

		return c.JSON(toCropResponse(cr))
	}
}

// DELETE /crops/:id
func DeleteCropHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cr, err := loadOwnedCrop(c)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(cr).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete crop")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func loadOwnedCrop(c *fiber.Ctx) (*models.Crop, error) {
	userID, ok := auth.CallerID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}

	var cr models.Crop
	if err := database.DB.First(&cr, "id = ?", c.Params("id")).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Crop not found")
	}

	role, _ := auth.CallerRole(c)
	if role != models.RoleAdmin && cr.UserID != userID {
		return nil, fiber.NewError(fiber.StatusForbidden, "You do not own this crop")
	}

	return &cr, nil
}

// GET /crops/varieties
func ListVarietiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"varieties": Varieties()})
	}
}
